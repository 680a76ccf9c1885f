// Package lognotify is a notifier that writes notifications to the
// structured log. It is the fallback sink when no webhook endpoint is
// configured, useful for local runs against the sandbox network.
package lognotify

import (
	"context"

	"github.com/gabapcia/swapmirror/internal/pkg/logger"
	"github.com/gabapcia/swapmirror/internal/swapproc"
)

type Notifier struct{}

var _ swapproc.Notifier = Notifier{}

func New() Notifier {
	return Notifier{}
}

func (Notifier) Notify(ctx context.Context, userID, text string) error {
	logger.Info(ctx, "user notification",
		"userId", userID,
		"text", text,
	)
	return nil
}
