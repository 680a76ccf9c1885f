package swapproc

import "context"

// Notifier delivers (userID, text) notification events. The engine never
// formats or sends chat messages itself; rendering is the transport's job.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}
