// Package webhook delivers user notifications by POSTing them as JSON to a
// configured endpoint. Delivery is best-effort with retries; the processing
// pipeline never blocks on a slow receiver beyond the request timeout.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	transporthttp "github.com/gabapcia/swapmirror/internal/pkg/transport/http"
	"github.com/gabapcia/swapmirror/internal/swapproc"
)

// ErrDeliveryFailed indicates the endpoint answered with a non-2xx status
// after all retries were exhausted.
var ErrDeliveryFailed = errors.New("webhook delivery failed")

// message is the wire payload sent to the endpoint. The ID lets receivers
// deduplicate deliveries repeated by the retry layer.
type message struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// Notifier posts notifications to a single webhook endpoint.
type Notifier struct {
	endpoint   string
	httpClient *retryablehttp.Client
}

var _ swapproc.Notifier = (*Notifier)(nil)

// New creates a webhook notifier pointing at the given endpoint.
func New(endpoint string, opts ...transporthttp.Option) *Notifier {
	return &Notifier{
		endpoint:   endpoint,
		httpClient: transporthttp.NewClient(opts...),
	}
}

// Notify delivers one notification for the user.
func (n *Notifier) Notify(ctx context.Context, userID, text string) error {
	body, err := json.Marshal(message{
		ID:     uuid.NewString(),
		UserID: userID,
		Text:   text,
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, res.StatusCode)
	}
	return nil
}
