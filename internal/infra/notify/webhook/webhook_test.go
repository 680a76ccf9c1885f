package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transporthttp "github.com/gabapcia/swapmirror/internal/pkg/transport/http"
)

func TestNotify(t *testing.T) {
	t.Run("should post the notification as JSON", func(t *testing.T) {
		var received message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		notifier := New(server.URL, transporthttp.WithRetryMax(0))

		err := notifier.Notify(t.Context(), "user-1", "trade replicated")
		require.NoError(t, err)

		assert.NotEmpty(t, received.ID)
		assert.Equal(t, "user-1", received.UserID)
		assert.Equal(t, "trade replicated", received.Text)
	})

	t.Run("should fail when the endpoint rejects the notification", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		notifier := New(server.URL, transporthttp.WithRetryMax(0), transporthttp.WithTimeout(time.Second))

		err := notifier.Notify(t.Context(), "user-1", "trade replicated")
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})
}
