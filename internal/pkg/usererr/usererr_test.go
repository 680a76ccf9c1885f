package usererr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("should keep the technical text as Error()", func(t *testing.T) {
		err := New("subscription not found", "You do not follow this address.")

		assert.Equal(t, "subscription not found", err.Error())
		assert.Equal(t, "You do not follow this address.", err.UserMessage())
	})

	t.Run("should satisfy errors.Is against itself", func(t *testing.T) {
		sentinel := New("token already tracked", "You already track this token.")

		wrapped := fmt.Errorf("adding token: %w", sentinel)
		assert.ErrorIs(t, wrapped, sentinel)
	})
}

func TestWrap(t *testing.T) {
	t.Run("should preserve the cause for errors.Is", func(t *testing.T) {
		cause := errors.New("balance below requested amount")

		err := Wrap(cause, "Your wallet balance is too low for this trade.")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cause.Error(), err.Error())
	})
}

func TestMessage(t *testing.T) {
	t.Run("should extract the message from a direct error", func(t *testing.T) {
		err := New("wallet already exists", "You already have a wallet on this network.")

		assert.Equal(t, "You already have a wallet on this network.", Message(err, "fallback"))
	})

	t.Run("should extract the message through wrapping", func(t *testing.T) {
		sentinel := New("unsupported network", "That network is not supported.")
		wrapped := fmt.Errorf("parsing flags: %w", sentinel)

		assert.Equal(t, "That network is not supported.", Message(wrapped, "fallback"))
	})

	t.Run("should fall back when no message is attached", func(t *testing.T) {
		assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
	})

	t.Run("should fall back on nil", func(t *testing.T) {
		assert.Equal(t, "fallback", Message(nil, "fallback"))
	})
}
