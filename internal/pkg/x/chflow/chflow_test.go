package chflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceive(t *testing.T) {
	t.Run("should receive a buffered value", func(t *testing.T) {
		ch := make(chan int, 1)
		ch <- 42

		value, ok := Receive(t.Context(), ch)

		assert.True(t, ok)
		assert.Equal(t, 42, value)
	})

	t.Run("should report a closed channel", func(t *testing.T) {
		ch := make(chan int)
		close(ch)

		value, ok := Receive(t.Context(), ch)

		assert.False(t, ok)
		assert.Zero(t, value)
	})

	t.Run("should abort when the context is canceled", func(t *testing.T) {
		ch := make(chan int)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		value, ok := Receive(ctx, ch)

		assert.False(t, ok)
		assert.Zero(t, value)
	})

	t.Run("should unblock a waiting receive on cancellation", func(t *testing.T) {
		ch := make(chan int)
		ctx, cancel := context.WithCancel(t.Context())

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, ok := Receive(ctx, ch)
			assert.False(t, ok)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("receive did not unblock after cancellation")
		}
	})
}

func TestSend(t *testing.T) {
	t.Run("should send into available buffer space", func(t *testing.T) {
		ch := make(chan int, 1)

		ok := Send(t.Context(), ch, 42)

		assert.True(t, ok)
		assert.Equal(t, 42, <-ch)
	})

	t.Run("should abort when the context is canceled", func(t *testing.T) {
		ch := make(chan int)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		ok := Send(ctx, ch, 42)

		assert.False(t, ok)
	})

	t.Run("should unblock a waiting send on cancellation", func(t *testing.T) {
		ch := make(chan int)
		ctx, cancel := context.WithCancel(t.Context())

		done := make(chan struct{})
		go func() {
			defer close(done)
			assert.False(t, Send(ctx, ch, 42))
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("send did not unblock after cancellation")
		}
	})
}
