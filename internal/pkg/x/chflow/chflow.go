// Package chflow holds context-aware channel helpers. Pipeline stages use
// them so every blocking channel operation also honors cancellation.
package chflow

import "context"

// Receive blocks until a value arrives on ch or ctx is done. The boolean is
// false when the context ended first or the channel is closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send blocks until data is accepted by ch or ctx is done, reporting
// whether the send happened.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}
