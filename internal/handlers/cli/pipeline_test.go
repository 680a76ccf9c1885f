package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/gabapcia/swapmirror/internal/swapproc"

	"github.com/stretchr/testify/assert"
)

type pipelineServiceFake struct {
	startFunc func(ctx context.Context) error
	closeFunc func()
}

var _ swapproc.Service = (*pipelineServiceFake)(nil)

func (f *pipelineServiceFake) Start(ctx context.Context) error {
	return f.startFunc(ctx)
}

func (f *pipelineServiceFake) Close() {
	if f.closeFunc != nil {
		f.closeFunc()
	}
}

func TestStartPipelineCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		svc := &pipelineServiceFake{}

		cmd := startPipelineCommand(svc)

		assert.Equal(t, "start", cmd.Name)
		assert.Len(t, cmd.Flags, 0)
		assert.NotNil(t, cmd.Action)
	})

	t.Run("should return error when service start fails", func(t *testing.T) {
		expectedError := errors.New("service start error")
		closed := false
		svc := &pipelineServiceFake{
			startFunc: func(ctx context.Context) error {
				return expectedError
			},
			closeFunc: func() {
				closed = true
			},
		}

		err := runCommand(t, startPipelineCommand(svc), "start")

		assert.ErrorIs(t, err, expectedError)
		assert.False(t, closed, "close should not run when start fails")
	})
}
