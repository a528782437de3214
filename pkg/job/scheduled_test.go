package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledTaskExecutor(t *testing.T) {
	t.Parallel()

	t.Run("invokes the handler", func(t *testing.T) {
		t.Parallel()

		called := false
		executor := &scheduledTaskExecutor{handler: func(ctx context.Context) error {
			called = true
			return nil
		}}

		require.NoError(t, executor.Execute(context.Background(), nil))
		assert.True(t, called)
	})

	t.Run("propagates handler errors", func(t *testing.T) {
		t.Parallel()

		handlerErr := errors.New("handler failed")
		executor := &scheduledTaskExecutor{handler: func(ctx context.Context) error {
			return handlerErr
		}}

		assert.ErrorIs(t, executor.Execute(context.Background(), nil), handlerErr)
	})

	t.Run("discards any payload", func(t *testing.T) {
		t.Parallel()

		called := false
		executor := &scheduledTaskExecutor{handler: func(ctx context.Context) error {
			called = true
			return nil
		}}

		require.NoError(t, executor.Execute(context.Background(), []byte(`{"ignored":"data"}`)))
		assert.True(t, called)
	})
}
