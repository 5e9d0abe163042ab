package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil", func(t *testing.T) {
		app := New()
		hookCalled := false
		app.AddShutdownHook(func(ctx context.Context) error {
			hookCalled = true
			return nil
		})
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
		assert.False(t, hookCalled)
	})

	t.Run("run returns error", func(t *testing.T) {
		app := New()
		want := errors.New("run failed")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
	})

	t.Run("shutdown hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New()
		var mu sync.Mutex
		var order []string
		for _, name := range []string{"first", "second", "third"} {
			app.AddShutdownHook(func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, order)
	})

	t.Run("run is stopped by a hook", func(t *testing.T) {
		app := New()
		stop := make(chan struct{})
		app.AddShutdownHook(func(ctx context.Context) error {
			close(stop)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := app.Run(ctx, func(ctx context.Context) error {
			<-stop
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("hook errors are joined", func(t *testing.T) {
		app := New()
		errA := errors.New("a failed")
		errB := errors.New("b failed")
		app.AddShutdownHook(func(ctx context.Context) error { return errA })
		app.AddShutdownHook(func(ctx context.Context) error { return errB })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := app.Run(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
	})

	t.Run("hooks receive a deadline", func(t *testing.T) {
		app := New(WithShutdownTimeout(time.Second))
		var deadline time.Time
		var hasDeadline bool
		app.AddShutdownHook(func(ctx context.Context) error {
			deadline, hasDeadline = ctx.Deadline()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, app.Run(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}))
		assert.True(t, hasDeadline)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
	})

	t.Run("run that never returns is abandoned after the timeout", func(t *testing.T) {
		app := New(WithShutdownTimeout(20 * time.Millisecond))
		block := make(chan struct{})
		defer close(block)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := app.Run(ctx, func(ctx context.Context) error {
			<-block
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run did not return within 20ms")
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New()
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook(func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})
}

func TestWithShutdownTimeout_IgnoresNonPositive(t *testing.T) {
	assert.Equal(t, DefaultShutdownTimeout, New(WithShutdownTimeout(0)).shutdownTimeout)
	assert.Equal(t, 3*time.Second, New(WithShutdownTimeout(3*time.Second)).shutdownTimeout)
}
