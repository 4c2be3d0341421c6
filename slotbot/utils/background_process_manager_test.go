package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackgroundProcessManager(t *testing.T) {
	bpm := NewBackgroundProcessManager()

	stopped := make(chan string, 3)
	loop := func(name string) func(ctx context.Context) {
		return func(ctx context.Context) {
			<-ctx.Done()
			stopped <- name
		}
	}
	bpm.StartProcess("presence", "rotate status", loop("presence"))
	bpm.StartProcess("slot-expiry", "expire slots", loop("slot-expiry"))
	bpm.StartProcess("panics", "always panics", func(context.Context) { panic("boom") })

	require.Eventually(t, func() bool { return bpm.Count() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"presence", "slot-expiry"}, bpm.Names())

	bpm.StopProcess("presence")
	require.Equal(t, "presence", <-stopped)
	require.Equal(t, []string{"slot-expiry"}, bpm.Names())

	require.NoError(t, bpm.Shutdown(time.Second))
	require.Equal(t, "slot-expiry", <-stopped)
	require.Zero(t, bpm.Count())

	bpm.StartProcess("late", "after shutdown", loop("late"))
	require.Zero(t, bpm.Count())
}

func TestBackgroundProcessManager_ShutdownTimeout(t *testing.T) {
	bpm := NewBackgroundProcessManager()
	release := make(chan struct{})
	defer close(release)

	bpm.StartProcess("stuck", "ignores cancellation", func(context.Context) { <-release })
	require.ErrorIs(t, bpm.Shutdown(10*time.Millisecond), context.DeadlineExceeded)
}
