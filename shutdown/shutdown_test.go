package shutdown

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tests share the package level hook list, so none of them are parallel.

func TestStopCancelsWithoutHooks(t *testing.T) { //nolint:paralleltest
	called := false

	BeforeShutdown(func() { called = true })
	t.Cleanup(runHooks)

	ctx, stop := SetupHandler(t.Context())
	stop()

	<-ctx.Done()
	assert.False(t, called)
}

func TestSignalRunsHooksThenCancels(t *testing.T) { //nolint:paralleltest
	done := make(chan struct{})

	ctx, stop := SetupHandler(t.Context())
	defer stop()

	BeforeShutdown(func() {
		assert.NoError(t, ctx.Err(), "context must still be alive while hooks run")
		close(done)
	})

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hook did not run")
	}

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not canceled")
	}
}

func TestRunHooksClearsList(t *testing.T) { //nolint:paralleltest
	calls := 0

	BeforeShutdown(func() { calls++ })
	runHooks()
	runHooks()

	assert.Equal(t, 1, calls)
}
