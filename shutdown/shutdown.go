// Package shutdown turns SIGINT and SIGTERM into context cancellation, so a
// long validation run can stop between checks and still flush telemetry.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mut   sync.Mutex //nolint:gochecknoglobals
	hooks []func()   //nolint:gochecknoglobals
)

// BeforeShutdown registers a function to be called when a signal arrives.
// The context returned by SetupHandler is still alive while hooks run.
func BeforeShutdown(h func()) {
	mut.Lock()
	defer mut.Unlock()

	hooks = append(hooks, h)
}

// SetupHandler returns a context that is canceled on SIGINT or SIGTERM,
// after the registered hooks have run. Calling the returned stop function
// releases the signal handler without running the hooks.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(parent)

	go func() {
		defer signal.Stop(signals)

		select {
		case sig := <-signals:
			slog.Warn("Received " + sig.String() + ", shutting down...")
			runHooks()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func runHooks() {
	mut.Lock()
	pending := hooks
	hooks = nil
	mut.Unlock()

	for _, h := range pending {
		h()
	}
}
