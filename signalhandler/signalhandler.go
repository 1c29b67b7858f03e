// Package signalhandler wires OS interrupt signals into the core's
// cooperative cancellation model instead of the teacher's immediate
// os.Exit(0): the analysis core must observe Cancelled at well-defined
// suspension points and delete partial artifacts before exiting
// (spec.md §5), so a SIGINT here cancels a context rather than killing the
// process outright.
package signalhandler

import (
	"context"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupCancelContext returns a context derived from parent that is
// cancelled when SIGINT or SIGTERM arrives, and a stop function the caller
// must invoke once the signal is no longer of interest (typically via
// defer), releasing the underlying signal.Notify registration.
func SetupCancelContext(parent context.Context) (context.Context, func()) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	return ctx, stop
}

// GetOptimalProcs returns three quarters of the CPU count, at least 1.
// main.go uses it to set GOMAXPROCS; the scanner and dedup worker pools take
// their fan-out from their own MaxWorkers options instead.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}
	return maxProcs
}
