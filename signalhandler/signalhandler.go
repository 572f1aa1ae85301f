package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"imagededup/logging"
)

// exitCode is the conventional status for a process ended by SIGINT
const exitCode = 130

// SetupHandler terminates the process on SIGINT or SIGTERM after running
// cleanup. A hashing run has no partial results, so nothing is flushed.
// The returned function stops listening.
func SetupHandler(cleanup func()) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go handle(sigChan, done, cleanup, os.Exit)

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

func handle(sigChan <-chan os.Signal, done <-chan struct{}, cleanup func(), exit func(int)) {
	select {
	case <-done:
		return
	case sig := <-sigChan:
		logging.LogWarning("Received %s, exiting", sig)
		if cleanup != nil {
			cleanup()
		}
		exit(exitCode)
	}
}

// GetOptimalProcs returns the number of worker goroutines for the system
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		return 1
	}
	return numCPU
}
