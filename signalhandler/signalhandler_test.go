package signalhandler

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestHandleRunsCleanupThenExits(t *testing.T) {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan int, 1)
	cleaned := false

	sigChan <- syscall.SIGTERM
	handle(sigChan, done, func() { cleaned = true }, func(code int) { exited <- code })

	select {
	case code := <-exited:
		if code != exitCode {
			t.Fatalf("exit code = %d, want %d", code, exitCode)
		}
	default:
		t.Fatal("exit was not called")
	}
	if !cleaned {
		t.Fatal("cleanup was not called")
	}
}

func TestHandleReturnsWhenStopped(t *testing.T) {
	sigChan := make(chan os.Signal)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		handle(sigChan, done, nil, func(int) { t.Error("exit must not be called") })
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after stop")
	}
}

func TestSetupHandlerStop(t *testing.T) {
	stop := SetupHandler(nil)
	stop()
}

func TestGetOptimalProcs(t *testing.T) {
	if n := GetOptimalProcs(); n < 1 {
		t.Fatalf("GetOptimalProcs() = %d", n)
	}
}
