package engine

import (
	"context"
	"testing"
)

func TestEngine_RunTickSkipsWhileTickInFlight(t *testing.T) {
	e := New(nil, nil, nil, nil)

	// Simulate a tick still running.
	e.mu.Lock()
	defer e.mu.Unlock()

	done := make(chan bool, 1)
	go func() {
		done <- e.RunTick(context.Background())
	}()

	if ran := <-done; ran {
		t.Error("RunTick() must be skipped while another tick holds the guard")
	}
}
