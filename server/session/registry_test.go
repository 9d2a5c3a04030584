// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sync"
	"testing"
)

func TestRegistry_Cancellation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	if r.IsCancelled("ctx-1") {
		t.Error("fresh registry should have no cancellations")
	}

	r.MarkCancelled("ctx-1")
	if !r.IsCancelled("ctx-1") {
		t.Error("ctx-1 should be cancelled")
	}
	if r.IsCancelled("ctx-2") {
		t.Error("ctx-2 should not be cancelled")
	}

	r.ClearCancelled("ctx-1")
	if r.IsCancelled("ctx-1") {
		t.Error("clear should remove the cancellation")
	}

	// Clearing a non-member is a no-op; cancel racing completion depends
	// on this.
	r.ClearCancelled("ctx-1")
	r.ClearCancelled("never-seen")
}

func TestRegistry_Connections(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	r.AddConnection("ctx-1")
	if !r.HasConnection("ctx-1") {
		t.Error("ctx-1 should have a connection")
	}

	r.RemoveConnection("ctx-1")
	if r.HasConnection("ctx-1") {
		t.Error("connection should be removed")
	}
	r.RemoveConnection("ctx-1")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.MarkCancelled("ctx-1")
			r.IsCancelled("ctx-1")
			r.AddConnection("ctx-1")
			r.HasConnection("ctx-1")
			r.RemoveConnection("ctx-1")
			r.ClearCancelled("ctx-1")
		}()
	}
	wg.Wait()

	if r.HasConnection("ctx-1") {
		t.Error("all connections should be removed")
	}
}
