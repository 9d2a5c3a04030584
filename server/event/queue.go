// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package event provides the event queue, the execution lifecycle manager,
// and the stream consumer that bridges a running execution to a pull-based
// event sequence.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/agentmesh/a2akit"
)

// DefaultQueueSize is the queue capacity used when none is given.
const DefaultQueueSize = 1024

// Queue errors.
var (
	// ErrQueueClosed is returned by Enqueue on a closed queue and by
	// Dequeue once a closed queue has drained.
	ErrQueueClosed = errors.New("event queue is closed")

	// ErrQueueFull is returned by Enqueue when the queue is at capacity.
	ErrQueueFull = errors.New("event queue is full")

	// ErrInvalidQueueSize is returned for a negative queue capacity.
	ErrInvalidQueueSize = errors.New("queue size must not be negative")
)

// Queue is a bounded FIFO of events with blocking dequeue. The consumer
// suspends until an item arrives or the producer closes the queue; there
// is no polling.
type Queue struct {
	events chan a2akit.Event

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewQueue creates a queue with the given capacity, or DefaultQueueSize
// if maxSize is zero.
func NewQueue(maxSize int) (*Queue, error) {
	if maxSize < 0 {
		return nil, ErrInvalidQueueSize
	}
	if maxSize == 0 {
		maxSize = DefaultQueueSize
	}
	return &Queue{
		events: make(chan a2akit.Event, maxSize),
		done:   make(chan struct{}),
	}, nil
}

// Enqueue adds an event to the queue without blocking. It fails with
// ErrQueueClosed after Close and ErrQueueFull at capacity.
func (q *Queue) Enqueue(ctx context.Context, ev a2akit.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// EnqueueWait adds an event to the queue, blocking while the queue is at
// capacity. It fails with ErrQueueClosed once the queue closes and with
// ctx's error if ctx ends first.
func (q *Queue) EnqueueWait(ctx context.Context, ev a2akit.Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.events <- ev:
		return nil
	case <-q.done:
		return ErrQueueClosed
	}
}

// Dequeue removes and returns the oldest event, blocking until one is
// available, the queue is closed and drained, or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (a2akit.Event, error) {
	select {
	case ev := <-q.events:
		return ev, nil
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ev := <-q.events:
		return ev, nil
	case <-q.done:
		// Queue closed while we waited; drain anything that raced in.
		select {
		case ev := <-q.events:
			return ev, nil
		default:
			return nil, ErrQueueClosed
		}
	}
}

// Close closes the queue. Pending events remain dequeueable; further
// enqueues fail. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// IsClosed reports whether the queue has been closed.
func (q *Queue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}
