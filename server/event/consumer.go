// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"sync"

	"github.com/agentmesh/a2akit"
)

// Consumer turns a push-driven execution into a pull-based event
// sequence. Updates are buffered in a queue while the execution driver
// runs concurrently; the consumer yields them in production order and
// surfaces an execution failure to its reader exactly once, never
// swallowing it.
type Consumer struct {
	queue *Queue

	mu       sync.Mutex
	finished bool
	execErr  error
}

// NewConsumer creates a Consumer over the given buffer queue.
func NewConsumer(queue *Queue) *Consumer {
	return &Consumer{queue: queue}
}

// Push buffers one produced update for the reader, blocking while the
// buffer is full. A slow reader backpressures the producer; no update is
// silently dropped.
func (c *Consumer) Push(ctx context.Context, ev a2akit.Event) error {
	return c.queue.EnqueueWait(ctx, ev)
}

// Finish records the execution outcome and closes the buffer. After
// Finish the reader drains remaining updates (on success) or stops at the
// failure (on error). The first recorded outcome wins; later calls only
// close the buffer.
func (c *Consumer) Finish(err error) {
	c.mu.Lock()
	if !c.finished {
		c.finished = true
		c.execErr = err
	}
	c.mu.Unlock()
	c.queue.Close()
}

// Err returns the recorded execution failure, if any. It is resolved once
// the Events channel has closed.
func (c *Consumer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execErr
}

// Events returns a channel yielding buffered updates in production order.
// The channel closes when the execution has finished and the buffer is
// drained, or immediately once an execution failure is observed; check
// Err after the channel closes.
func (c *Consumer) Events(ctx context.Context) <-chan a2akit.Event {
	out := make(chan a2akit.Event)

	go func() {
		defer close(out)
		for {
			// An execution failure preempts any still-buffered updates.
			if c.Err() != nil {
				return
			}

			ev, err := c.queue.Dequeue(ctx)
			if err != nil {
				// Closed-and-drained or caller gone; both end the stream.
				return
			}
			if c.Err() != nil {
				return
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Forward relays update and cancel notifications from ch into the
// consumer buffer until the subscription delivers a complete or error
// notification. Pushes block on a full buffer, so a slow reader slows
// the relay rather than losing events; forwarding stops only when the
// buffer is closed or ctx ends.
func (c *Consumer) Forward(ctx context.Context, ch <-chan Notification) {
	for n := range ch {
		switch n.Kind {
		case NotifyUpdate, NotifyCancel:
			if n.Update == nil {
				continue
			}
			if err := c.Push(ctx, n.Update); err != nil {
				if !errors.Is(err, ErrQueueClosed) && !errors.Is(err, context.Canceled) {
					c.Finish(err)
				}
				return
			}
		case NotifyComplete, NotifyError:
			return
		}
	}
}
