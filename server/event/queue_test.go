// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentmesh/a2akit"
)

func statusEvent(taskID string, state a2akit.TaskState) *a2akit.TaskStatusUpdateEvent {
	return &a2akit.TaskStatusUpdateEvent{
		Kind:   a2akit.StatusUpdateEventKind,
		TaskID: taskID,
		Status: a2akit.TaskStatus{State: state},
	}
}

func TestNewQueue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		maxSize int
		wantErr error
	}{
		"default size":  {maxSize: 0},
		"custom size":   {maxSize: 16},
		"negative size": {maxSize: -1, wantErr: ErrInvalidQueueSize},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			queue, err := NewQueue(tt.maxSize)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewQueue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && queue.Len() != 0 {
				t.Errorf("new queue length = %d, want 0", queue.Len())
			}
		})
	}
}

func TestQueue_OrderPreserved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queue, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}

	states := []a2akit.TaskState{
		a2akit.TaskStateSubmitted,
		a2akit.TaskStateWorking,
		a2akit.TaskStateCompleted,
	}
	for _, s := range states {
		if err := queue.Enqueue(ctx, statusEvent("task-1", s)); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	for _, want := range states {
		ev, err := queue.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		got := ev.(*a2akit.TaskStatusUpdateEvent).Status.State
		if got != want {
			t.Errorf("dequeued state = %s, want %s", got, want)
		}
	}
}

func TestQueue_Full(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queue, err := NewQueue(1)
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}

	if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateWorking)); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateWorking)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue() on full queue error = %v, want ErrQueueFull", err)
	}
}

func TestQueue_CloseDrainsBufferedEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queue, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}

	if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateWorking)); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	queue.Close()
	queue.Close() // idempotent

	if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateCompleted)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue() after close error = %v, want ErrQueueClosed", err)
	}

	// The buffered event is still delivered before the closed error.
	if _, err := queue.Dequeue(ctx); err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if _, err := queue.Dequeue(ctx); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Dequeue() on drained closed queue error = %v, want ErrQueueClosed", err)
	}
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queue, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateWorking))
	}()

	ev, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if ev.GetTaskID() != "task-1" {
		t.Errorf("task id = %s, want task-1", ev.GetTaskID())
	}
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	t.Parallel()

	queue, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := queue.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Dequeue() error = %v, want DeadlineExceeded", err)
	}
}

func TestQueueEnqueueWait_BlocksUntilSpace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queue, err := NewQueue(1)
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}
	if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateSubmitted)); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	pushed := make(chan error, 1)
	go func() {
		pushed <- queue.EnqueueWait(ctx, statusEvent("task-1", a2akit.TaskStateWorking))
	}()

	select {
	case err := <-pushed:
		t.Fatalf("EnqueueWait() returned %v before space was available", err)
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := queue.Dequeue(ctx); err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	select {
	case err := <-pushed:
		if err != nil {
			t.Fatalf("EnqueueWait() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("EnqueueWait() still blocked after space was made")
	}

	ev, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if got := ev.(*a2akit.TaskStatusUpdateEvent).Status.State; got != a2akit.TaskStateWorking {
		t.Errorf("dequeued state = %s, want working", got)
	}
}

func TestQueueEnqueueWait_ClosedAndContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("closed queue", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(1)
		if err != nil {
			t.Fatalf("NewQueue() error = %v", err)
		}
		queue.Close()
		if err := queue.EnqueueWait(ctx, statusEvent("task-1", a2akit.TaskStateWorking)); !errors.Is(err, ErrQueueClosed) {
			t.Errorf("EnqueueWait() error = %v, want ErrQueueClosed", err)
		}
	})

	t.Run("closed while blocked", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(1)
		if err != nil {
			t.Fatalf("NewQueue() error = %v", err)
		}
		if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateSubmitted)); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		pushed := make(chan error, 1)
		go func() {
			pushed <- queue.EnqueueWait(ctx, statusEvent("task-1", a2akit.TaskStateWorking))
		}()
		time.Sleep(20 * time.Millisecond)
		queue.Close()
		select {
		case err := <-pushed:
			if !errors.Is(err, ErrQueueClosed) {
				t.Errorf("EnqueueWait() error = %v, want ErrQueueClosed", err)
			}
		case <-time.After(time.Second):
			t.Fatal("EnqueueWait() still blocked after Close")
		}
	})

	t.Run("context deadline", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(1)
		if err != nil {
			t.Fatalf("NewQueue() error = %v", err)
		}
		if err := queue.Enqueue(ctx, statusEvent("task-1", a2akit.TaskStateSubmitted)); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		dctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if err := queue.EnqueueWait(dctx, statusEvent("task-1", a2akit.TaskStateWorking)); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("EnqueueWait() error = %v, want DeadlineExceeded", err)
		}
	})
}
