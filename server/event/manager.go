// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agentmesh/a2akit"
)

// NotificationKind names a lifecycle notification.
type NotificationKind string

const (
	NotifyStart    NotificationKind = "start"
	NotifyUpdate   NotificationKind = "update"
	NotifyCancel   NotificationKind = "cancel"
	NotifyError    NotificationKind = "error"
	NotifyComplete NotificationKind = "complete"
)

// Notification is one lifecycle event pushed to observers. The payload
// fields are set per kind: State for start, Update for update and cancel,
// Err for error. Complete carries no payload.
type Notification struct {
	Kind   NotificationKind
	State  *a2akit.TaskAndHistory
	Update a2akit.Event
	Err    error
}

// Hooks are the per-execution lifecycle callback slots. Each slot is
// independently overridable; a nil slot falls back to the Manager's
// default behavior.
type Hooks struct {
	// OnStart produces the initial aggregate for the execution.
	OnStart func(ctx context.Context) (*a2akit.TaskAndHistory, error)

	// OnUpdate folds one event into the current aggregate and returns the
	// new aggregate.
	OnUpdate func(ctx context.Context, current *a2akit.TaskAndHistory, update a2akit.Event) (*a2akit.TaskAndHistory, error)

	// OnCancel handles a cancellation observed while update was in flight.
	OnCancel func(ctx context.Context, current *a2akit.TaskAndHistory, update a2akit.Event) (*a2akit.TaskAndHistory, error)

	// OnError handles an execution failure.
	OnError func(ctx context.Context, current *a2akit.TaskAndHistory, err error)

	// OnComplete runs exactly once when the execution finishes, in every
	// outcome.
	OnComplete func(ctx context.Context)
}

// Manager is the per-execution lifecycle controller. It owns the current
// aggregate, dispatches the configured hooks, and pushes a typed
// notification to observers after each hook runs, so components like the
// stream consumer can follow the execution without driving it.
type Manager struct {
	hooks  Hooks
	logger *slog.Logger

	// hookMu serializes hook dispatch. Cancellation may arrive from a
	// goroutine other than the execution driver's, and the hooks mutate
	// the shared aggregate; no two hooks for one execution run
	// concurrently.
	hookMu sync.Mutex

	mu        sync.Mutex
	current   *a2akit.TaskAndHistory
	observers []chan Notification
}

// NewManager creates a Manager with the given hooks.
func NewManager(hooks Hooks, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{hooks: hooks, logger: logger}
}

// CurrentState returns the aggregate the execution currently holds, or
// nil before Start.
func (m *Manager) CurrentState() *a2akit.TaskAndHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SetCurrentState replaces the held aggregate.
func (m *Manager) SetCurrentState(state *a2akit.TaskAndHistory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = state
}

// Subscribe registers an observer and returns its notification channel.
// Notifications are delivered best-effort: a full observer channel drops
// the notification with a warning rather than stalling the execution.
func (m *Manager) Subscribe(buffer int) <-chan Notification {
	if buffer <= 0 {
		buffer = DefaultQueueSize
	}
	ch := make(chan Notification, buffer)
	m.mu.Lock()
	m.observers = append(m.observers, ch)
	m.mu.Unlock()
	return ch
}

// Start runs the OnStart hook, stores the produced aggregate, and
// notifies observers.
func (m *Manager) Start(ctx context.Context) error {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	if m.hooks.OnStart != nil {
		state, err := m.hooks.OnStart(ctx)
		if err != nil {
			return err
		}
		m.SetCurrentState(state)
	}
	m.notify(ctx, Notification{Kind: NotifyStart, State: m.CurrentState()})
	return nil
}

// Update runs the OnUpdate hook with the current aggregate, stores the
// result, and notifies observers with the raw update. Without an OnUpdate
// hook a task snapshot replaces the current aggregate and any other
// update kind is held as-is.
func (m *Manager) Update(ctx context.Context, update a2akit.Event) error {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	if m.hooks.OnUpdate != nil {
		next, err := m.hooks.OnUpdate(ctx, m.CurrentState(), update)
		if err != nil {
			return err
		}
		m.SetCurrentState(next)
	} else if t, ok := update.(*a2akit.Task); ok {
		m.SetCurrentState(&a2akit.TaskAndHistory{Task: t, History: t.History})
	}
	m.notify(ctx, Notification{Kind: NotifyUpdate, Update: update})
	return nil
}

// Cancel runs the OnCancel hook with the update that was in flight when
// cancellation was observed, stores the result, and notifies observers.
func (m *Manager) Cancel(ctx context.Context, update a2akit.Event) error {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	if m.hooks.OnCancel != nil {
		next, err := m.hooks.OnCancel(ctx, m.CurrentState(), update)
		if err != nil {
			return err
		}
		m.SetCurrentState(next)
	}
	m.notify(ctx, Notification{Kind: NotifyCancel, Update: update})
	return nil
}

// Error runs the OnError hook and notifies observers.
func (m *Manager) Error(ctx context.Context, err error) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	if m.hooks.OnError != nil {
		m.hooks.OnError(ctx, m.CurrentState(), err)
	}
	m.notify(ctx, Notification{Kind: NotifyError, Err: err})
}

// Complete runs the OnComplete hook and notifies observers. The execution
// driver guarantees this is called exactly once per execution.
func (m *Manager) Complete(ctx context.Context) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	if m.hooks.OnComplete != nil {
		m.hooks.OnComplete(ctx)
	}
	m.notify(ctx, Notification{Kind: NotifyComplete})
}

func (m *Manager) notify(ctx context.Context, n Notification) {
	m.mu.Lock()
	observers := make([]chan Notification, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, ch := range observers {
		select {
		case ch <- n:
		default:
			m.logger.WarnContext(ctx, "observer channel full, dropping notification",
				slog.String("kind", string(n.Kind)))
		}
	}
}
