// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package server implements the A2A protocol surface: the request
// handler that orchestrates task executions, and an HTTP/JSON-RPC
// transport binding with SSE streaming.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentmesh/a2akit"
	"github.com/agentmesh/a2akit/server/event"
	"github.com/agentmesh/a2akit/server/execution"
	"github.com/agentmesh/a2akit/server/session"
	"github.com/agentmesh/a2akit/server/task"
)

// finalPushTimeout bounds how long a finished execution waits for its
// reader to make room for the terminal task snapshot.
const finalPushTimeout = 5 * time.Second

// Handler implements the A2A protocol methods over a caller-supplied
// engine. One Handler serves many concurrent task executions; they share
// the task store and the session registry.
type Handler struct {
	engine    execution.Engine
	store     task.Store
	pushStore task.PushConfigStore
	sessions  *session.Registry
	driver    *execution.Driver
	notifier  *Notifier
	metrics   *Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	queueSize int

	mu   sync.Mutex
	live map[string]*execution.Context // keyed by context id
}

// NewHandler creates a protocol handler driving the given engine.
func NewHandler(engine execution.Engine, opts ...Option) (*Handler, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	h := &Handler{
		engine:    engine,
		store:     task.NewInMemoryStore(),
		pushStore: task.NewInMemoryPushConfigStore(),
		sessions:  session.NewRegistry(),
		logger:    slog.Default(),
		queueSize: event.DefaultQueueSize,
		live:      make(map[string]*execution.Context),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracer == nil {
		h.tracer = otel.GetTracerProvider().Tracer("github.com/agentmesh/a2akit/server")
	}
	h.notifier = NewNotifier(h.pushStore, h.logger)
	h.driver = execution.NewDriver(h.logger, h.queueSize)

	return h, nil
}

// SendMessage handles message/send. It runs the execution to completion
// and returns only the terminal event; intermediate updates are
// reconciled and persisted but not surfaced.
func (h *Handler) SendMessage(ctx context.Context, params *a2akit.MessageSendParams) (result a2akit.Event, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.message/send")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodMessageSend, err) }()

	handle, err := h.startExecution(ctx, params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("a2a.task_id", handle.rc.TaskID),
		attribute.String("a2a.context_id", handle.rc.ContextID),
	)

	var last a2akit.Event
	for ev := range handle.consumer.Events(ctx) {
		last = ev
	}
	if err := handle.consumer.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if last == nil {
		return nil, a2akit.InternalError{Msg: "execution produced no result"}
	}
	return last, nil
}

// StreamMessage handles message/stream. The returned consumer yields a
// synthesized submitted and working status pair, then the engine's
// updates in production order, then the terminal task snapshot; check
// the consumer's Err once its Events channel closes.
func (h *Handler) StreamMessage(ctx context.Context, params *a2akit.MessageSendParams) (consumer *event.Consumer, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.message/stream")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodMessageStream, err) }()

	handle, err := h.startExecution(ctx, params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("a2a.task_id", handle.rc.TaskID),
		attribute.String("a2a.context_id", handle.rc.ContextID),
	)
	return handle.consumer, nil
}

// GetTask handles tasks/get.
func (h *Handler) GetTask(ctx context.Context, params *a2akit.TaskQueryParams) (result *a2akit.Task, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.tasks/get")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodTasksGet, err) }()

	if params == nil || params.ID == "" {
		return nil, a2akit.InvalidParamsError{Msg: "task id is required"}
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	data, err := h.store.Load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	t := *data.Task
	t.History = trimHistory(data.History, params.HistoryLength)
	return &t, nil
}

// CancelTask handles tasks/cancel. For a task with a live execution the
// cancellation is delivered in-band through its lifecycle hooks; without
// one the canceled state is persisted directly. A task already in a final
// state is not cancelable.
func (h *Handler) CancelTask(ctx context.Context, params *a2akit.TaskIDParams) (result *a2akit.Task, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.tasks/cancel")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodTasksCancel, err) }()

	if params == nil || params.ID == "" {
		return nil, a2akit.InvalidParamsError{Msg: "task id is required"}
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	data, err := h.store.Load(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if a2akit.IsFinalState(data.Task.Status.State) {
		return nil, a2akit.TaskNotCancelableError{TaskID: params.ID, State: data.Task.Status.State}
	}

	contextID := data.Task.ContextID
	h.sessions.MarkCancelled(contextID)

	h.mu.Lock()
	rc := h.live[contextID]
	h.mu.Unlock()

	if rc != nil && rc.Events != nil {
		// A running engine observes this through its lifecycle hooks; the
		// registry entry is cleared when the execution completes.
		if err := rc.Events.Cancel(ctx, nil); err != nil {
			return nil, err
		}
		if state := rc.Events.CurrentState(); state != nil && state.Task != nil {
			t := *state.Task
			t.History = state.History
			h.logger.InfoContext(ctx, "canceled running task",
				slog.String("task_id", params.ID),
				slog.String("context_id", contextID))
			return &t, nil
		}
	}

	proc := task.NewProcessor(h.store, contextID, h.logger)
	updated, err := proc.Process(ctx, data, &a2akit.TaskStatusUpdateEvent{
		Kind:      a2akit.StatusUpdateEventKind,
		TaskID:    params.ID,
		ContextID: contextID,
		Status:    a2akit.TaskStatus{State: a2akit.TaskStateCanceled},
		Final:     true,
	})
	if err != nil {
		return nil, err
	}
	// No live execution will reach its completion hook, so clear here.
	h.sessions.ClearCancelled(contextID)

	t := *updated.Task
	t.History = updated.History
	h.logger.InfoContext(ctx, "canceled stored task",
		slog.String("task_id", params.ID),
		slog.String("context_id", contextID))
	return &t, nil
}

// Resubscribe handles tasks/resubscribe. The returned consumer first
// replays the task's current status; for a task already in a final state
// it then replays each artifact in order and completes, so a reconnecting
// client still receives the full final event sequence. For a running task
// the consumer follows the live execution's updates.
func (h *Handler) Resubscribe(ctx context.Context, params *a2akit.TaskIDParams) (consumer *event.Consumer, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.tasks/resubscribe")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodTasksResubscribe, err) }()

	if params == nil || params.ID == "" {
		return nil, a2akit.InvalidParamsError{Msg: "task id is required"}
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	data, err := h.store.Load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	queue, err := event.NewQueue(h.queueSize)
	if err != nil {
		return nil, err
	}
	consumer = event.NewConsumer(queue)

	final := a2akit.IsFinalState(data.Task.Status.State)

	h.mu.Lock()
	rc := h.live[data.Task.ContextID]
	h.mu.Unlock()

	go func() {
		status := &a2akit.TaskStatusUpdateEvent{
			Kind:      a2akit.StatusUpdateEventKind,
			TaskID:    data.Task.ID,
			ContextID: data.Task.ContextID,
			Status:    data.Task.Status,
			Final:     final,
		}
		if err := consumer.Push(ctx, status); err != nil {
			consumer.Finish(err)
			return
		}

		if final {
			for _, artifact := range data.Task.Artifacts {
				update := &a2akit.TaskArtifactUpdateEvent{
					Kind:      a2akit.ArtifactUpdateEventKind,
					TaskID:    data.Task.ID,
					ContextID: data.Task.ContextID,
					Artifact:  artifact,
					LastChunk: true,
				}
				if err := consumer.Push(ctx, update); err != nil {
					consumer.Finish(err)
					return
				}
			}
			consumer.Finish(nil)
			return
		}

		if rc != nil && rc.Events != nil {
			consumer.Forward(ctx, rc.Events.Subscribe(h.queueSize))
		}
		consumer.Finish(nil)
	}()

	return consumer, nil
}

// SetTaskPushNotification handles tasks/pushNotificationConfig/set.
func (h *Handler) SetTaskPushNotification(ctx context.Context, config *a2akit.TaskPushNotificationConfig) (result *a2akit.TaskPushNotificationConfig, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.tasks/pushNotificationConfig/set")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodTasksPushConfigSet, err) }()

	if config == nil || config.TaskID == "" {
		return nil, a2akit.InvalidParamsError{Msg: "task id is required"}
	}
	if config.PushNotificationConfig == nil || config.PushNotificationConfig.URL == "" {
		return nil, a2akit.InvalidParamsError{Msg: "push notification url is required"}
	}
	span.SetAttributes(attribute.String("a2a.task_id", config.TaskID))

	if _, err := h.store.Load(ctx, config.TaskID); err != nil {
		return nil, err
	}
	if err := h.pushStore.SetConfig(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// GetTaskPushNotification handles tasks/pushNotificationConfig/get.
func (h *Handler) GetTaskPushNotification(ctx context.Context, params *a2akit.TaskIDParams) (result *a2akit.TaskPushNotificationConfig, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.tasks/pushNotificationConfig/get")
	defer span.End()
	defer func() { h.metrics.recordRequest(a2akit.MethodTasksPushConfigGet, err) }()

	if params == nil || params.ID == "" {
		return nil, a2akit.InvalidParamsError{Msg: "task id is required"}
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	if _, err := h.store.Load(ctx, params.ID); err != nil {
		return nil, err
	}
	return h.pushStore.GetConfig(ctx, params.ID)
}

// execHandle ties one started execution to its pull-side consumer.
type execHandle struct {
	rc       *execution.Context
	consumer *event.Consumer
}

// startExecution resolves task and context ids, builds the execution
// context with its lifecycle hooks, and launches the driver. The returned
// handle's consumer yields updates in production order followed by the
// terminal task snapshot.
func (h *Handler) startExecution(ctx context.Context, params *a2akit.MessageSendParams) (*execHandle, error) {
	if params == nil || params.Message == nil {
		return nil, a2akit.InvalidParamsError{Msg: "message is required"}
	}
	msg := params.Message
	if len(msg.Parts) == 0 {
		return nil, a2akit.InvalidParamsError{Msg: "message has no parts"}
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	taskID := msg.TaskID
	contextID := msg.ContextID
	if taskID != "" {
		existing, err := task.LoadOrNil(ctx, h.store, taskID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if a2akit.IsFinalState(existing.Task.Status.State) {
				return nil, a2akit.InvalidParamsError{
					Msg: fmt.Sprintf("task %s is in final state %s", taskID, existing.Task.Status.State),
				}
			}
			contextID = existing.Task.ContextID
		}
	}
	if taskID == "" {
		taskID = uuid.NewString()
	}
	if contextID == "" {
		contextID = uuid.NewString()
	}

	queue, err := event.NewQueue(h.queueSize)
	if err != nil {
		return nil, err
	}
	consumer := event.NewConsumer(queue)

	proc := task.NewProcessor(h.store, contextID, h.logger)
	mgr := event.NewManager(h.hooks(proc, msg, params.Metadata, taskID, contextID), h.logger)
	rc := execution.NewContext(taskID, contextID, msg, h.sessions)
	rc.Events = mgr
	rc.Metadata = params.Metadata

	h.mu.Lock()
	h.live[contextID] = rc
	h.mu.Unlock()

	// Subscriptions are taken before the driver starts so nothing is
	// missed.
	sub := mgr.Subscribe(h.queueSize)
	go h.watchForPush(taskID, mgr.Subscribe(16))

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		consumer.Forward(ctx, sub)
	}()

	h.metrics.recordExecution()
	h.logger.InfoContext(ctx, "starting task execution",
		slog.String("task_id", taskID),
		slog.String("context_id", contextID))

	go func() {
		err := h.driver.Execute(ctx, withBootstrap(h.engine), rc)
		<-forwardDone
		if err == nil {
			if state := mgr.CurrentState(); state != nil && state.Task != nil {
				final := *state.Task
				final.History = state.History
				// The terminal snapshot must reach the reader even after
				// a request-context cancel, but a reader that never
				// drains cannot hold the goroutine forever.
				pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalPushTimeout)
				perr := consumer.Push(pctx, &final)
				cancel()
				if perr != nil && !errors.Is(perr, event.ErrQueueClosed) {
					err = perr
				}
			}
		}
		consumer.Finish(err)
	}()

	return &execHandle{rc: rc, consumer: consumer}, nil
}

// hooks wires the lifecycle slots for one execution: load-or-create on
// start, reconcile-and-persist on update, synthesized terminal statuses
// on cancel and error, registry cleanup on completion.
func (h *Handler) hooks(proc *task.Processor, msg *a2akit.Message, metadata map[string]any, taskID, contextID string) event.Hooks {
	return event.Hooks{
		OnStart: func(ctx context.Context) (*a2akit.TaskAndHistory, error) {
			h.sessions.AddConnection(contextID)

			existing, err := task.LoadOrNil(ctx, h.store, taskID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return existing, nil
			}

			data, err := task.LoadOrCreate(ctx, h.store, msg, metadata, taskID, contextID)
			if err != nil {
				return nil, err
			}
			data.Task.History = data.History
			if err := h.store.Save(ctx, data); err != nil {
				return nil, task.NewStoreError("save", taskID, err)
			}
			return data, nil
		},

		OnUpdate: func(ctx context.Context, current *a2akit.TaskAndHistory, update a2akit.Event) (*a2akit.TaskAndHistory, error) {
			if h.sessions.IsCancelled(contextID) {
				h.logger.InfoContext(ctx, "context cancelled, dropping update",
					slog.String("context_id", contextID),
					slog.String("kind", string(update.GetEventKind())))
				return current, nil
			}
			return proc.Process(ctx, current, update)
		},

		OnCancel: func(ctx context.Context, current *a2akit.TaskAndHistory, update a2akit.Event) (*a2akit.TaskAndHistory, error) {
			h.sessions.MarkCancelled(contextID)
			if current == nil || current.Task == nil {
				return current, nil
			}
			// The update that was in flight when cancellation landed
			// still contributes its message and metadata to the
			// canceled status.
			status := a2akit.TaskStatus{State: a2akit.TaskStateCanceled}
			var metadata map[string]any
			if su, ok := update.(*a2akit.TaskStatusUpdateEvent); ok {
				status.Message = su.Status.Message
				metadata = su.Metadata
			}
			return proc.Process(ctx, current, &a2akit.TaskStatusUpdateEvent{
				Kind:      a2akit.StatusUpdateEventKind,
				TaskID:    current.Task.ID,
				ContextID: contextID,
				Status:    status,
				Final:     true,
				Metadata:  metadata,
			})
		},

		OnError: func(ctx context.Context, current *a2akit.TaskAndHistory, cause error) {
			if current == nil || current.Task == nil || current.Task.ID == "" {
				return
			}
			_, err := proc.Process(ctx, current, &a2akit.TaskStatusUpdateEvent{
				Kind:      a2akit.StatusUpdateEventKind,
				TaskID:    current.Task.ID,
				ContextID: contextID,
				Status: a2akit.TaskStatus{
					State:   a2akit.TaskStateFailed,
					Message: a2akit.NewAgentTextMessage(cause.Error()),
				},
				Final: true,
			})
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to persist failed status",
					slog.String("task_id", current.Task.ID),
					slog.Any("error", err))
			}
		},

		OnComplete: func(ctx context.Context) {
			h.sessions.ClearCancelled(contextID)
			h.sessions.RemoveConnection(contextID)
			h.mu.Lock()
			if rc, ok := h.live[contextID]; ok && rc.TaskID == taskID {
				delete(h.live, contextID)
			}
			h.mu.Unlock()
		},
	}
}

// watchForPush follows one execution's lifecycle notifications and
// delivers a push notification on each status transition.
func (h *Handler) watchForPush(taskID string, ch <-chan event.Notification) {
	ctx := context.Background()
	for n := range ch {
		switch n.Kind {
		case event.NotifyUpdate, event.NotifyCancel:
			if _, ok := n.Update.(*a2akit.TaskStatusUpdateEvent); !ok {
				continue
			}
			data, err := task.LoadOrNil(ctx, h.store, taskID)
			if err != nil || data == nil {
				continue
			}
			h.notifier.Notify(ctx, data.Task)
		case event.NotifyComplete, event.NotifyError:
			return
		}
	}
}

// withBootstrap prefixes the engine's output with a submitted and a
// working status pair, so every execution's observers see the initial
// transitions through the same reconciliation path.
func withBootstrap(inner execution.Engine) execution.Engine {
	return execution.EngineFunc(func(ctx context.Context, rc *execution.Context, queue *event.Queue) error {
		for _, state := range []a2akit.TaskState{a2akit.TaskStateSubmitted, a2akit.TaskStateWorking} {
			update := &a2akit.TaskStatusUpdateEvent{
				Kind:      a2akit.StatusUpdateEventKind,
				TaskID:    rc.TaskID,
				ContextID: rc.ContextID,
				Status: a2akit.TaskStatus{
					State:     state,
					Timestamp: a2akit.Timestamp(time.Now()),
				},
			}
			if err := queue.Enqueue(ctx, update); err != nil {
				return err
			}
		}
		return inner.Execute(ctx, rc, queue)
	})
}

// trimHistory returns the most recent n messages, or all of them when n
// is zero or negative.
func trimHistory(history []*a2akit.Message, n int) []*a2akit.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
