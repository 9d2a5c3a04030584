// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package execution drives a caller-supplied engine through the task
// lifecycle: it pumps engine output through the event manager, observes
// cancellation, and guarantees completion hooks fire.
package execution

import (
	"time"

	"github.com/agentmesh/a2akit"
	"github.com/agentmesh/a2akit/server/event"
	"github.com/agentmesh/a2akit/server/session"
)

// Context carries everything one task execution needs: the inbound
// message, the task and context ids, the lifecycle manager, and the
// shared session registry consulted for cooperative cancellation.
type Context struct {
	// TaskID is the id of the task being executed.
	TaskID string

	// ContextID groups this task with its originating conversation. The
	// session registry is keyed by it.
	ContextID string

	// UserMessage is the inbound message that started or continued the
	// task.
	UserMessage *a2akit.Message

	// Metadata is extension metadata from the request.
	Metadata map[string]any

	// Events is the lifecycle manager for this execution.
	Events *event.Manager

	// Sessions is the process-wide cancellation/connection registry.
	Sessions *session.Registry

	// CreatedAt is when this context was built.
	CreatedAt time.Time
}

// NewContext creates an execution context.
func NewContext(taskID, contextID string, message *a2akit.Message, sessions *session.Registry) *Context {
	return &Context{
		TaskID:      taskID,
		ContextID:   contextID,
		UserMessage: message,
		Sessions:    sessions,
		CreatedAt:   time.Now(),
	}
}

// IsCancelled reports whether this execution's context id has been marked
// cancelled in the session registry.
func (c *Context) IsCancelled() bool {
	return c.Sessions != nil && c.Sessions.IsCancelled(c.ContextID)
}

// CurrentTask returns the task snapshot the execution currently holds, or
// nil before the execution has started.
func (c *Context) CurrentTask() *a2akit.Task {
	if c.Events == nil {
		return nil
	}
	state := c.Events.CurrentState()
	if state == nil {
		return nil
	}
	return state.Task
}
