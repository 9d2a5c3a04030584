// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"context"

	"github.com/agentmesh/a2akit/server/event"
)

// Engine is the caller-supplied producer of task updates. Execute runs
// the agent's work, emitting status updates, artifact updates, messages,
// and task snapshots onto the queue, and returns when the work is done or
// failed. The queue is closed by the driver once Execute returns; an
// engine must stop producing after it has emitted a final-state update.
type Engine interface {
	Execute(ctx context.Context, rc *Context, queue *event.Queue) error
}

// EngineFunc adapts a plain function to the Engine interface.
type EngineFunc func(ctx context.Context, rc *Context, queue *event.Queue) error

// Execute calls f.
func (f EngineFunc) Execute(ctx context.Context, rc *Context, queue *event.Queue) error {
	return f(ctx, rc, queue)
}
