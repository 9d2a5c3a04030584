// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agentmesh/a2akit/server/event"
)

// Driver pumps an engine's output through an execution's lifecycle
// manager. It guarantees that updates are processed strictly in
// production order, one at a time; that a cancellation observed between
// updates stops the pump without reconciling anything further; that any
// failure is funneled through the error hook and then returned; and that
// the completion hook fires exactly once per execution, in every outcome.
type Driver struct {
	logger    *slog.Logger
	queueSize int
}

// NewDriver creates a Driver. queueSize bounds the engine output buffer;
// zero selects the default.
func NewDriver(logger *slog.Logger, queueSize int) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{logger: logger, queueSize: queueSize}
}

// Execute runs engine to completion under rc's lifecycle. It returns the
// engine or reconciliation error, after the error hook has recorded it
// and the completion hook has run.
func (d *Driver) Execute(ctx context.Context, engine Engine, rc *Context) error {
	queue, err := event.NewQueue(d.queueSize)
	if err != nil {
		return err
	}

	// Hooks that run after cancellation still need to persist state.
	hctx := context.WithoutCancel(ctx)
	defer rc.Events.Complete(hctx)

	if err := rc.Events.Start(ctx); err != nil {
		rc.Events.Error(hctx, err)
		return err
	}

	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()

	engineDone := make(chan error, 1)
	go func() {
		defer queue.Close()
		engineDone <- engine.Execute(engineCtx, rc, queue)
	}()

	cancelled := false
	for {
		ev, derr := queue.Dequeue(ctx)
		if derr != nil {
			if errors.Is(derr, event.ErrQueueClosed) {
				// The abort may race the engine closing its queue; an
				// aborted run still takes the cancel path.
				if ctx.Err() != nil {
					cancelled = true
					if cerr := rc.Events.Cancel(hctx, nil); cerr != nil {
						stopEngine()
						<-engineDone
						rc.Events.Error(hctx, cerr)
						return cerr
					}
				}
				break
			}
			// Abort signal fired while waiting on the engine.
			cancelled = true
			if cerr := rc.Events.Cancel(hctx, nil); cerr != nil {
				stopEngine()
				<-engineDone
				rc.Events.Error(hctx, cerr)
				return cerr
			}
			break
		}

		if rc.IsCancelled() || ctx.Err() != nil {
			// Stop pumping; the in-flight engine step is not interrupted
			// but nothing further is reconciled.
			cancelled = true
			if cerr := rc.Events.Cancel(hctx, ev); cerr != nil {
				stopEngine()
				<-engineDone
				rc.Events.Error(hctx, cerr)
				return cerr
			}
			break
		}

		if uerr := rc.Events.Update(ctx, ev); uerr != nil {
			stopEngine()
			<-engineDone
			rc.Events.Error(hctx, uerr)
			return uerr
		}
	}

	stopEngine()
	engineErr := <-engineDone

	if cancelled {
		if engineErr != nil {
			d.logger.DebugContext(ctx, "engine error after cancellation",
				slog.String("context_id", rc.ContextID),
				slog.Any("error", engineErr))
		}
		return nil
	}
	if engineErr != nil {
		rc.Events.Error(hctx, engineErr)
		return engineErr
	}
	return nil
}
