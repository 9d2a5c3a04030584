// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/agentmesh/a2akit"
)

// Processor applies incoming events to a task aggregate and persists the
// result. One Processor serves one execution context; it carries the
// context id the execution is bound to and the latest pending user message
// awaiting history insertion.
type Processor struct {
	store     Store
	contextID string
	logger    *slog.Logger

	// pending is the most recent message-kind update, spliced into history
	// when a later task-kind update arrives without it.
	pending *a2akit.Message
}

// NewProcessor creates a Processor bound to the given execution context id.
func NewProcessor(store Store, contextID string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{store: store, contextID: contextID, logger: logger}
}

// Apply folds one event into current, mutating it in place on success.
// The returned bool reports whether the update was accepted; a rejected
// update leaves current untouched. Rejections are logged, not thrown.
func (p *Processor) Apply(ctx context.Context, current *a2akit.TaskAndHistory, update a2akit.Event) bool {
	if update == nil {
		p.logger.ErrorContext(ctx, "rejecting nil update")
		return false
	}
	if current == nil || current.Task == nil || current.Task.ID == "" {
		p.logger.ErrorContext(ctx, "rejecting update: no current task",
			slog.String("kind", string(update.GetEventKind())))
		return false
	}
	if p.contextID == "" {
		p.logger.ErrorContext(ctx, "rejecting update: no context id",
			slog.String("task_id", current.Task.ID))
		return false
	}

	switch u := update.(type) {
	case *a2akit.Message:
		// Held until a task snapshot arrives; does not touch the task.
		p.pending = u
		return true

	case *a2akit.Task:
		p.mergeTask(ctx, current, u)
		return true

	case *a2akit.TaskStatusUpdateEvent:
		if u.TaskID != current.Task.ID {
			p.logger.ErrorContext(ctx, "rejecting status update: task id mismatch",
				slog.String("update_task_id", u.TaskID),
				slog.String("task_id", current.Task.ID))
			return false
		}
		p.applyStatusUpdate(current, u)
		return true

	case *a2akit.TaskArtifactUpdateEvent:
		if u.Artifact == nil {
			p.logger.ErrorContext(ctx, "rejecting artifact update: no artifact",
				slog.String("task_id", current.Task.ID))
			return false
		}
		if u.TaskID != current.Task.ID {
			// The parallel status-update path rejects on mismatch. This
			// path reports acceptance while skipping the mutation, which
			// existing clients depend on.
			p.logger.ErrorContext(ctx, "skipping artifact update: task id mismatch",
				slog.String("update_task_id", u.TaskID),
				slog.String("task_id", current.Task.ID))
			return true
		}
		p.applyArtifactUpdate(ctx, current.Task, u)
		return true

	default:
		p.logger.ErrorContext(ctx, "rejecting update of unknown kind",
			slog.String("kind", string(update.GetEventKind())))
		return false
	}
}

// Process applies update to current and persists the mutated aggregate. A
// rejected update is a local invariant violation: it returns an error and
// nothing is persisted.
func (p *Processor) Process(ctx context.Context, current *a2akit.TaskAndHistory, update a2akit.Event) (*a2akit.TaskAndHistory, error) {
	if ok := p.Apply(ctx, current, update); !ok {
		return nil, fmt.Errorf("%w: kind %s", ErrUpdateRejected, update.GetEventKind())
	}
	current.Task.History = current.History
	if err := p.store.Save(ctx, current); err != nil {
		return nil, NewStoreError("save", current.Task.ID, err)
	}
	return current, nil
}

// mergeTask shallow-merges an incoming task snapshot onto the current
// task, incoming fields winning, then splices the pending user message
// into history if it is not already present.
func (p *Processor) mergeTask(ctx context.Context, current *a2akit.TaskAndHistory, in *a2akit.Task) {
	dst := current.Task
	if in.ID != "" {
		dst.ID = in.ID
	}
	if in.ContextID != "" {
		dst.ContextID = in.ContextID
	}
	if in.Status.State != "" {
		dst.Status = in.Status
	}
	if in.Artifacts != nil {
		dst.Artifacts = in.Artifacts
	}
	if in.History != nil {
		current.History = in.History
	}
	if in.Metadata != nil {
		dst.Metadata = in.Metadata
	}

	if p.pending == nil {
		return
	}
	for _, msg := range current.History {
		if msg.MessageID == p.pending.MessageID {
			return
		}
	}
	p.logger.InfoContext(ctx, "splicing pending message into history",
		slog.String("message_id", p.pending.MessageID),
		slog.String("task_id", dst.ID))
	current.History = append([]*a2akit.Message{p.pending}, current.History...)
}

// applyStatusUpdate replaces the task status. The reconciler is the
// timestamp authority: the incoming timestamp is informational only and is
// always overwritten with now. A status message is appended to history
// unless a message with the same id already exists.
func (p *Processor) applyStatusUpdate(current *a2akit.TaskAndHistory, u *a2akit.TaskStatusUpdateEvent) {
	current.Task.Status = u.Status
	current.Task.Status.Timestamp = a2akit.Timestamp(time.Now())

	msg := u.Status.Message
	if msg == nil {
		return
	}
	for _, existing := range current.History {
		if existing.MessageID == msg.MessageID {
			return
		}
	}
	current.History = append(current.History, msg)
}

// applyArtifactUpdate merges an artifact event into the task's artifact
// list: append parts to an existing artifact, replace it wholesale, or add
// it as a new entry.
func (p *Processor) applyArtifactUpdate(ctx context.Context, t *a2akit.Task, u *a2akit.TaskArtifactUpdateEvent) {
	incoming := u.Artifact
	for i, existing := range t.Artifacts {
		if existing.ArtifactID != incoming.ArtifactID {
			continue
		}
		if u.Append {
			p.logger.InfoContext(ctx, "appending parts to artifact",
				slog.String("artifact_id", incoming.ArtifactID),
				slog.String("task_id", t.ID))
			existing.Parts = append(existing.Parts, incoming.Parts...)
			if incoming.Metadata != nil {
				if existing.Metadata == nil {
					existing.Metadata = make(map[string]any, len(incoming.Metadata))
				}
				maps.Copy(existing.Metadata, incoming.Metadata)
			}
			if incoming.Name != "" {
				existing.Name = incoming.Name
			}
			if incoming.Description != "" {
				existing.Description = incoming.Description
			}
		} else {
			p.logger.InfoContext(ctx, "replacing artifact",
				slog.String("artifact_id", incoming.ArtifactID),
				slog.String("task_id", t.ID))
			t.Artifacts[i] = incoming
		}
		return
	}

	p.logger.InfoContext(ctx, "adding new artifact",
		slog.String("artifact_id", incoming.ArtifactID),
		slog.String("task_id", t.ID))
	t.Artifacts = append(t.Artifacts, incoming)
}

// LoadOrCreate returns the existing aggregate for taskID, or fabricates a
// fresh one in the submitted state from the inbound message. A loaded
// aggregate is returned unchanged; the inbound message is fed through the
// reconciler separately by the caller.
func LoadOrCreate(ctx context.Context, store Store, message *a2akit.Message, metadata map[string]any, taskID, contextID string) (*a2akit.TaskAndHistory, error) {
	if taskID != "" {
		data, err := LoadOrNil(ctx, store, taskID)
		if err != nil {
			return nil, NewStoreError("load", taskID, err)
		}
		if data != nil {
			return data, nil
		}
	}

	t, err := a2akit.NewTask(message, taskID, contextID, metadata)
	if err != nil {
		return nil, err
	}
	return &a2akit.TaskAndHistory{
		Task:    t,
		History: []*a2akit.Message{message},
	}, nil
}
