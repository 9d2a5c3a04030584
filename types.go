// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2akit provides the data model for the Agent-to-Agent (A2A) task
// protocol: tasks, messages, artifacts, the streaming event union, and the
// protocol error taxonomy.
package a2akit

import (
	"time"
)

// EventKind discriminates the wire event union.
type EventKind string

const (
	// MessageEventKind tags a standalone Message event.
	MessageEventKind EventKind = "message"
	// TaskEventKind tags a full Task snapshot event.
	TaskEventKind EventKind = "task"
	// StatusUpdateEventKind tags a TaskStatusUpdateEvent.
	StatusUpdateEventKind EventKind = "status-update"
	// ArtifactUpdateEventKind tags a TaskArtifactUpdateEvent.
	ArtifactUpdateEventKind EventKind = "artifact-update"
)

// TaskState is the lifecycle state of a Task.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateUnknown       TaskState = "unknown"
)

// IsFinalState reports whether state is terminal. Once a task reaches a
// final state no further status or artifact updates apply.
func IsFinalState(state TaskState) bool {
	switch state {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	default:
		return false
	}
}

// MessageRole identifies the sender of a Message.
type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleAgent MessageRole = "agent"
)

// Message represents a single conversation turn exchanged between user and
// agent.
type Message struct {
	// Event type, always "message".
	Kind EventKind `json:"kind"`

	// Identifier created by the message creator. History insertion is
	// de-duplicated by this id.
	MessageID string `json:"messageId"`

	// Message sender's role.
	Role MessageRole `json:"role"`

	// Message content.
	Parts PartList `json:"parts"`

	// Identifier of the task the message is related to.
	TaskID string `json:"taskId,omitzero"`

	// The context the message is associated with.
	ContextID string `json:"contextId,omitzero"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskStatus is a TaskState and an accompanying message.
type TaskStatus struct {
	// State of the task.
	State TaskState `json:"state"`

	// Additional status message for the client.
	Message *Message `json:"message,omitzero"`

	// ISO 8601 datetime string when the status was recorded.
	Timestamp string `json:"timestamp,omitzero"`
}

// Artifact represents a named output generated for a task, independently
// addressable by id.
type Artifact struct {
	// Unique identifier for the artifact, used to find-or-create on update.
	ArtifactID string `json:"artifactId"`

	// Optional name for the artifact.
	Name string `json:"name,omitzero"`

	// Optional description for the artifact.
	Description string `json:"description,omitzero"`

	// Artifact content.
	Parts PartList `json:"parts"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Task is the durable, identifiable unit of agent work.
type Task struct {
	// Unique identifier for the task. Immutable once created.
	ID string `json:"id"`

	// Server-generated id for contextual alignment across interactions.
	// Immutable once created.
	ContextID string `json:"contextId"`

	// Event type, always "task".
	Kind EventKind `json:"kind"`

	// Current status of the task.
	Status TaskStatus `json:"status"`

	// Collection of artifacts created by the agent, ordered, keyed by
	// artifactId.
	Artifacts []*Artifact `json:"artifacts,omitzero"`

	// Conversation history, append-only except for a single head insert of
	// the originating user message.
	History []*Message `json:"history,omitzero"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskAndHistory is the aggregate unit of load/save against a TaskStore.
type TaskAndHistory struct {
	Task    *Task      `json:"task"`
	History []*Message `json:"history"`
}

// TaskStatusUpdateEvent is sent by the server during streaming or subscribe
// requests when a task's status changes.
type TaskStatusUpdateEvent struct {
	// Event type, always "status-update".
	Kind EventKind `json:"kind"`

	// Task id the update applies to. Must match the current task.
	TaskID string `json:"taskId"`

	// The context the task is associated with.
	ContextID string `json:"contextId"`

	// New status of the task.
	Status TaskStatus `json:"status"`

	// Indicates the end of the event stream.
	Final bool `json:"final"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskArtifactUpdateEvent is sent by the server during streaming or
// subscribe requests when a task generates or extends an artifact.
type TaskArtifactUpdateEvent struct {
	// Event type, always "artifact-update".
	Kind EventKind `json:"kind"`

	// Task id the update applies to.
	TaskID string `json:"taskId"`

	// The context the task is associated with.
	ContextID string `json:"contextId"`

	// Generated artifact.
	Artifact *Artifact `json:"artifact"`

	// Indicates this event's parts append to the identified artifact
	// instead of replacing it.
	Append bool `json:"append,omitzero"`

	// Indicates this is the last chunk of the artifact.
	LastChunk bool `json:"lastChunk,omitzero"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Event is the union of updates an engine can produce and a streaming
// client can consume: Message, Task, TaskStatusUpdateEvent, or
// TaskArtifactUpdateEvent.
type Event interface {
	// GetEventKind returns the event kind for type discrimination.
	GetEventKind() EventKind
	// GetTaskID returns the task id associated with this event, or "" if
	// the event is not bound to a task.
	GetTaskID() string
}

var (
	_ Event = (*Message)(nil)
	_ Event = (*Task)(nil)
	_ Event = (*TaskStatusUpdateEvent)(nil)
	_ Event = (*TaskArtifactUpdateEvent)(nil)
)

// GetEventKind returns MessageEventKind.
func (m *Message) GetEventKind() EventKind { return MessageEventKind }

// GetTaskID returns the task id the message references.
func (m *Message) GetTaskID() string { return m.TaskID }

// GetEventKind returns TaskEventKind.
func (t *Task) GetEventKind() EventKind { return TaskEventKind }

// GetTaskID returns the task id.
func (t *Task) GetTaskID() string { return t.ID }

// GetEventKind returns StatusUpdateEventKind.
func (e *TaskStatusUpdateEvent) GetEventKind() EventKind { return StatusUpdateEventKind }

// GetTaskID returns the task id the update applies to.
func (e *TaskStatusUpdateEvent) GetTaskID() string { return e.TaskID }

// GetEventKind returns ArtifactUpdateEventKind.
func (e *TaskArtifactUpdateEvent) GetEventKind() EventKind { return ArtifactUpdateEventKind }

// GetTaskID returns the task id the update applies to.
func (e *TaskArtifactUpdateEvent) GetTaskID() string { return e.TaskID }

// IsFinalEvent reports whether event terminates a stream: a status update
// marked final, a standalone message, or a task snapshot in a final state.
func IsFinalEvent(event Event) bool {
	switch e := event.(type) {
	case *TaskStatusUpdateEvent:
		return e.Final
	case *Message:
		return true
	case *Task:
		return IsFinalState(e.Status.State)
	default:
		return false
	}
}

// Timestamp formats t in the wire datetime format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
