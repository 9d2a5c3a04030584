// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package a2akit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewUserMessage creates a user-role message with a generated message id.
func NewUserMessage(parts ...Part) *Message {
	return &Message{
		Kind:      MessageEventKind,
		MessageID: uuid.NewString(),
		Role:      MessageRoleUser,
		Parts:     parts,
	}
}

// NewAgentMessage creates an agent-role message with a generated message id.
func NewAgentMessage(parts ...Part) *Message {
	return &Message{
		Kind:      MessageEventKind,
		MessageID: uuid.NewString(),
		Role:      MessageRoleAgent,
		Parts:     parts,
	}
}

// NewAgentTextMessage creates an agent-role message with a single text part.
func NewAgentTextMessage(text string) *Message {
	return NewAgentMessage(NewTextPart(text))
}

// GetMessageText concatenates the text content of all text parts in the
// message, joined by newlines. Non-text parts are skipped.
func GetMessageText(message *Message) string {
	if message == nil {
		return ""
	}
	var texts []string
	for _, part := range message.Parts {
		if tp, ok := part.(*TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// NewTask fabricates a fresh Task in the submitted state from the
// originating user message. Missing task and context ids are generated and
// stamped back onto the message in place, so downstream consumers reading
// the message's own fields see the assigned ids.
func NewTask(message *Message, taskID, contextID string, metadata map[string]any) (*Task, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	if len(message.Parts) == 0 {
		return nil, fmt.Errorf("message must have at least one part")
	}

	if taskID == "" {
		taskID = uuid.NewString()
	}
	if contextID == "" {
		if message.ContextID != "" {
			contextID = message.ContextID
		} else {
			contextID = uuid.NewString()
		}
	}

	message.TaskID = taskID
	message.ContextID = contextID

	return &Task{
		ID:        taskID,
		ContextID: contextID,
		Kind:      TaskEventKind,
		Status: TaskStatus{
			State:     TaskStateSubmitted,
			Timestamp: Timestamp(time.Now()),
		},
		History:  []*Message{message},
		Metadata: metadata,
	}, nil
}

// NewArtifact creates an artifact with a generated id.
func NewArtifact(name, description string, parts ...Part) *Artifact {
	return &Artifact{
		ArtifactID:  uuid.NewString(),
		Name:        name,
		Description: description,
		Parts:       parts,
	}
}

// NewTextArtifact creates an artifact with a single text part.
func NewTextArtifact(name, text string) *Artifact {
	return NewArtifact(name, "", NewTextPart(text))
}
