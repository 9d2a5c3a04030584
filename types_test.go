// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package a2akit

import (
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

func TestIsFinalState(t *testing.T) {
	t.Parallel()

	tests := map[TaskState]bool{
		TaskStateSubmitted:     false,
		TaskStateWorking:       false,
		TaskStateInputRequired: false,
		TaskStateAuthRequired:  false,
		TaskStateCompleted:     true,
		TaskStateCanceled:      true,
		TaskStateFailed:        true,
		TaskStateRejected:      true,
		TaskStateUnknown:       false,
	}
	for state, want := range tests {
		if got := IsFinalState(state); got != want {
			t.Errorf("IsFinalState(%s) = %v, want %v", state, got, want)
		}
	}
}

func TestIsFinalEvent(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		event Event
		want  bool
	}{
		"final status update": {
			event: &TaskStatusUpdateEvent{
				Kind:   StatusUpdateEventKind,
				Status: TaskStatus{State: TaskStateCompleted},
				Final:  true,
			},
			want: true,
		},
		"intermediate status update": {
			event: &TaskStatusUpdateEvent{
				Kind:   StatusUpdateEventKind,
				Status: TaskStatus{State: TaskStateWorking},
			},
			want: false,
		},
		"task in final state": {
			event: &Task{
				Kind:   TaskEventKind,
				Status: TaskStatus{State: TaskStateCanceled},
			},
			want: true,
		},
		"task in flight": {
			event: &Task{
				Kind:   TaskEventKind,
				Status: TaskStatus{State: TaskStateWorking},
			},
			want: false,
		},
		"message": {
			event: NewAgentTextMessage("done"),
			want:  true,
		},
		"artifact update": {
			event: &TaskArtifactUpdateEvent{Kind: ArtifactUpdateEventKind},
			want:  false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := IsFinalEvent(tt.event); got != tt.want {
				t.Errorf("IsFinalEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartList_UnmarshalUnion(t *testing.T) {
	t.Parallel()

	raw := `[
		{"kind":"text","text":"hello"},
		{"kind":"data","data":{"answer":42}},
		{"kind":"file","file":{"name":"report.pdf","mimeType":"application/pdf","uri":"https://example.com/report.pdf"}}
	]`

	var parts PartList
	if err := json.Unmarshal([]byte(raw), &parts); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := PartList{
		&TextPart{Kind: PartKindText, Text: "hello"},
		&DataPart{Kind: PartKindData, Data: map[string]any{"answer": float64(42)}},
		&FilePart{Kind: PartKindFile, File: FileContent{
			Name:     "report.pdf",
			MimeType: "application/pdf",
			URI:      "https://example.com/report.pdf",
		}},
	}
	if diff := cmp.Diff(want, parts); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}
}

func TestPartList_UnmarshalUnknownKind(t *testing.T) {
	t.Parallel()

	var parts PartList
	if err := json.Unmarshal([]byte(`[{"kind":"video"}]`), &parts); err == nil {
		t.Error("unknown part kind should fail to decode")
	}
}

func TestEventKindDiscriminators(t *testing.T) {
	t.Parallel()

	events := map[EventKind]Event{
		MessageEventKind:        &Message{},
		TaskEventKind:           &Task{},
		StatusUpdateEventKind:   &TaskStatusUpdateEvent{},
		ArtifactUpdateEventKind: &TaskArtifactUpdateEvent{},
	}
	for want, ev := range events {
		if got := ev.GetEventKind(); got != want {
			t.Errorf("GetEventKind() = %s, want %s", got, want)
		}
	}
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("stamps generated ids onto the message", func(t *testing.T) {
		t.Parallel()

		msg := NewUserMessage(NewTextPart("hi"))
		task, err := NewTask(msg, "", "", map[string]any{"source": "test"})
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if task.ID == "" || task.ContextID == "" {
			t.Error("ids should be generated")
		}
		if msg.TaskID != task.ID || msg.ContextID != task.ContextID {
			t.Error("message should be stamped with the new ids")
		}
		if task.Status.State != TaskStateSubmitted {
			t.Errorf("state = %s, want submitted", task.Status.State)
		}
		if _, err := time.Parse(time.RFC3339Nano, task.Status.Timestamp); err != nil {
			t.Errorf("timestamp is not RFC3339: %v", err)
		}
		if len(task.History) != 1 || task.History[0] != msg {
			t.Error("history should hold the originating message")
		}
	})

	t.Run("keeps supplied ids", func(t *testing.T) {
		t.Parallel()

		msg := NewUserMessage(NewTextPart("hi"))
		task, err := NewTask(msg, "task-1", "ctx-1", nil)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if task.ID != "task-1" || task.ContextID != "ctx-1" {
			t.Errorf("ids = %s/%s, want task-1/ctx-1", task.ID, task.ContextID)
		}
	})

	t.Run("rejects empty message", func(t *testing.T) {
		t.Parallel()

		if _, err := NewTask(nil, "", "", nil); err == nil {
			t.Error("nil message should be rejected")
		}
		if _, err := NewTask(&Message{Kind: MessageEventKind}, "", "", nil); err == nil {
			t.Error("message without parts should be rejected")
		}
	})
}

func TestGetMessageText(t *testing.T) {
	t.Parallel()

	msg := NewUserMessage(
		NewTextPart("line one"),
		NewDataPart(map[string]any{"skip": true}),
		NewTextPart("line two"),
	)
	if got, want := GetMessageText(msg), "line one\nline two"; got != want {
		t.Errorf("GetMessageText() = %q, want %q", got, want)
	}
	if GetMessageText(nil) != "" {
		t.Error("nil message should yield empty text")
	}
}
