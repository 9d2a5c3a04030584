// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agentmesh/a2akit"
)

func newSQLiteStore(t *testing.T) *DatabaseStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tasks.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	store, err := NewDatabaseStore(db)
	if err != nil {
		t.Fatalf("NewDatabaseStore() error = %v", err)
	}
	return store
}

func TestDatabaseStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t)

	want := testAggregate("task-1", "ctx-1")
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}

	if err := store.Save(ctx, testAggregate("task-2", "ctx-2")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	ids, err := store.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	sort.Strings(ids)
	if diff := cmp.Diff([]string{"task-1", "task-2"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDatabaseStore_SaveOverwritesRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t)

	data := testAggregate("task-1", "ctx-1")
	if err := store.Save(ctx, data); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data.Task.Status.State = a2akit.TaskStateCompleted
	if err := store.Save(ctx, data); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, err := store.Load(ctx, "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Task.Status.State != a2akit.TaskStateCompleted {
		t.Errorf("state = %q, want %q", got.Task.Status.State, a2akit.TaskStateCompleted)
	}

	ids, err := store.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("ListIDs() = %v, want a single id", ids)
	}
}

func TestDatabaseStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)

	_, err := store.Load(context.Background(), "absent")
	var notFound a2akit.TaskNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Load() error = %v, want TaskNotFoundError", err)
	}
	if notFound.TaskID != "absent" {
		t.Errorf("TaskID = %q, want %q", notFound.TaskID, "absent")
	}
}

func TestDatabaseStore_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t)

	if _, err := store.Load(ctx, ""); err == nil {
		t.Error("Load(\"\") error = nil, want error")
	}
	if err := store.Save(ctx, nil); err == nil {
		t.Error("Save(nil) error = nil, want error")
	}
	if err := store.Save(ctx, &a2akit.TaskAndHistory{Task: &a2akit.Task{}}); err == nil {
		t.Error("Save() with empty task id error = nil, want error")
	}

	if _, err := NewDatabaseStore(nil); err == nil {
		t.Error("NewDatabaseStore(nil) error = nil, want error")
	}
}
