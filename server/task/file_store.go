// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/agentmesh/a2akit"
)

// FileStore persists each task aggregate as one JSON file under a base
// directory, named <taskID>.json. Writes go through a temp file and
// rename so a crashed write never leaves a truncated aggregate behind.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load retrieves the aggregate for taskID.
func (s *FileStore) Load(ctx context.Context, taskID string) (*a2akit.TaskAndHistory, error) {
	path, err := s.path(taskID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, a2akit.TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var data a2akit.TaskAndHistory
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode task file %s: %w", path, err)
	}
	return &data, nil
}

// Save persists the aggregate, keyed by task id.
func (s *FileStore) Save(ctx context.Context, data *a2akit.TaskAndHistory) error {
	if data == nil || data.Task == nil || data.Task.ID == "" {
		return fmt.Errorf("aggregate must carry a task with an ID")
	}

	path, err := s.path(data.Task.ID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode aggregate: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close task file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace task file: %w", err)
	}
	return nil
}

// ListIDs returns the ids of all stored tasks.
func (s *FileStore) ListIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// path maps a task id to its file, rejecting ids that would escape the
// store directory.
func (s *FileStore) path(taskID string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("task ID cannot be empty")
	}
	if strings.ContainsAny(taskID, `/\`) || taskID == "." || taskID == ".." {
		return "", fmt.Errorf("invalid task ID: %q", taskID)
	}
	return filepath.Join(s.dir, taskID+".json"), nil
}
