// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-json-experiment/json"

	"github.com/agentmesh/a2akit"
)

// InMemoryStore is an in-memory Store. Task data is lost when the process
// stops. All operations are safe for concurrent use; concurrent writers to
// the same task id are last-write-wins.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2akit.TaskAndHistory
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks: make(map[string]*a2akit.TaskAndHistory),
	}
}

// Load retrieves a deep copy of the aggregate for taskID.
func (s *InMemoryStore) Load(ctx context.Context, taskID string) (*a2akit.TaskAndHistory, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.RLock()
	data, ok := s.tasks[taskID]
	s.mu.RUnlock()

	if !ok {
		return nil, a2akit.TaskNotFoundError{TaskID: taskID}
	}
	return cloneAggregate(data)
}

// Save persists a deep copy of the aggregate, keyed by task id.
func (s *InMemoryStore) Save(ctx context.Context, data *a2akit.TaskAndHistory) error {
	if data == nil || data.Task == nil || data.Task.ID == "" {
		return fmt.Errorf("aggregate must carry a task with an ID")
	}

	clone, err := cloneAggregate(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks[data.Task.ID] = clone
	s.mu.Unlock()
	return nil
}

// ListIDs returns the ids of all stored tasks.
func (s *InMemoryStore) ListIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	return ids, nil
}

// Size returns the number of stored tasks.
func (s *InMemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// cloneAggregate deep-copies an aggregate through the wire codec so stored
// state cannot be mutated behind the store's back.
func cloneAggregate(data *a2akit.TaskAndHistory) (*a2akit.TaskAndHistory, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode aggregate: %w", err)
	}
	var clone a2akit.TaskAndHistory
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, fmt.Errorf("failed to decode aggregate: %w", err)
	}
	return &clone, nil
}
