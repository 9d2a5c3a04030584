// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"sync"

	"github.com/agentmesh/a2akit"
)

// PushConfigStore is pass-through storage for per-task push notification
// configuration.
type PushConfigStore interface {
	// SetConfig stores the push configuration for a task.
	SetConfig(ctx context.Context, config *a2akit.TaskPushNotificationConfig) error

	// GetConfig retrieves the push configuration for a task. Returns
	// a2akit.TaskNotFoundError if none is stored.
	GetConfig(ctx context.Context, taskID string) (*a2akit.TaskPushNotificationConfig, error)
}

// InMemoryPushConfigStore is an in-memory PushConfigStore.
type InMemoryPushConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*a2akit.TaskPushNotificationConfig
}

var _ PushConfigStore = (*InMemoryPushConfigStore)(nil)

// NewInMemoryPushConfigStore creates an empty InMemoryPushConfigStore.
func NewInMemoryPushConfigStore() *InMemoryPushConfigStore {
	return &InMemoryPushConfigStore{
		configs: make(map[string]*a2akit.TaskPushNotificationConfig),
	}
}

// SetConfig stores the push configuration for a task.
func (s *InMemoryPushConfigStore) SetConfig(ctx context.Context, config *a2akit.TaskPushNotificationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[config.TaskID] = config
	return nil
}

// GetConfig retrieves the push configuration for a task.
func (s *InMemoryPushConfigStore) GetConfig(ctx context.Context, taskID string) (*a2akit.TaskPushNotificationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[taskID]
	if !ok {
		return nil, a2akit.TaskNotFoundError{TaskID: taskID}
	}
	return config, nil
}
