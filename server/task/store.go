// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package task provides task persistence and the update reconciliation
// logic that folds engine events into a persisted task aggregate.
package task

import (
	"context"
	"errors"

	"github.com/agentmesh/a2akit"
)

// Store defines the persistence contract for task aggregates. The task id
// is the save key. Load returns a2akit.TaskNotFoundError for an absent id;
// LoadOrNil bridges that to a nil aggregate for callers that fabricate
// fresh state on miss.
type Store interface {
	// Load retrieves the aggregate for taskID.
	Load(ctx context.Context, taskID string) (*a2akit.TaskAndHistory, error)

	// Save persists the aggregate, keyed by data.Task.ID. An existing
	// entry is overwritten.
	Save(ctx context.Context, data *a2akit.TaskAndHistory) error

	// ListIDs returns the ids of all stored tasks.
	ListIDs(ctx context.Context) ([]string, error)
}

// LoadOrNil loads the aggregate for taskID, converting the store's typed
// not-found error into a nil aggregate. Any other error propagates
// unchanged.
func LoadOrNil(ctx context.Context, store Store, taskID string) (*a2akit.TaskAndHistory, error) {
	data, err := store.Load(ctx, taskID)
	if err != nil {
		var notFound a2akit.TaskNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
