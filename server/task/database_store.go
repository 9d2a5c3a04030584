// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	"github.com/agentmesh/a2akit"
)

// taskRecord is the database row for one task aggregate. The aggregate is
// stored serialized; id, context id and state are lifted into columns for
// querying.
type taskRecord struct {
	ID        string `gorm:"primaryKey"`
	ContextID string `gorm:"index"`
	State     string
	Data      []byte
	UpdatedAt time.Time
}

// TableName sets the gorm table name.
func (taskRecord) TableName() string { return "tasks" }

// DatabaseStore is a Store backed by a GORM database connection.
type DatabaseStore struct {
	db *gorm.DB
}

var _ Store = (*DatabaseStore)(nil)

// NewDatabaseStore creates a DatabaseStore, migrating the tasks table.
func NewDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tasks table: %w", err)
	}
	return &DatabaseStore{db: db}, nil
}

// Load retrieves the aggregate for taskID.
func (s *DatabaseStore) Load(ctx context.Context, taskID string) (*a2akit.TaskAndHistory, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a2akit.TaskNotFoundError{TaskID: taskID}
		}
		return nil, NewStoreError("load", taskID, err)
	}

	var data a2akit.TaskAndHistory
	if err := json.Unmarshal(rec.Data, &data); err != nil {
		return nil, NewStoreError("load", taskID, fmt.Errorf("failed to decode aggregate: %w", err))
	}
	return &data, nil
}

// Save persists the aggregate, keyed by task id.
func (s *DatabaseStore) Save(ctx context.Context, data *a2akit.TaskAndHistory) error {
	if data == nil || data.Task == nil || data.Task.ID == "" {
		return fmt.Errorf("aggregate must carry a task with an ID")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return NewStoreError("save", data.Task.ID, fmt.Errorf("failed to encode aggregate: %w", err))
	}

	rec := taskRecord{
		ID:        data.Task.ID,
		ContextID: data.Task.ContextID,
		State:     string(data.Task.Status.State),
		Data:      raw,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return NewStoreError("save", data.Task.ID, err)
	}
	return nil
}

// ListIDs returns the ids of all stored tasks.
func (s *DatabaseStore) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&taskRecord{}).Pluck("id", &ids).Error; err != nil {
		return nil, NewStoreError("list", "", err)
	}
	return ids, nil
}
