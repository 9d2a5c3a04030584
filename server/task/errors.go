// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"errors"
	"fmt"
)

// ErrUpdateRejected indicates an update failed a reconciliation invariant
// and was not applied. The aggregate must not be persisted when this is
// returned.
var ErrUpdateRejected = errors.New("update rejected by reconciler")

// StoreError wraps a storage backend failure with the operation and task
// id it occurred on.
type StoreError struct {
	Op     string
	TaskID string
	Err    error
}

// Error returns the error message.
func (e *StoreError) Error() string {
	return fmt.Sprintf("task store %s failed for task %s: %v", e.Op, e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a StoreError.
func NewStoreError(op, taskID string, err error) *StoreError {
	return &StoreError{Op: op, TaskID: taskID, Err: err}
}
