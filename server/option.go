// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/agentmesh/a2akit/server/task"
)

// Option represents an option for configuring the [Handler].
type Option func(*Handler)

// WithLogger sets the [*slog.Logger] for the [Handler].
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [Handler].
func WithTracer(tracer trace.Tracer) Option {
	return func(h *Handler) {
		h.tracer = tracer
	}
}

// WithStore sets the task store backing the [Handler].
func WithStore(store task.Store) Option {
	return func(h *Handler) {
		h.store = store
	}
}

// WithPushConfigStore sets the push notification config store for the
// [Handler].
func WithPushConfigStore(store task.PushConfigStore) Option {
	return func(h *Handler) {
		h.pushStore = store
	}
}

// WithQueueSize bounds the per-execution event buffers.
func WithQueueSize(size int) Option {
	return func(h *Handler) {
		h.queueSize = size
	}
}

// WithMetrics sets the protocol metrics for the [Handler].
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}
