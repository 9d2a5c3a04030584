// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/agentmesh/a2akit"
	"github.com/agentmesh/a2akit/server/task"
)

// Notifier delivers push notifications for tasks that have a registered
// push notification config. Delivery is best effort: failures are logged
// and never fail the execution.
type Notifier struct {
	configs task.PushConfigStore
	client  *http.Client
	logger  *slog.Logger
}

// NewNotifier creates a push notification sender over the given config
// store.
func NewNotifier(configs task.PushConfigStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		configs: configs,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Notify POSTs the task snapshot to the configured URL, if a config has
// been registered for the task.
func (n *Notifier) Notify(ctx context.Context, snapshot *a2akit.Task) {
	if snapshot == nil || snapshot.ID == "" {
		return
	}
	config, err := n.configs.GetConfig(ctx, snapshot.ID)
	if err != nil || config.PushNotificationConfig == nil || config.PushNotificationConfig.URL == "" {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to marshal push notification",
			slog.String("task_id", snapshot.ID),
			slog.Any("error", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.PushNotificationConfig.URL, bytes.NewReader(data))
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to build push notification request",
			slog.String("task_id", snapshot.ID),
			slog.Any("error", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if config.PushNotificationConfig.Token != "" {
		req.Header.Set("Authorization", "Bearer "+config.PushNotificationConfig.Token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.WarnContext(ctx, "push notification delivery failed",
			slog.String("task_id", snapshot.ID),
			slog.String("url", config.PushNotificationConfig.URL),
			slog.Any("error", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.WarnContext(ctx, "push notification rejected",
			slog.String("task_id", snapshot.ID),
			slog.Int("status_code", resp.StatusCode))
	}
}
