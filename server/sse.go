// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/agentmesh/a2akit"
	"github.com/agentmesh/a2akit/server/event"
)

const heartbeatInterval = 15 * time.Second

// serveSSE streams a consumer's events to the client as Server-Sent
// Events. Each data line is a JSON-RPC response carrying one event; an
// execution failure is delivered as a terminal error response on the
// stream rather than a clean close.
func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request, id any, consumer *event.Consumer) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // for nginx proxies
	flusher.Flush()

	s.handler.metrics.streamOpened()
	defer s.handler.metrics.streamClosed()

	events := consumer.Events(r.Context())
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if err := consumer.Err(); err != nil {
					s.writeSSE(w, a2akit.NewErrorResponse(id, err))
					flusher.Flush()
				}
				return
			}
			s.writeSSE(w, a2akit.NewResponse(id, ev))
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) writeSSE(w http.ResponseWriter, resp *a2akit.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal stream event", slog.Any("error", err))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
