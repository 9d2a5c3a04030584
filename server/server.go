// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/gorilla/mux"

	"github.com/agentmesh/a2akit"
)

// Server binds a [Handler] to HTTP: a single JSON-RPC POST endpoint, with
// streaming methods answered as Server-Sent Events.
type Server struct {
	handler  *Handler
	router   *mux.Router
	logger   *slog.Logger
	endpoint string
}

// ServerOption configures the [Server].
type ServerOption func(*Server)

// WithEndpoint sets the JSON-RPC endpoint path. The default is "/".
func WithEndpoint(endpoint string) ServerOption {
	return func(s *Server) {
		s.endpoint = endpoint
	}
}

// NewServer creates an HTTP binding for the given protocol handler.
func NewServer(handler *Handler, opts ...ServerOption) *Server {
	s := &Server{
		handler:  handler,
		logger:   handler.logger,
		endpoint: "/",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc(s.endpoint, s.handleRPC).Methods(http.MethodPost)

	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleRPC decodes one JSON-RPC request and routes it by method.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req a2akit.Request
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		s.writeResponse(w, a2akit.NewErrorResponse(nil, a2akit.JSONParseError{Msg: err.Error()}))
		return
	}
	if req.JSONRPC != a2akit.JSONRPCVersion {
		s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidRequestError{Msg: "jsonrpc must be 2.0"}))
		return
	}

	ctx := r.Context()

	switch req.Method {
	case a2akit.MethodMessageSend:
		var params a2akit.MessageSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		result, err := s.handler.SendMessage(ctx, &params)
		s.writeResult(w, req.ID, result, err)

	case a2akit.MethodMessageStream:
		var params a2akit.MessageSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		consumer, err := s.handler.StreamMessage(ctx, &params)
		if err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, err))
			return
		}
		s.serveSSE(w, r, req.ID, consumer)

	case a2akit.MethodTasksGet:
		var params a2akit.TaskQueryParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		result, err := s.handler.GetTask(ctx, &params)
		s.writeResult(w, req.ID, result, err)

	case a2akit.MethodTasksCancel:
		var params a2akit.TaskIDParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		result, err := s.handler.CancelTask(ctx, &params)
		s.writeResult(w, req.ID, result, err)

	case a2akit.MethodTasksResubscribe:
		var params a2akit.TaskIDParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		consumer, err := s.handler.Resubscribe(ctx, &params)
		if err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, err))
			return
		}
		s.serveSSE(w, r, req.ID, consumer)

	case a2akit.MethodTasksPushConfigSet:
		var params a2akit.TaskPushNotificationConfig
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		result, err := s.handler.SetTaskPushNotification(ctx, &params)
		s.writeResult(w, req.ID, result, err)

	case a2akit.MethodTasksPushConfigGet:
		var params a2akit.TaskIDParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.InvalidParamsError{Msg: err.Error()}))
			return
		}
		result, err := s.handler.GetTaskPushNotification(ctx, &params)
		s.writeResult(w, req.ID, result, err)

	default:
		s.writeResponse(w, a2akit.NewErrorResponse(req.ID, a2akit.MethodNotFoundError{Method: string(req.Method)}))
	}
}

func (s *Server) writeResult(w http.ResponseWriter, id any, result any, err error) {
	if err != nil {
		s.writeResponse(w, a2akit.NewErrorResponse(id, err))
		return
	}
	s.writeResponse(w, a2akit.NewResponse(id, result))
}

func (s *Server) writeResponse(w http.ResponseWriter, resp *a2akit.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.MarshalWrite(w, resp); err != nil {
		s.logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
