// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package a2akit

import (
	"errors"

	"github.com/go-json-experiment/json/jsontext"
)

// JSONRPCVersion is the only supported JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

// Method names on the transport-facing protocol surface.
type Method string

const (
	MethodMessageSend        Method = "message/send"
	MethodMessageStream      Method = "message/stream"
	MethodTasksGet           Method = "tasks/get"
	MethodTasksCancel        Method = "tasks/cancel"
	MethodTasksResubscribe   Method = "tasks/resubscribe"
	MethodTasksPushConfigSet Method = "tasks/pushNotificationConfig/set"
	MethodTasksPushConfigGet Method = "tasks/pushNotificationConfig/get"
)

// Request represents a JSON-RPC 2.0 request object.
type Request struct {
	// JSONRPC must be exactly "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID is an identifier established by the client.
	ID any `json:"id,omitzero"`

	// Method is the name of the method to be invoked.
	Method Method `json:"method"`

	// Params holds the raw parameter value, decoded per method.
	Params jsontext.Value `json:"params,omitzero"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	// Code indicates the error type that occurred.
	Code int64 `json:"code"`

	// Message is a short description of the error.
	Message string `json:"message"`

	// Data carries additional structured information about the error.
	Data any `json:"data,omitzero"`
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Response represents a JSON-RPC 2.0 response object. Exactly one of
// Result and Err is set.
type Response struct {
	// JSONRPC is exactly "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID mirrors the request id.
	ID any `json:"id"`

	// Result is the result object on success.
	Result any `json:"result,omitzero"`

	// Err is the error object on failure.
	Err *Error `json:"error,omitzero"`
}

// NewResponse creates a success response for the given request id.
func NewResponse(id, result any) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// NewErrorResponse creates an error response for the given request id,
// mapping err onto its protocol error code. Errors that carry no code map
// to an internal error.
func NewErrorResponse(id any, err error) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Err: ToError(err)}
}

// ToError converts err into a wire Error, preserving the protocol code
// when one is present.
func ToError(err error) *Error {
	if err == nil {
		return nil
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	var perr ProtocolError
	if errors.As(err, &perr) {
		return &Error{Code: perr.Code(), Message: perr.Error()}
	}
	return &Error{Code: ErrorCodeInternalError, Message: err.Error()}
}

// MessageSendConfiguration configures a send message request.
type MessageSendConfiguration struct {
	// AcceptedOutputModes lists output modalities accepted by the client.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitzero"`

	// Blocking asks the server to treat the client as a blocking request.
	Blocking bool `json:"blocking,omitzero"`

	// HistoryLength is the number of recent messages to be retrieved.
	HistoryLength int `json:"historyLength,omitzero"`

	// PushNotificationConfig is where the server should send notifications
	// when disconnected.
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitzero"`
}

// MessageSendParams is sent by the client to the agent. May create,
// continue or restart a task.
type MessageSendParams struct {
	// Message being sent to the server.
	Message *Message `json:"message"`

	// Configuration for the send request.
	Configuration *MessageSendConfiguration `json:"configuration,omitzero"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskIDParams carries only a task id, for simple task operations.
type TaskIDParams struct {
	// Task id.
	ID string `json:"id"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskQueryParams are parameters for querying a task, including optional
// history length.
type TaskQueryParams struct {
	// Task id.
	ID string `json:"id"`

	// HistoryLength is the number of recent messages to be retrieved.
	// Zero retrieves the full history.
	HistoryLength int `json:"historyLength,omitzero"`

	// Extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// PushNotificationConfig describes where and how to push task updates.
type PushNotificationConfig struct {
	// URL to POST task snapshots to.
	URL string `json:"url"`

	// Token unique to this task or session.
	Token string `json:"token,omitzero"`
}

// TaskPushNotificationConfig binds a push notification configuration to a
// task.
type TaskPushNotificationConfig struct {
	// Task id.
	TaskID string `json:"taskId"`

	// Push notification configuration.
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig"`
}
