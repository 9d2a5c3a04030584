// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package a2akit

import (
	"fmt"
)

// JSON-RPC style error codes surfaced to protocol callers.
const (
	ErrorCodeJSONParse                    int64 = -32700
	ErrorCodeInvalidRequest               int64 = -32600
	ErrorCodeMethodNotFound               int64 = -32601
	ErrorCodeInvalidParams                int64 = -32602
	ErrorCodeInternalError                int64 = -32603
	ErrorCodeTaskNotFound                 int64 = -32001
	ErrorCodeTaskNotCancelable            int64 = -32002
	ErrorCodePushNotificationNotSupported int64 = -32003
	ErrorCodeUnsupportedOperation         int64 = -32004
	ErrorCodeContentTypeNotSupported      int64 = -32005
	ErrorCodeInvalidAgentResponse         int64 = -32006
)

// ProtocolError is an error with a stable numeric code that is surfaced to
// protocol callers, never silently swallowed.
type ProtocolError interface {
	error
	Code() int64
}

// TaskNotFoundError indicates the requested task id was not found.
type TaskNotFoundError struct {
	TaskID string
}

// Error returns the error message.
func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// Code returns ErrorCodeTaskNotFound.
func (e TaskNotFoundError) Code() int64 { return ErrorCodeTaskNotFound }

// TaskNotCancelableError indicates the task is in a state where it cannot
// be canceled.
type TaskNotCancelableError struct {
	TaskID string
	State  TaskState
}

// Error returns the error message.
func (e TaskNotCancelableError) Error() string {
	return fmt.Sprintf("task cannot be canceled: %s (state %s)", e.TaskID, e.State)
}

// Code returns ErrorCodeTaskNotCancelable.
func (e TaskNotCancelableError) Code() int64 { return ErrorCodeTaskNotCancelable }

// JSONParseError indicates invalid JSON was received.
type JSONParseError struct {
	Msg string
}

// Error returns the error message.
func (e JSONParseError) Error() string {
	return fmt.Sprintf("JSON parse error: %s", e.Msg)
}

// Code returns ErrorCodeJSONParse.
func (e JSONParseError) Code() int64 { return ErrorCodeJSONParse }

// InvalidRequestError indicates the request object is not valid.
type InvalidRequestError struct {
	Msg string
}

// Error returns the error message.
func (e InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Msg)
}

// Code returns ErrorCodeInvalidRequest.
func (e InvalidRequestError) Code() int64 { return ErrorCodeInvalidRequest }

// MethodNotFoundError indicates the method does not exist.
type MethodNotFoundError struct {
	Method string
}

// Error returns the error message.
func (e MethodNotFoundError) Error() string {
	return fmt.Sprintf("method not found: %s", e.Method)
}

// Code returns ErrorCodeMethodNotFound.
func (e MethodNotFoundError) Code() int64 { return ErrorCodeMethodNotFound }

// InvalidParamsError indicates invalid method parameters.
type InvalidParamsError struct {
	Msg string
}

// Error returns the error message.
func (e InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid params: %s", e.Msg)
}

// Code returns ErrorCodeInvalidParams.
func (e InvalidParamsError) Code() int64 { return ErrorCodeInvalidParams }

// InternalError indicates an internal server error.
type InternalError struct {
	Msg string
}

// Error returns the error message.
func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Msg)
}

// Code returns ErrorCodeInternalError.
func (e InternalError) Code() int64 { return ErrorCodeInternalError }

// PushNotificationNotSupportedError indicates the agent does not support
// push notifications.
type PushNotificationNotSupportedError struct{}

// Error returns the error message.
func (e PushNotificationNotSupportedError) Error() string {
	return "push notifications are not supported"
}

// Code returns ErrorCodePushNotificationNotSupported.
func (e PushNotificationNotSupportedError) Code() int64 {
	return ErrorCodePushNotificationNotSupported
}

// UnsupportedOperationError indicates the requested operation is not
// supported by the agent.
type UnsupportedOperationError struct {
	Operation string
}

// Error returns the error message.
func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation: %s", e.Operation)
}

// Code returns ErrorCodeUnsupportedOperation.
func (e UnsupportedOperationError) Code() int64 { return ErrorCodeUnsupportedOperation }

// ContentTypeNotSupportedError indicates incompatible content types between
// request and agent capabilities.
type ContentTypeNotSupportedError struct {
	ContentType string
}

// Error returns the error message.
func (e ContentTypeNotSupportedError) Error() string {
	return fmt.Sprintf("content type not supported: %s", e.ContentType)
}

// Code returns ErrorCodeContentTypeNotSupported.
func (e ContentTypeNotSupportedError) Code() int64 { return ErrorCodeContentTypeNotSupported }

// InvalidAgentResponseError indicates the agent returned an invalid
// response for the current method.
type InvalidAgentResponseError struct {
	Msg string
}

// Error returns the error message.
func (e InvalidAgentResponseError) Error() string {
	return fmt.Sprintf("invalid agent response: %s", e.Msg)
}

// Code returns ErrorCodeInvalidAgentResponse.
func (e InvalidAgentResponseError) Code() int64 { return ErrorCodeInvalidAgentResponse }
