// Copyright 2025 ERP Chatbot Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resilience bounds the chatbot's outbound calls. Every call to the
// language model or an ERP backend is attempted exactly once inside a
// deadline; this package provides that timeout wrapper plus the error
// taxonomy the callers use to tell a slow dependency from a broken one.
// There is no retry or circuit-breaking machinery here on purpose.
package resilience

import (
	"context"
	"errors"
	"strings"
)

// ErrorCode categorizes an outbound call failure.
type ErrorCode string

const (
	// ErrorCodeTimeout marks a call that exceeded its deadline
	ErrorCodeTimeout ErrorCode = "TIMEOUT"
	// ErrorCodeDependencyFailure marks an unreachable or misbehaving dependency
	ErrorCodeDependencyFailure ErrorCode = "DEPENDENCY_FAILURE"
	// ErrorCodeInternalError marks everything else
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ServiceError carries an error category alongside the underlying cause.
type ServiceError struct {
	Message  string
	Code     ErrorCode
	Internal error
}

// Error keeps the underlying cause visible; callers surface these messages
// verbatim in response bodies.
func (e *ServiceError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Internal
}

// NewTimeoutError creates a timeout-classified error.
func NewTimeoutError(message string, internal error) *ServiceError {
	return &ServiceError{Message: message, Code: ErrorCodeTimeout, Internal: internal}
}

// NewDependencyFailureError creates a dependency-failure error.
func NewDependencyFailureError(message string, internal error) *ServiceError {
	return &ServiceError{Message: message, Code: ErrorCodeDependencyFailure, Internal: internal}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, internal error) *ServiceError {
	return &ServiceError{Message: message, Code: ErrorCodeInternalError, Internal: internal}
}

// CodeOf returns the error's category, classifying unwrapped errors by
// inspection.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return ErrorCodeTimeout
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host"):
		return ErrorCodeDependencyFailure
	default:
		return ErrorCodeInternalError
	}
}

// IsTimeout reports whether the error is timeout-classified.
func IsTimeout(err error) bool {
	return CodeOf(err) == ErrorCodeTimeout
}
