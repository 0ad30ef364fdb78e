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

// Package router dispatches normalized request records to typed action
// handlers. Routing is total: every intent value maps to a defined branch,
// with anything unrecognized answered by a fixed unsupported-feature notice.
package router

import "github.com/your-org/erp-chatbot/internal/backend"

// ActionResult is the outcome of handling one request: a missing-fields
// prompt, a backend submission (successful or failed), a status report, or
// the unsupported-feature notice. It is constructed per request and never
// persisted.
type ActionResult struct {
	// Message is always set: the summary line, missing-fields prompt, or
	// fixed notice.
	Message string
	// MissingFields names the required slots that were absent, in the
	// handler's fixed order. Nil unless the result is a prompt.
	MissingFields []string
	// Payload is the request body that was submitted to a backend, when a
	// submission was attempted.
	Payload interface{}
	// BackendResponse is the backend's decoded reply, or an {"error": ...}
	// value when the call failed. Only set for submissions.
	BackendResponse backend.Response
	// Leaves holds the records returned by a successful status query.
	Leaves []map[string]interface{}
	// HasLeaves distinguishes an empty leave list from a failed query.
	HasLeaves bool
}

// IsPrompt reports whether the result asks the user for more information.
func (r ActionResult) IsPrompt() bool {
	return len(r.MissingFields) > 0
}

// Body renders the result as the JSON object returned to the caller, one of:
// {message}, {message, payload, backend_response}, or {message, leaves}.
func (r ActionResult) Body() map[string]interface{} {
	body := map[string]interface{}{"message": r.Message}
	if r.Payload != nil {
		body["payload"] = r.Payload
		body["backend_response"] = r.BackendResponse
	}
	if r.HasLeaves {
		leaves := r.Leaves
		if leaves == nil {
			leaves = []map[string]interface{}{}
		}
		body["leaves"] = leaves
	}
	return body
}
