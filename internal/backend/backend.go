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

// Package backend provides clients for the ERP systems of record that
// actually perform leave and clock actions. The pipeline only prepares and
// forwards requests to them; their responses are treated as opaque JSON.
package backend

import "context"

// LeavePayload is the leave-application request forwarded to the leave backend.
type LeavePayload struct {
	LeaveType string `json:"leave_type"`
	BeginDate string `json:"begin_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// ClockPayload is the clock event forwarded to the clock backend.
type ClockPayload struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	RequestType string `json:"request_type"`
	Reason      string `json:"reason"`
}

// Response is the decoded JSON body returned by a backend.
type Response map[string]interface{}

// LeaveBackend is the system of record for leave requests.
type LeaveBackend interface {
	// Submit creates a leave request and returns the backend's response body.
	Submit(ctx context.Context, payload LeavePayload) (Response, error)
	// List returns the current leave records.
	List(ctx context.Context) ([]map[string]interface{}, error)
}

// ClockBackend is the system of record for clock events.
type ClockBackend interface {
	// Submit records a clock-in or clock-out event.
	Submit(ctx context.Context, payload ClockPayload) (Response, error)
}
