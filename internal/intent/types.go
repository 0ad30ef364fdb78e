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

// Package intent turns free-text user messages into normalized request
// records: a coarse intent plus typed slots, with date-bearing slots resolved
// to canonical ISO form where possible. Extraction delegates to an external
// text-understanding collaborator and repairs its output with deterministic
// local heuristics.
package intent

// Intent is the coarse category of what the user wants.
type Intent string

const (
	// IntentApplyLeave requests creation of a leave application
	IntentApplyLeave Intent = "apply_leave"
	// IntentViewLeaveStatus requests the current list of leave records
	IntentViewLeaveStatus Intent = "view_leave_status"
	// IntentClockInOut requests a clock-in or clock-out event
	IntentClockInOut Intent = "clock_in_out"
	// IntentUnknown is the default for anything unrecognized, including
	// extraction failures
	IntentUnknown Intent = "unknown"
)

// Slot names produced by the extraction step.
const (
	SlotLeaveType   = "leave_type"
	SlotStartDate   = "start_date"
	SlotEndDate     = "end_date"
	SlotReason      = "reason"
	SlotDate        = "date"
	SlotTime        = "time"
	SlotRequestType = "request_type"
)

// DateSlots lists the slots whose values are run through the date resolver.
var DateSlots = []string{SlotStartDate, SlotEndDate, SlotDate}

// NormalizedRequest is the central record produced by the Extractor. Slots
// hold the raw extracted strings; NormalizedDates holds resolved ISO dates
// keyed by slot name, populated only when resolution succeeded. Raw slot
// values are never dropped, and slots irrelevant to the intent are carried
// through untouched for downstream code to ignore.
type NormalizedRequest struct {
	Intent          Intent            `json:"intent"`
	Slots           map[string]string `json:"slots,omitempty"`
	NormalizedDates map[string]string `json:"normalized_dates,omitempty"`
}

// NewNormalizedRequest returns an empty record with the unknown intent set.
func NewNormalizedRequest() NormalizedRequest {
	return NormalizedRequest{
		Intent:          IntentUnknown,
		Slots:           make(map[string]string),
		NormalizedDates: make(map[string]string),
	}
}

// Slot returns the raw value for a slot name, or "" when absent.
func (r NormalizedRequest) Slot(name string) string {
	return r.Slots[name]
}

// DateSlot returns the normalized date for a slot when resolution succeeded,
// falling back to the raw slot value otherwise.
func (r NormalizedRequest) DateSlot(name string) string {
	if normalized, ok := r.NormalizedDates[name]; ok {
		return normalized
	}
	return r.Slots[name]
}

// HasSlot reports whether a slot holds a non-empty value.
func (r NormalizedRequest) HasSlot(name string) bool {
	return r.Slots[name] != ""
}
