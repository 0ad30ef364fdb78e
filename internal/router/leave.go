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

package router

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/backend"
	"github.com/your-org/erp-chatbot/internal/intent"
	"github.com/your-org/erp-chatbot/internal/summary"
)

// leaveRequiredFields is the fixed order for missing-field prompts
var leaveRequiredFields = []string{
	intent.SlotLeaveType,
	intent.SlotStartDate,
	intent.SlotEndDate,
	intent.SlotReason,
}

// LeaveHandler applies for leave on the user's behalf, or prompts for
// whatever required details are still missing.
type LeaveHandler struct {
	backend    backend.LeaveBackend
	summarizer *summary.Summarizer
	logger     *zap.Logger
}

// Handle validates the record, submits the leave request, and summarizes the
// outcome. Backend failure is captured inside the result; the handler never
// fails the request outright.
func (h *LeaveHandler) Handle(ctx context.Context, record intent.NormalizedRequest) ActionResult {
	missing := missingFields(record, leaveRequiredFields)
	if len(missing) > 0 {
		return ActionResult{
			Message:       fmt.Sprintf("Please provide %s to apply for leave.", strings.Join(missing, ", ")),
			MissingFields: missing,
		}
	}

	payload := backend.LeavePayload{
		LeaveType: record.Slot(intent.SlotLeaveType),
		BeginDate: record.DateSlot(intent.SlotStartDate),
		EndDate:   record.DateSlot(intent.SlotEndDate),
		Reason:    record.Slot(intent.SlotReason),
	}

	backendResponse, err := h.backend.Submit(ctx, payload)
	if err != nil {
		h.logger.Warn("Leave backend submission failed", zap.Error(err))
		backendResponse = backend.Response{"error": err.Error()}
	}

	message := h.summarizer.Summarize(ctx, payload, "Leave Request")

	return ActionResult{
		Message:         message,
		Payload:         payload,
		BackendResponse: backendResponse,
	}
}

// missingFields returns the required slots absent from the record, preserving
// the handler's canonical order.
func missingFields(record intent.NormalizedRequest, required []string) []string {
	var missing []string
	for _, name := range required {
		if !record.HasSlot(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
