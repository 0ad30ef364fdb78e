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

// clockRequiredFields is the fixed order for missing-field prompts
var clockRequiredFields = []string{
	intent.SlotDate,
	intent.SlotTime,
	intent.SlotRequestType,
	intent.SlotReason,
}

// ClockHandler records clock-in/out events, or prompts for whatever required
// details are still missing.
type ClockHandler struct {
	backend    backend.ClockBackend
	summarizer *summary.Summarizer
	logger     *zap.Logger
}

// Handle validates the record, submits the clock event, and summarizes the
// outcome. Same failure-isolation policy as the leave handler.
func (h *ClockHandler) Handle(ctx context.Context, record intent.NormalizedRequest) ActionResult {
	missing := missingFields(record, clockRequiredFields)
	if len(missing) > 0 {
		return ActionResult{
			Message:       fmt.Sprintf("Please provide %s for clock request.", strings.Join(missing, ", ")),
			MissingFields: missing,
		}
	}

	payload := backend.ClockPayload{
		Date:        record.DateSlot(intent.SlotDate),
		Time:        record.Slot(intent.SlotTime),
		RequestType: record.Slot(intent.SlotRequestType),
		Reason:      record.Slot(intent.SlotReason),
	}

	backendResponse, err := h.backend.Submit(ctx, payload)
	if err != nil {
		h.logger.Warn("Clock backend submission failed", zap.Error(err))
		backendResponse = backend.Response{"error": err.Error()}
	}

	message := h.summarizer.Summarize(ctx, payload, "Clock Request")

	return ActionResult{
		Message:         message,
		Payload:         payload,
		BackendResponse: backendResponse,
	}
}
