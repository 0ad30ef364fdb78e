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

	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/backend"
	"github.com/your-org/erp-chatbot/internal/intent"
	"github.com/your-org/erp-chatbot/internal/summary"
)

// UnsupportedMessage is the fixed reply for intents the chatbot cannot serve
const UnsupportedMessage = "Sorry, we don't have this feature yet."

// Router maps a normalized request's intent onto its action handler.
type Router struct {
	leave  *LeaveHandler
	clock  *ClockHandler
	status *StatusHandler
	logger *zap.Logger
}

// New creates a Router with handlers wired to the given collaborators.
func New(leaveBackend backend.LeaveBackend, clockBackend backend.ClockBackend, summarizer *summary.Summarizer, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		leave:  &LeaveHandler{backend: leaveBackend, summarizer: summarizer, logger: logger},
		clock:  &ClockHandler{backend: clockBackend, summarizer: summarizer, logger: logger},
		status: &StatusHandler{backend: leaveBackend, summarizer: summarizer, logger: logger},
		logger: logger,
	}
}

// Route dispatches the record to the handler for its intent. Dispatch is
// single-shot: no state is retained across calls, and every intent value
// (including ones the extractor never legitimately produces) resolves to a
// defined branch.
func (r *Router) Route(ctx context.Context, record intent.NormalizedRequest) ActionResult {
	r.logger.Debug("Routing request", zap.String("intent", string(record.Intent)))

	switch record.Intent {
	case intent.IntentApplyLeave:
		return r.leave.Handle(ctx, record)
	case intent.IntentViewLeaveStatus:
		return r.status.Handle(ctx)
	case intent.IntentClockInOut:
		return r.clock.Handle(ctx, record)
	default:
		return ActionResult{Message: UnsupportedMessage}
	}
}
