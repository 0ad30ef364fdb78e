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

	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/backend"
	"github.com/your-org/erp-chatbot/internal/summary"
)

// StatusHandler answers leave-status queries. It needs no slots, and it is
// the one handler that surfaces backend failure directly in its message:
// there is no payload submission to report on instead.
type StatusHandler struct {
	backend    backend.LeaveBackend
	summarizer *summary.Summarizer
	logger     *zap.Logger
}

// Handle queries the leave backend and summarizes the record count.
func (h *StatusHandler) Handle(ctx context.Context) ActionResult {
	leaves, err := h.backend.List(ctx)
	if err != nil {
		h.logger.Warn("Leave status query failed", zap.Error(err))
		return ActionResult{
			Message: fmt.Sprintf("Error fetching leave status: %s", err.Error()),
		}
	}

	message := h.summarizer.Summarize(ctx, map[string]interface{}{"total_leaves": len(leaves)}, "Leave Status")

	return ActionResult{
		Message:   message,
		Leaves:    leaves,
		HasLeaves: true,
	}
}
