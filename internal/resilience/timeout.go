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

package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Func is an operation executed under a deadline.
type Func func(ctx context.Context) error

// WithTimeout runs fn once under a deadline derived from ctx. The operation
// must honor ctx cancellation; a run cut short by the deadline comes back as
// a timeout-classified ServiceError wrapping the original cause.
func WithTimeout(ctx context.Context, timeout time.Duration, logger *zap.Logger, fn Func) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(timeoutCtx)
	if err == nil {
		return nil
	}

	if timeoutCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Operation timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return NewTimeoutError("operation timed out", err)
	}

	return err
}
