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

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/resilience"
)

const (
	// DefaultTimeout bounds a single backend call
	DefaultTimeout = 10 * time.Second
)

// HTTPConfig holds settings shared by the HTTP backend clients.
type HTTPConfig struct {
	// LeaveBaseURL is the base URL of the leave backend; requests go to
	// {base}/Leave.
	LeaveBaseURL string
	// ClockBaseURL is the base URL of the clock backend; requests go to
	// {base}/ClockIn.
	ClockBaseURL string
	// Token is sent as a bearer token on every request.
	Token string
	// Timeout bounds each call; DefaultTimeout when zero.
	Timeout time.Duration
}

// HTTPLeaveBackend talks to the leave backend over HTTP with bearer auth.
type HTTPLeaveBackend struct {
	config     HTTPConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// HTTPClockBackend talks to the clock backend over HTTP with bearer auth.
type HTTPClockBackend struct {
	config     HTTPConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPLeaveBackend creates an HTTP leave backend client.
func NewHTTPLeaveBackend(cfg HTTPConfig, logger *zap.Logger) *HTTPLeaveBackend {
	return &HTTPLeaveBackend{
		config:     cfg,
		httpClient: newHTTPClient(cfg.Timeout),
		logger:     loggerOrNop(logger),
	}
}

// NewHTTPClockBackend creates an HTTP clock backend client.
func NewHTTPClockBackend(cfg HTTPConfig, logger *zap.Logger) *HTTPClockBackend {
	return &HTTPClockBackend{
		config:     cfg,
		httpClient: newHTTPClient(cfg.Timeout),
		logger:     loggerOrNop(logger),
	}
}

// Submit creates a leave request. The backend's JSON body is returned as-is,
// whatever its status code; only transport and decode failures are errors.
func (b *HTTPLeaveBackend) Submit(ctx context.Context, payload LeavePayload) (Response, error) {
	b.logger.Info("Submitting leave request",
		zap.String("leave_type", payload.LeaveType),
		zap.String("begin_date", payload.BeginDate),
		zap.String("end_date", payload.EndDate))

	return postJSON(ctx, b.httpClient, b.config.LeaveBaseURL+"/Leave", b.config.Token, payload)
}

// List returns the current leave records.
func (b *HTTPLeaveBackend) List(ctx context.Context) ([]map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.config.LeaveBaseURL+"/Leave", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setAuthHeaders(req, b.config.Token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Warn("Leave list request failed", zap.Error(err))
		return nil, resilience.NewDependencyFailureError("leave backend request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var leaves []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&leaves); err != nil {
		return nil, fmt.Errorf("failed to decode leave list: %w", err)
	}

	b.logger.Debug("Leave list retrieved", zap.Int("count", len(leaves)))
	return leaves, nil
}

// Submit records a clock event.
func (b *HTTPClockBackend) Submit(ctx context.Context, payload ClockPayload) (Response, error) {
	b.logger.Info("Submitting clock request",
		zap.String("request_type", payload.RequestType),
		zap.String("date", payload.Date),
		zap.String("time", payload.Time))

	return postJSON(ctx, b.httpClient, b.config.ClockBaseURL+"/ClockIn", b.config.Token, payload)
}

// postJSON posts a JSON payload with bearer auth and decodes the JSON reply.
func postJSON(ctx context.Context, client *http.Client, url, token string, payload interface{}) (Response, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setAuthHeaders(req, token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, resilience.NewDependencyFailureError("backend request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}

	return body, nil
}

func setAuthHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
