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

// Package health reports service liveness and the reachability of the
// chatbot's dependencies (ERP backends, session storage).
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// StatusHealthy indicates the service and all dependencies are up
	StatusHealthy = "ok"
	// StatusDegraded indicates the service is up but a dependency is not
	StatusDegraded = "degraded"
	// DefaultTimeout bounds a full round of dependency checks
	DefaultTimeout = 5 * time.Second
)

// CheckResult is the outcome of a single dependency check.
type CheckResult struct {
	Status    string        `json:"status"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Response is the full health report for the service.
type Response struct {
	Status       string                 `json:"status"`
	Service      string                 `json:"service"`
	Version      string                 `json:"version"`
	Uptime       string                 `json:"uptime"`
	Dependencies map[string]CheckResult `json:"dependencies,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// Checker probes one dependency.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// Manager runs registered dependency checks and assembles the health report.
// A failing dependency degrades the report but never marks the service down;
// the chatbot keeps answering with its fallback behavior when a backend is
// unreachable.
type Manager struct {
	serviceName string
	version     string
	startTime   time.Time
	checkers    map[string]Checker
	timeout     time.Duration
	logger      *zap.Logger
}

// NewManager creates a health manager for the named service.
func NewManager(serviceName, version string, logger *zap.Logger) *Manager {
	return &Manager{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		checkers:    make(map[string]Checker),
		timeout:     DefaultTimeout,
		logger:      logger,
	}
}

// AddChecker registers a dependency check under a name.
func (m *Manager) AddChecker(name string, checker Checker) {
	m.checkers[name] = checker
}

// Check runs all registered checks and returns the aggregated report.
func (m *Manager) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := StatusHealthy
	var dependencies map[string]CheckResult
	if len(m.checkers) > 0 {
		dependencies = make(map[string]CheckResult, len(m.checkers))
	}

	for name, checker := range m.checkers {
		start := time.Now()
		result := CheckResult{Status: StatusHealthy, Timestamp: start}
		if err := checker.Check(ctx); err != nil {
			result.Status = StatusDegraded
			result.Error = err.Error()
			status = StatusDegraded
			m.logger.Warn("Dependency check failed",
				zap.String("dependency", name),
				zap.Error(err))
		}
		result.Latency = time.Since(start)
		dependencies[name] = result
	}

	return Response{
		Status:       status,
		Service:      m.serviceName,
		Version:      m.version,
		Uptime:       time.Since(m.startTime).Round(time.Second).String(),
		Dependencies: dependencies,
		Timestamp:    time.Now(),
	}
}

// BackendChecker probes an ERP backend base URL with a GET request. Any
// HTTP response counts as reachable; only transport failures degrade.
func BackendChecker(baseURL string, client *http.Client) Checker {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return CheckerFunc(func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}
		_ = resp.Body.Close()
		return nil
	})
}

// StorageChecker wraps a storage ping function as a dependency check.
func StorageChecker(pingFunc func(ctx context.Context) error) Checker {
	return CheckerFunc(pingFunc)
}
