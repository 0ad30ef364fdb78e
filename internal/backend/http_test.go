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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/your-org/erp-chatbot/internal/resilience"
)

func TestHTTPLeaveBackend_Submit(t *testing.T) {
	var gotAuth, gotPath string
	var gotPayload LeavePayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"created","id":42}`))
	}))
	defer server.Close()

	client := NewHTTPLeaveBackend(HTTPConfig{
		LeaveBaseURL: server.URL,
		Token:        "secret-token",
	}, zaptest.NewLogger(t))

	payload := LeavePayload{LeaveType: "sick", BeginDate: "2025-10-10", EndDate: "2025-10-12", Reason: "fever"}
	resp, err := client.Submit(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/Leave", gotPath)
	assert.Equal(t, payload, gotPayload)
	assert.Equal(t, "created", resp["status"])
}

func TestHTTPLeaveBackend_SubmitNonSuccessStatusStillDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"overlapping leave"}`))
	}))
	defer server.Close()

	client := NewHTTPLeaveBackend(HTTPConfig{LeaveBaseURL: server.URL}, zaptest.NewLogger(t))

	resp, err := client.Submit(context.Background(), LeavePayload{LeaveType: "casual"})

	// The backend's own error body is data, not a transport failure
	require.NoError(t, err)
	assert.Equal(t, "overlapping leave", resp["error"])
}

func TestHTTPLeaveBackend_SubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // immediately, to force connection refused

	client := NewHTTPLeaveBackend(HTTPConfig{LeaveBaseURL: server.URL}, zaptest.NewLogger(t))

	_, err := client.Submit(context.Background(), LeavePayload{})
	require.Error(t, err)
	assert.Equal(t, resilience.ErrorCodeDependencyFailure, resilience.CodeOf(err))
	assert.Contains(t, err.Error(), "backend request failed")
}

func TestHTTPLeaveBackend_ListTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	client := NewHTTPLeaveBackend(HTTPConfig{LeaveBaseURL: server.URL}, zaptest.NewLogger(t))

	_, err := client.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, resilience.ErrorCodeDependencyFailure, resilience.CodeOf(err))
}

func TestHTTPLeaveBackend_SubmitMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	client := NewHTTPLeaveBackend(HTTPConfig{LeaveBaseURL: server.URL}, zaptest.NewLogger(t))

	_, err := client.Submit(context.Background(), LeavePayload{})
	assert.Error(t, err)
}

func TestHTTPLeaveBackend_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Leave", r.URL.Path)
		_, _ = w.Write([]byte(`[{"leave_type":"sick"},{"leave_type":"casual"}]`))
	}))
	defer server.Close()

	client := NewHTTPLeaveBackend(HTTPConfig{LeaveBaseURL: server.URL, Token: "tok"}, zaptest.NewLogger(t))

	leaves, err := client.List(context.Background())

	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, "sick", leaves[0]["leave_type"])
}

func TestHTTPClockBackend_Submit(t *testing.T) {
	var gotPath string
	var gotPayload ClockPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"status":"recorded"}`))
	}))
	defer server.Close()

	client := NewHTTPClockBackend(HTTPConfig{ClockBaseURL: server.URL, Token: "tok"}, zaptest.NewLogger(t))

	payload := ClockPayload{Date: "2025-10-08", Time: "09:15", RequestType: "Clock-In", Reason: "forgot to punch in"}
	resp, err := client.Submit(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, "/ClockIn", gotPath)
	assert.Equal(t, payload, gotPayload)
	assert.Equal(t, "recorded", resp["status"])
}
