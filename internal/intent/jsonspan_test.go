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

package intent

import "testing"

func TestFirstJSONObject(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "bare object",
			text:     `{"intent":"apply_leave"}`,
			expected: `{"intent":"apply_leave"}`,
		},
		{
			name:     "object wrapped in prose",
			text:     "Sure, here you go:\n{\"intent\":\"unknown\"}\nLet me know if you need more.",
			expected: `{"intent":"unknown"}`,
		},
		{
			name:     "object inside code fence",
			text:     "```json\n{\"intent\":\"clock_in_out\",\"time\":\"09:15\"}\n```",
			expected: `{"intent":"clock_in_out","time":"09:15"}`,
		},
		{
			name:     "nested braces",
			text:     `prefix {"a":{"b":{"c":1}},"d":2} suffix`,
			expected: `{"a":{"b":{"c":1}},"d":2}`,
		},
		{
			name:     "braces inside string values",
			text:     `{"reason":"meeting at {HQ}","intent":"apply_leave"}`,
			expected: `{"reason":"meeting at {HQ}","intent":"apply_leave"}`,
		},
		{
			name:     "escaped quote inside string",
			text:     `{"reason":"said \"no\" {twice}"}`,
			expected: `{"reason":"said \"no\" {twice}"}`,
		},
		{
			name:     "first of two objects wins",
			text:     `{"intent":"apply_leave"} {"intent":"clock_in_out"}`,
			expected: `{"intent":"apply_leave"}`,
		},
		{
			name:     "no object",
			text:     "I could not extract anything useful.",
			expected: "",
		},
		{
			name:     "unbalanced object",
			text:     `{"intent":"apply_leave"`,
			expected: "",
		},
		{
			name:     "empty input",
			text:     "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := firstJSONObject(tc.text); got != tc.expected {
				t.Errorf("firstJSONObject(%q) = %q, want %q", tc.text, got, tc.expected)
			}
		})
	}
}
