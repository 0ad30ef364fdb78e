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

// Package summary turns structured payloads into short human-readable
// sentences via an external text-generation collaborator, with a
// deterministic fallback so a failed summary never blocks a response.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/llm"
)

// Summarizer produces one-line summaries of request payloads and results.
type Summarizer struct {
	generator llm.Generator
	logger    *zap.Logger
}

// NewSummarizer creates a Summarizer backed by the given generator.
func NewSummarizer(generator llm.Generator, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{generator: generator, logger: logger}
}

// Summarize sends the pretty-printed payload with a fixed instruction to the
// generation collaborator and returns the trimmed reply. On any failure it
// returns the fixed fallback "{label} processed." so the caller always has a
// non-empty message.
func (s *Summarizer) Summarize(ctx context.Context, payload interface{}, label string) string {
	fallback := fmt.Sprintf("%s processed.", label)

	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.logger.Warn("Could not marshal payload for summary, using fallback",
			zap.String("label", label),
			zap.Error(err))
		return fallback
	}

	prompt := fmt.Sprintf("You are an ERP chatbot. Summarize this %s in one short sentence "+
		"(max 14 words). Respond only with plain text.\n\n%s", label, pretty)

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Summary generation failed, using fallback",
			zap.String("label", label),
			zap.Error(err))
		return fallback
	}

	text := strings.TrimSpace(reply)
	if text == "" {
		return fallback
	}
	return text
}
