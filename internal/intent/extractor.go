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

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/dates"
	"github.com/your-org/erp-chatbot/internal/llm"
)

// fewShotExamples anchor the extraction model on the expected JSON shape
const fewShotExamples = `User: I need sick leave from 2025-10-10 to 2025-10-12 due to fever.
JSON: {"intent":"apply_leave","leave_type":"sick","start_date":"2025-10-10","end_date":"2025-10-12","reason":"fever"}

User: Please mark me clocked in today at 09:15 because I forgot to punch in.
JSON: {"intent":"clock_in_out","request_type":"Clock-In","date":"today","time":"09:15","reason":"forgot to punch in"}

User: Show my pending leaves
JSON: {"intent":"view_leave_status"}`

// Extractor produces NormalizedRequest records from raw user messages by
// combining an external understanding call with local repair heuristics.
type Extractor struct {
	understander llm.Understander
	logger       *zap.Logger
	now          func() time.Time
}

// NewExtractor creates an Extractor. The clock defaults to the UTC wall
// clock and is injectable so date resolution is deterministic in tests.
func NewExtractor(understander llm.Understander, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		understander: understander,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the reference-date source.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract analyzes a user message and returns a normalized request record.
// Any failure of the understanding collaborator, or an unparseable reply,
// degrades to an unknown-intent record; no error escapes to the caller.
func (e *Extractor) Extract(ctx context.Context, userMessage string) NormalizedRequest {
	record := NewNormalizedRequest()

	reply, err := e.understander.Understand(ctx, buildExtractionPrompt(userMessage))
	if err != nil {
		// Transport failure degrades to an unrecognized request with no
		// slots at all; there is no model output to repair.
		e.logger.Warn("Intent extraction call failed, degrading to unknown intent",
			zap.Error(err))
		return record
	}

	parsed, err := parseExtractionReply(reply)
	if err != nil {
		e.logger.Warn("Could not parse extraction reply, degrading to unknown intent",
			zap.String("reply", truncate(reply, 200)),
			zap.Error(err))
		return fillMissingSlots(record, userMessage)
	}

	record = parsed
	e.normalizeDates(record)
	record = fillMissingSlots(record, userMessage)

	e.logger.Debug("Extracted normalized request",
		zap.String("intent", string(record.Intent)),
		zap.Int("slot_count", len(record.Slots)),
		zap.Int("normalized_dates", len(record.NormalizedDates)))

	return record
}

// buildExtractionPrompt assembles the fixed instruction, the worked examples,
// and the user message into a single extraction prompt.
func buildExtractionPrompt(userMessage string) string {
	return fmt.Sprintf(`You are an intent+entity extraction assistant for an ERP chatbot.
Return a strict JSON object with the following possible keys:
- intent (apply_leave, view_leave_status, clock_in_out, unknown)
- leave_type
- start_date
- end_date
- reason
- date
- time
- request_type

Examples:
%s

User message: %q
JSON:`, fewShotExamples, userMessage)
}

// parseExtractionReply pulls the first balanced JSON object out of the reply
// and maps it onto a NormalizedRequest. Unknown keys are carried through as
// raw slots; non-string values are ignored.
func parseExtractionReply(reply string) (NormalizedRequest, error) {
	span := firstJSONObject(reply)
	if span == "" {
		return NormalizedRequest{}, fmt.Errorf("no JSON object in reply")
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return NormalizedRequest{}, fmt.Errorf("invalid JSON in reply: %w", err)
	}

	record := NewNormalizedRequest()
	for key, value := range fields {
		text, ok := value.(string)
		if !ok {
			continue
		}
		if key == "intent" {
			record.Intent = canonicalIntent(text)
			continue
		}
		record.Slots[key] = text
	}

	return record, nil
}

// canonicalIntent maps the extracted intent string onto the enum, defaulting
// to unknown for anything unrecognized.
func canonicalIntent(text string) Intent {
	switch Intent(text) {
	case IntentApplyLeave, IntentViewLeaveStatus, IntentClockInOut:
		return Intent(text)
	default:
		return IntentUnknown
	}
}

// normalizeDates resolves each date-bearing slot against the current
// reference date. A resolution failure leaves the slot raw; the entry is
// simply absent from NormalizedDates.
func (e *Extractor) normalizeDates(record NormalizedRequest) {
	referenceDate := e.now()
	for _, name := range DateSlots {
		raw := record.Slots[name]
		if raw == "" {
			continue
		}
		if resolved, ok := dates.Resolve(raw, referenceDate); ok {
			record.NormalizedDates[name] = resolved
		}
	}
}

// truncate shortens text for logging.
func truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength] + "..."
}
