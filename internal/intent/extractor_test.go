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
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/your-org/erp-chatbot/internal/llm"
)

// testClock pins the reference date to 2025-10-08 (a Wednesday)
func testClock() time.Time {
	return time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
}

func scriptedUnderstander(reply string, err error) llm.Understander {
	return llm.UnderstanderFunc(func(_ context.Context, _ string) (string, error) {
		return reply, err
	})
}

func TestExtract_LeaveRequest(t *testing.T) {
	reply := `{"intent":"apply_leave","leave_type":"sick","start_date":"2025-10-10","end_date":"2025-10-12","reason":"fever"}`
	extractor := NewExtractor(scriptedUnderstander(reply, nil), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "I need sick leave from 2025-10-10 to 2025-10-12 due to fever")

	if record.Intent != IntentApplyLeave {
		t.Errorf("intent = %s, want %s", record.Intent, IntentApplyLeave)
	}

	expectedSlots := map[string]string{
		SlotLeaveType: "sick",
		SlotStartDate: "2025-10-10",
		SlotEndDate:   "2025-10-12",
		SlotReason:    "fever",
	}
	for name, want := range expectedSlots {
		if got := record.Slot(name); got != want {
			t.Errorf("slot %s = %q, want %q", name, got, want)
		}
	}

	// ISO dates resolve to themselves
	if got := record.DateSlot(SlotStartDate); got != "2025-10-10" {
		t.Errorf("start_date resolved to %q", got)
	}
	if got := record.DateSlot(SlotEndDate); got != "2025-10-12" {
		t.Errorf("end_date resolved to %q", got)
	}
}

func TestExtract_RelativeDatesNormalized(t *testing.T) {
	reply := `{"intent":"clock_in_out","request_type":"Clock-In","date":"tomorrow","time":"09:15","reason":"forgot to punch in"}`
	extractor := NewExtractor(scriptedUnderstander(reply, nil), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "clock in tomorrow at 09:15, forgot to punch in")

	if got := record.Slot(SlotDate); got != "tomorrow" {
		t.Errorf("raw date slot = %q, want %q (raw value must be retained)", got, "tomorrow")
	}
	if got := record.NormalizedDates[SlotDate]; got != "2025-10-09" {
		t.Errorf("normalized date = %q, want 2025-10-09", got)
	}
	if got := record.DateSlot(SlotDate); got != "2025-10-09" {
		t.Errorf("DateSlot prefers %q, want normalized value", got)
	}
}

func TestExtract_UnresolvableDateKeptRaw(t *testing.T) {
	reply := `{"intent":"apply_leave","start_date":"whenever works"}`
	extractor := NewExtractor(scriptedUnderstander(reply, nil), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "leave whenever works")

	if _, ok := record.NormalizedDates[SlotStartDate]; ok {
		t.Error("unresolvable date must be absent from NormalizedDates")
	}
	if got := record.DateSlot(SlotStartDate); got != "whenever works" {
		t.Errorf("DateSlot = %q, want raw value", got)
	}
}

func TestExtract_TransportFailure(t *testing.T) {
	extractor := NewExtractor(scriptedUnderstander("", fmt.Errorf("dial tcp: connection refused")), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "I need sick leave tomorrow")

	if record.Intent != IntentUnknown {
		t.Errorf("intent = %s, want unknown", record.Intent)
	}
	if len(record.Slots) != 0 {
		t.Errorf("slots = %v, want empty", record.Slots)
	}
}

func TestExtract_Timeout(t *testing.T) {
	extractor := NewExtractor(llm.UnderstanderFunc(func(ctx context.Context, _ string) (string, error) {
		return "", context.DeadlineExceeded
	}), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "show my leaves")

	if record.Intent != IntentUnknown {
		t.Errorf("intent = %s, want unknown", record.Intent)
	}
	if len(record.Slots) != 0 {
		t.Errorf("slots = %v, want empty", record.Slots)
	}
}

func TestExtract_NonJSONReply(t *testing.T) {
	extractor := NewExtractor(scriptedUnderstander("I cannot help with that.", nil), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "do something odd")

	if record.Intent != IntentUnknown {
		t.Errorf("intent = %s, want unknown", record.Intent)
	}
}

func TestExtract_FallbackFillerApplied(t *testing.T) {
	// Model omits leave_type and request_type; keyword rules repair both.
	reply := `{"intent":"clock_in_out","date":"today","time":"09:15"}`
	extractor := NewExtractor(scriptedUnderstander(reply, nil), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "please clock in today at 09:15")

	if got := record.Slot(SlotRequestType); got != "Clock-In" {
		t.Errorf("request_type = %q, want Clock-In from keyword fallback", got)
	}
	if record.HasSlot(SlotReason) {
		t.Errorf("reason = %q, want absent", record.Slot(SlotReason))
	}
}

func TestExtract_UnknownIntentValueDefaults(t *testing.T) {
	reply := `{"intent":"order_pizza","reason":"hungry"}`
	extractor := NewExtractor(scriptedUnderstander(reply, nil), zaptest.NewLogger(t)).WithClock(testClock)

	record := extractor.Extract(context.Background(), "order me a pizza")

	if record.Intent != IntentUnknown {
		t.Errorf("intent = %s, want unknown", record.Intent)
	}
	if got := record.Slot(SlotReason); got != "hungry" {
		t.Errorf("reason = %q, slots must still be carried", got)
	}
}

func TestExtract_PromptContainsMessageAndExamples(t *testing.T) {
	var captured string
	understander := llm.UnderstanderFunc(func(_ context.Context, prompt string) (string, error) {
		captured = prompt
		return `{"intent":"view_leave_status"}`, nil
	})
	extractor := NewExtractor(understander, zaptest.NewLogger(t)).WithClock(testClock)

	extractor.Extract(context.Background(), "show my pending leaves")

	if !strings.Contains(captured, "show my pending leaves") {
		t.Error("prompt does not contain the user message")
	}
	if !strings.Contains(captured, "view_leave_status") {
		t.Error("prompt does not contain the worked examples")
	}
	if !strings.Contains(captured, "strict JSON object") {
		t.Error("prompt does not contain the fixed instruction")
	}
}
