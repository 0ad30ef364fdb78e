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

import "strings"

// placeholderValue marks a slot the extraction model could not fill
const placeholderValue = "unknown"

// fillMissingSlots populates slots the extraction step left unset, empty, or
// marked "unknown" using deterministic keyword rules against the raw user
// message. A slot that already holds a real value is never overwritten, which
// also makes the operation idempotent.
func fillMissingSlots(record NormalizedRequest, rawMessage string) NormalizedRequest {
	msg := strings.ToLower(rawMessage)

	if slotNeedsFill(record, SlotLeaveType) {
		// "sick" is checked before "casual"; first match wins
		switch {
		case strings.Contains(msg, "sick"):
			record.Slots[SlotLeaveType] = "sick"
		case strings.Contains(msg, "casual"):
			record.Slots[SlotLeaveType] = "casual"
		}
	}

	if slotNeedsFill(record, SlotRequestType) {
		switch {
		case strings.Contains(msg, "clock in"):
			record.Slots[SlotRequestType] = "Clock-In"
		case strings.Contains(msg, "clock out"):
			record.Slots[SlotRequestType] = "Clock-Out"
		}
	}

	return record
}

// slotNeedsFill reports whether a slot is absent, empty, or a placeholder.
func slotNeedsFill(record NormalizedRequest, name string) bool {
	value := record.Slots[name]
	return value == "" || value == placeholderValue
}
