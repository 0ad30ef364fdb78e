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

// Package dates resolves natural-language date expressions ("tomorrow",
// "next monday", embedded ISO dates) into canonical calendar dates relative
// to a caller-supplied reference date.
package dates

import (
	"regexp"
	"strings"
	"time"
)

// ISOFormat is the canonical layout for resolved dates
const ISOFormat = "2006-01-02"

// isoDatePattern matches a YYYY-MM-DD substring anywhere in the text
var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// weekdayIndex maps lowercase weekday names to time.Weekday values
var weekdayIndex = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// fixedOffsets maps exact relative-day tokens to day offsets from the reference date
var fixedOffsets = map[string]int{
	"today":              0,
	"tomorrow":           1,
	"day after tomorrow": 2,
}

// Resolve converts a natural-language date expression into an ISO date string
// relative to the reference date. It recognizes fixed tokens ("today",
// "tomorrow", "day after tomorrow"), weekday names with an optional "next"
// prefix, and falls back to searching the original text for a YYYY-MM-DD
// substring. The second return value is false when nothing matched; callers
// must keep the raw value in that case.
//
// Resolve is pure: given the same text and reference date it always returns
// the same result.
func Resolve(text string, referenceDate time.Time) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", false
	}

	if offset, ok := fixedOffsets[normalized]; ok {
		return referenceDate.AddDate(0, 0, offset).Format(ISOFormat), true
	}

	if resolved, ok := resolveWeekday(normalized, referenceDate); ok {
		return resolved, true
	}

	// Last resort: the original (non-normalized) text may embed an ISO date
	if match := isoDatePattern.FindString(text); match != "" {
		return match, true
	}

	return "", false
}

// resolveWeekday handles expressions like "friday" or "next friday". The
// target is the next occurrence of that weekday on or after the reference
// date; a "next" prefix on the reference weekday itself forces the following
// week's occurrence instead of today.
func resolveWeekday(normalized string, referenceDate time.Time) (string, bool) {
	forceNextWeek := false
	if rest, found := strings.CutPrefix(normalized, "next"); found {
		trimmed := strings.TrimSpace(rest)
		if trimmed == rest {
			// "next" not followed by whitespace, e.g. "nextmonday"
			return "", false
		}
		normalized = trimmed
		forceNextWeek = true
	}

	target, ok := weekdayIndex[normalized]
	if !ok {
		// Expressions like "monday morning" still name a weekday up front
		target, ok = leadingWeekday(normalized)
		if !ok {
			return "", false
		}
	}

	daysAhead := (int(target) - int(referenceDate.Weekday()) + 7) % 7
	if daysAhead == 0 && forceNextWeek {
		daysAhead = 7
	}

	return referenceDate.AddDate(0, 0, daysAhead).Format(ISOFormat), true
}

// leadingWeekday reports the weekday named at the start of the text, if any.
func leadingWeekday(text string) (time.Weekday, bool) {
	for name, day := range weekdayIndex {
		if strings.HasPrefix(text, name) {
			return day, true
		}
	}
	return time.Sunday, false
}
