package duration

import (
	"errors"
	"math"
	"testing"

	"github.com/conorfennell/knolcard/internal/domain"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected int64
	}{
		{name: "zero seconds", input: "0s", expected: 0},
		{name: "seconds", input: "45s", expected: 45 * Second},
		{name: "minutes", input: "15m", expected: 15 * Minute},
		{name: "hours", input: "2h", expected: 2 * Hour},
		{name: "one day", input: "1d", expected: 86_400_000},
		{name: "one month is thirty days", input: "1M", expected: 30 * 86_400_000},
		{name: "three months", input: "3M", expected: 90 * 86_400_000},
		{name: "upper bound", input: "365d", expected: 365 * Day},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned an unexpected error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("Parse(%q) = %d, want %d", tc.input, got, tc.expected)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		code  string
	}{
		{name: "amount too large", input: "366d", code: domain.CodeDelayTooLarge},
		{name: "huge amount", input: "99999999999999999999s", code: domain.CodeDelayTooLarge},
		{name: "empty", input: "", code: domain.CodeInvalidDurationFormat},
		{name: "no unit", input: "10", code: domain.CodeInvalidDurationFormat},
		{name: "unknown unit", input: "3w", code: domain.CodeInvalidDurationFormat},
		{name: "space before unit", input: "3 d", code: domain.CodeInvalidDurationFormat},
		{name: "negative", input: "-1d", code: domain.CodeInvalidDurationFormat},
		{name: "compound", input: "1h 1m", code: domain.CodeInvalidDurationFormat},
		{name: "surrounding whitespace", input: " 1d ", code: domain.CodeInvalidDurationFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected an error", tc.input)
			}
			var e *domain.Error
			if !errors.As(err, &e) {
				t.Fatalf("Parse(%q) returned %T, want *domain.Error", tc.input, err)
			}
			if e.Kind != domain.KindValidation || e.Code != tc.code {
				t.Errorf("Parse(%q) error = %s/%v, want %s/validation", tc.input, e.Code, e.Kind, tc.code)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		name     string
		input    int64
		expected string
	}{
		{name: "zero", input: 0, expected: "0s"},
		{name: "below one second", input: 999, expected: "0s"},
		{name: "seconds only", input: 42 * Second, expected: "42s"},
		{name: "minutes and seconds", input: 3*Minute + 5*Second, expected: "3m 5s"},
		{name: "hour and minute", input: Hour + Minute, expected: "1h 1m"},
		{name: "hour drops seconds", input: Hour + Minute + 59*Second, expected: "1h 1m"},
		{name: "exact day", input: Day, expected: "1d 0h"},
		{name: "month and days", input: Month + 2*Day + 3*Hour, expected: "1M 2d"},
		{name: "many months", input: 13 * Month, expected: "13M 0d"},
		{name: "negative", input: -(Hour + 30*Minute), expected: "- 1h 30m"},
		{name: "negative below one second", input: -500, expected: "- 0s"},
		{name: "most negative value", input: math.MinInt64, expected: "- 3558399705M 17d"},
		{name: "largest value", input: math.MaxInt64, expected: "3558399705M 17d"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.input); got != tc.expected {
				t.Errorf("Format(%d) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFormatRoundTripsSingleUnits(t *testing.T) {
	for _, text := range []string{"1s", "30m", "5h"} {
		millis, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		formatted := Format(millis)
		if formatted[:len(text)] != text {
			t.Errorf("Format(Parse(%q)) = %q, want prefix %q", text, formatted, text)
		}
	}
}
