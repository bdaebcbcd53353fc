package domain

import (
	"errors"
	"testing"
)

func TestParseTimeRanges_AcceptsPersistedForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []TimeRange
	}{
		{name: "single", text: "09:00-17:00", want: []TimeRange{{Start: 540, End: 1020}}},
		{name: "bracketed single", text: "[09:00-17:00]", want: []TimeRange{{Start: 540, End: 1020}}},
		{name: "bracketed list", text: "[09:00-12:00, 13:00-17:00]", want: []TimeRange{{Start: 540, End: 720}, {Start: 780, End: 1020}}},
		{name: "surrounding whitespace", text: "  [ 09:00 - 12:00 ,13:30-14:45 ]  ", want: []TimeRange{{Start: 540, End: 720}, {Start: 810, End: 885}}},
		{name: "single digit hour", text: "9:05-10:00", want: []TimeRange{{Start: 545, End: 600}}},
		{name: "wraps midnight", text: "22:00-02:00", want: []TimeRange{{Start: 1320, End: 120}}},
		{name: "zero length", text: "10:00-10:00", want: []TimeRange{{Start: 600, End: 600}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeRanges(tt.text)
			if err != nil {
				t.Fatalf("ParseTimeRanges error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len(ranges) = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ranges[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseTimeRanges_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantInput string
	}{
		{name: "empty", text: "", wantInput: ""},
		{name: "empty brackets", text: "[]", wantInput: "[]"},
		{name: "missing dash", text: "09:00 17:00", wantInput: "09:00 17:00"},
		{name: "missing colon", text: "0900-1700", wantInput: "0900"},
		{name: "non numeric hour", text: "ab:00-17:00", wantInput: "ab:00"},
		{name: "non numeric minute", text: "09:xx-17:00", wantInput: "09:xx"},
		{name: "hour out of range", text: "09:00-24:00", wantInput: "24:00"},
		{name: "minute out of range", text: "09:60-17:00", wantInput: "09:60"},
		{name: "signed component", text: "+9:00-17:00", wantInput: "+9:00"},
		{name: "empty piece", text: "[09:00-10:00, ]", wantInput: ""},
		{name: "too many dashes", text: "09:00-10:00-11:00", wantInput: "09:00-10:00-11:00"},
		{name: "bad second range", text: "[09:00-10:00, 11:00-1z:00]", wantInput: "1z:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimeRanges(tt.text)
			if err == nil {
				t.Fatalf("expected error")
			}
			var pErr *ParseError
			if !errors.As(err, &pErr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if pErr.Input != tt.wantInput {
				t.Fatalf("offending input = %q, want %q", pErr.Input, tt.wantInput)
			}
		})
	}
}

func TestFormatThenParse_RoundTrips(t *testing.T) {
	for start := 0; start < MinutesPerDay; start++ {
		for end := start % 7; end < MinutesPerDay; end += 7 {
			r := TimeRange{Start: start, End: end}
			text := FormatTimeRange(r)
			got, err := ParseTimeRanges(text)
			if err != nil {
				t.Fatalf("ParseTimeRanges(%q) error: %v", text, err)
			}
			if len(got) != 1 || got[0] != r {
				t.Fatalf("ParseTimeRanges(%q) = %+v, want [%+v]", text, got, r)
			}
		}
	}
}

func TestFormatTimeRanges(t *testing.T) {
	one := FormatTimeRanges([]TimeRange{{Start: 540, End: 1020}})
	if one != "09:00-17:00" {
		t.Fatalf("FormatTimeRanges = %q, want %q", one, "09:00-17:00")
	}

	many := FormatTimeRanges([]TimeRange{{Start: 540, End: 720}, {Start: 1320, End: 120}})
	if many != "[09:00-12:00, 22:00-02:00]" {
		t.Fatalf("FormatTimeRanges = %q, want %q", many, "[09:00-12:00, 22:00-02:00]")
	}

	back, err := ParseTimeRanges(many)
	if err != nil {
		t.Fatalf("ParseTimeRanges error: %v", err)
	}
	if len(back) != 2 || !back[1].Wraps() {
		t.Fatalf("ParseTimeRanges(%q) = %+v", many, back)
	}
}
