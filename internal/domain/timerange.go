package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// TimeRange is a daily time range in minutes since midnight. End < Start
// means the range wraps past midnight into the next day.
type TimeRange struct {
	Start int
	End   int
}

func (r TimeRange) Wraps() bool {
	return r.End < r.Start
}

func (r TimeRange) String() string {
	return FormatTimeRange(r)
}

// ParseError reports malformed time-range text.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time range %q: %s", e.Input, e.Reason)
}

// ParseTimeRanges accepts "HH:MM-HH:MM" or "[HH:MM-HH:MM, HH:MM-HH:MM, ...]".
func ParseTimeRanges(text string) ([]TimeRange, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil, &ParseError{Input: text, Reason: "no time ranges"}
	}

	pieces := strings.Split(s, ",")
	out := make([]TimeRange, 0, len(pieces))
	for _, piece := range pieces {
		r, err := parseOneRange(strings.TrimSpace(piece))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseOneRange(piece string) (TimeRange, error) {
	if piece == "" {
		return TimeRange{}, &ParseError{Input: piece, Reason: "empty range"}
	}
	sides := strings.Split(piece, "-")
	if len(sides) != 2 {
		return TimeRange{}, &ParseError{Input: piece, Reason: "expected HH:MM-HH:MM"}
	}
	start, err := parseClock(strings.TrimSpace(sides[0]))
	if err != nil {
		return TimeRange{}, err
	}
	end, err := parseClock(strings.TrimSpace(sides[1]))
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: start, End: end}, nil
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, &ParseError{Input: s, Reason: "expected HH:MM"}
	}
	hours, ok := parseDigits(parts[0])
	if !ok {
		return 0, &ParseError{Input: s, Reason: "hour is not a number"}
	}
	minutes, ok := parseDigits(parts[1])
	if !ok {
		return 0, &ParseError{Input: s, Reason: "minute is not a number"}
	}
	if hours > 23 {
		return 0, &ParseError{Input: s, Reason: "hour out of range"}
	}
	if minutes > 59 {
		return 0, &ParseError{Input: s, Reason: "minute out of range"}
	}
	return hours*60 + minutes, nil
}

// parseDigits rejects signs and spaces that strconv.Atoi would otherwise let through.
func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 2 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func FormatTimeRange(r TimeRange) string {
	return formatClock(r.Start) + "-" + formatClock(r.End)
}

// FormatTimeRanges renders the persisted form: a bare range for one entry,
// the bracketed list otherwise.
func FormatTimeRanges(ranges []TimeRange) string {
	if len(ranges) == 1 {
		return FormatTimeRange(ranges[0])
	}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, FormatTimeRange(r))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
