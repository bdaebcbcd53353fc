package domain

import (
	"cmp"
	"slices"
	"strings"
)

func verdictOrder(v Verdict) int {
	switch v {
	case VerdictAvailable:
		return 0
	case VerdictUnavailable:
		return 1
	default:
		return 2
	}
}

// Rank orders instructors for a booking picker: available before unavailable
// before unknown, then known travel time ascending before unknown travel
// time, then by "First Last". A missing verdict counts as unknown and a
// missing or nil travel entry as unknown. The input slice is left untouched.
func Rank(instructors []Instructor, verdicts map[string]Verdict, travelSeconds map[string]*int) []Instructor {
	out := slices.Clone(instructors)
	slices.SortStableFunc(out, func(a, b Instructor) int {
		return compareForRanking(a, b, verdicts, travelSeconds)
	})
	return out
}

func compareForRanking(a, b Instructor, verdicts map[string]Verdict, travelSeconds map[string]*int) int {
	if c := cmp.Compare(verdictOrder(verdicts[a.ID]), verdictOrder(verdicts[b.ID])); c != 0 {
		return c
	}

	ta, tb := travelSeconds[a.ID], travelSeconds[b.ID]
	switch {
	case ta != nil && tb == nil:
		return -1
	case ta == nil && tb != nil:
		return 1
	case ta != nil && tb != nil:
		if c := cmp.Compare(*ta, *tb); c != 0 {
			return c
		}
	}

	return strings.Compare(a.DisplayName(), b.DisplayName())
}
