package domain

import (
	"fmt"
	"testing"
)

func seconds(v int) *int {
	return &v
}

func ids(in []Instructor) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		out = append(out, i.ID)
	}
	return out
}

func TestRank_PriorityOrder(t *testing.T) {
	instructors := []Instructor{
		{ID: "A", FirstName: "Ann", LastName: "Avery"},
		{ID: "B", FirstName: "Ben", LastName: "Brook"},
		{ID: "C", FirstName: "Cat", LastName: "Cole"},
		{ID: "D", FirstName: "Dan", LastName: "Dale"},
	}
	verdicts := map[string]Verdict{
		"A": VerdictAvailable,
		"B": VerdictAvailable,
		"C": VerdictUnavailable,
		"D": VerdictUnknown,
	}
	travel := map[string]*int{"A": seconds(500), "B": seconds(200)}

	got := ids(Rank(instructors, verdicts, travel))
	want := []string{"B", "A", "C", "D"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Rank = %v, want %v", got, want)
	}
	if instructors[0].ID != "A" {
		t.Fatalf("input mutated: %v", ids(instructors))
	}
}

func TestRank_MissingEntriesAreUnknown(t *testing.T) {
	instructors := []Instructor{
		{ID: "nil-travel", FirstName: "Zed", LastName: "Z"},
		{ID: "no-verdict", FirstName: "Amy", LastName: "A"},
		{ID: "known", FirstName: "Yan", LastName: "Y"},
		{ID: "unavailable", FirstName: "Bo", LastName: "B"},
	}
	verdicts := map[string]Verdict{
		"nil-travel":  VerdictAvailable,
		"known":       VerdictAvailable,
		"unavailable": VerdictUnavailable,
	}
	travel := map[string]*int{"nil-travel": nil, "known": seconds(900)}

	got := ids(Rank(instructors, verdicts, travel))
	want := []string{"known", "nil-travel", "unavailable", "no-verdict"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Rank = %v, want %v", got, want)
	}
}

func TestRank_NameTiebreakIsCaseSensitive(t *testing.T) {
	instructors := []Instructor{
		{ID: "lower", FirstName: "alice", LastName: "smith"},
		{ID: "upper", FirstName: "Bob", LastName: "Smith"},
		{ID: "same-first", FirstName: "Bob", LastName: "Adams"},
	}

	got := ids(Rank(instructors, nil, nil))
	want := []string{"same-first", "upper", "lower"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Rank = %v, want %v", got, want)
	}
}

func TestRank_ComparatorIsATotalOrder(t *testing.T) {
	verdictChoices := []Verdict{VerdictAvailable, VerdictUnavailable, VerdictUnknown, ""}
	travelChoices := []*int{nil, seconds(100), seconds(300)}
	names := [][2]string{{"Ann", "Lee"}, {"ann", "Lee"}, {"Ann", "Lea"}}

	var instructors []Instructor
	verdicts := map[string]Verdict{}
	travel := map[string]*int{}
	for vi, v := range verdictChoices {
		for ti, tr := range travelChoices {
			for ni, n := range names {
				id := fmt.Sprintf("%d-%d-%d", vi, ti, ni)
				instructors = append(instructors, Instructor{ID: id, FirstName: n[0], LastName: n[1]})
				if v != "" {
					verdicts[id] = v
				}
				if tr != nil {
					travel[id] = tr
				}
			}
		}
	}

	sign := func(c int) int {
		switch {
		case c < 0:
			return -1
		case c > 0:
			return 1
		}
		return 0
	}

	for _, a := range instructors {
		for _, b := range instructors {
			ab := sign(compareForRanking(a, b, verdicts, travel))
			ba := sign(compareForRanking(b, a, verdicts, travel))
			if ab != -ba {
				t.Fatalf("compare(%s,%s)=%d but compare(%s,%s)=%d", a.ID, b.ID, ab, b.ID, a.ID, ba)
			}
			for _, c := range instructors {
				bc := sign(compareForRanking(b, c, verdicts, travel))
				ac := sign(compareForRanking(a, c, verdicts, travel))
				if ab <= 0 && bc <= 0 && ac > 0 {
					t.Fatalf("not transitive: %s <= %s <= %s but %s > %s", a.ID, b.ID, c.ID, a.ID, c.ID)
				}
			}
		}
	}

	first := ids(Rank(instructors, verdicts, travel))
	second := ids(Rank(Rank(instructors, verdicts, travel), verdicts, travel))
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Fatalf("Rank is not idempotent")
	}
}
