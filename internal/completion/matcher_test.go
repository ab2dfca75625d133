package completion

import (
	"math"
	"testing"
)

func candidates(names ...string) []LinkCompletion {
	out := make([]LinkCompletion, len(names))
	for i, n := range names {
		out[i] = LinkCompletion{MatchString: n, RefName: n}
	}
	return out
}

func matchStrings(cs []LinkCompletion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.MatchString
	}
	return out
}

func TestRankEmptyFilterKeepsOrder(t *testing.T) {
	in := candidates("c", "a", "b")
	got := matchStrings(Rank("", in, 0))
	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("Rank(\"\") = %v", got)
	}
}

func TestRankDropsNonMatches(t *testing.T) {
	got := matchStrings(Rank("xyz", candidates("alpha", "beta"), math.MinInt))
	if len(got) != 0 {
		t.Fatalf("Rank = %v, want none", got)
	}
}

func TestRankPrefersTighterMatch(t *testing.T) {
	got := matchStrings(Rank("alp", candidates("alphabet soup", "beta", "alpha"), math.MinInt))
	if len(got) != 2 || got[0] != "alpha" || got[1] != "alphabet soup" {
		t.Fatalf("Rank = %v", got)
	}
}

func TestRankTiesKeepDiscoveryOrder(t *testing.T) {
	in := []LinkCompletion{
		{MatchString: "note", RefName: "first"},
		{MatchString: "note", RefName: "second"},
		{MatchString: "note", RefName: "third"},
	}
	got := Rank("no", in, math.MinInt)
	if len(got) != 3 {
		t.Fatalf("got %d results", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].RefName != want {
			t.Errorf("result %d = %q, want %q", i, got[i].RefName, want)
		}
	}
}

func TestRankMinScore(t *testing.T) {
	got := Rank("a", candidates("a", "abc"), math.MaxInt)
	if len(got) != 0 {
		t.Fatalf("Rank with huge min score = %v", matchStrings(got))
	}
}
