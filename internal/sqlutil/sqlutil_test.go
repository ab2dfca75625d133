package sqlutil

import (
	"reflect"
	"testing"
)

func TestInClauseArgs(t *testing.T) {
	ph, args := InClauseArgs(nil)
	if ph != "NULL" || args != nil {
		t.Fatalf("empty: got %q %v", ph, args)
	}

	ph, args = InClauseArgs([]string{"a.md", "b.md"})
	if ph != "?, ?" {
		t.Fatalf("placeholders = %q", ph)
	}
	if !reflect.DeepEqual(args, []any{"a.md", "b.md"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestChunks(t *testing.T) {
	got := Chunks([]string{"a", "b", "c", "d", "e"}, 2)
	want := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Chunks = %v, want %v", got, want)
	}
	if got := Chunks(nil, 2); got != nil {
		t.Fatalf("Chunks(nil) = %v", got)
	}
}
