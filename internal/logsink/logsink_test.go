package logsink

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCapEvictsOldest(t *testing.T) {
	s := New(100)
	for i := 0; i < 105; i++ {
		s.Append(Entry{Message: fmt.Sprintf("msg %d", i)})
	}
	entries := s.Entries()
	if len(entries) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(entries))
	}
	for i, e := range entries {
		want := fmt.Sprintf("msg %d", i+5)
		if e.Message != want {
			t.Fatalf("entry %d: expected %q, got %q", i, want, e.Message)
		}
	}
}

func TestBelowCapKeepsAll(t *testing.T) {
	s := New(0)
	if s.Limit() != DefaultLimit {
		t.Fatalf("expected default limit, got %d", s.Limit())
	}
	s.Append(Entry{Message: "a"})
	s.Append(Entry{Message: "b", IsError: true})
	entries := s.Entries()
	if len(entries) != 2 || entries[0].Message != "a" || !entries[1].IsError {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Time.IsZero() {
		t.Fatal("expected timestamp to be filled in")
	}
}

func TestClearAndReuse(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.Append(Entry{Message: fmt.Sprint(i)})
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty sink, got %d", s.Len())
	}
	s.Append(Entry{Message: "x"})
	if got := s.Entries(); len(got) != 1 || got[0].Message != "x" {
		t.Fatalf("unexpected entries after clear: %+v", got)
	}
}

func TestText(t *testing.T) {
	s := New(10)
	at := time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)
	s.Append(Entry{Time: at, Message: "run: devices -l"})
	if got := s.Text(); !strings.Contains(got, "[13:04:05] run: devices -l\n") {
		t.Fatalf("unexpected text %q", got)
	}
}
