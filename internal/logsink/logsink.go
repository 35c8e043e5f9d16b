// Package logsink keeps the in-app operation log: a fixed-size ring of
// entries where the oldest entry is evicted first.
package logsink

import (
	"fmt"
	"strings"
	"time"
)

const DefaultLimit = 100

type Entry struct {
	Time    time.Time
	Message string
	IsError bool
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}

// Sink is not safe for concurrent use.
type Sink struct {
	buf   []Entry
	start int
	n     int
}

func New(limit int) *Sink {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Sink{buf: make([]Entry, limit)}
}

func (s *Sink) Append(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if s.n < len(s.buf) {
		s.buf[(s.start+s.n)%len(s.buf)] = e
		s.n++
		return
	}
	s.buf[s.start] = e
	s.start = (s.start + 1) % len(s.buf)
}

// Entries returns the retained entries oldest first.
func (s *Sink) Entries() []Entry {
	out := make([]Entry, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

func (s *Sink) Len() int {
	return s.n
}

func (s *Sink) Limit() int {
	return len(s.buf)
}

func (s *Sink) Clear() {
	s.start = 0
	s.n = 0
}

// Text renders every entry on its own line, for copying out of the tool.
func (s *Sink) Text() string {
	var b strings.Builder
	for _, e := range s.Entries() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
