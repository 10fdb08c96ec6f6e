package ux

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards concurrent writes from the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ io.Writer = (*syncBuffer)(nil)

func TestSpinnerStopsWriting(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)

	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	// Stop blocks until the spinner goroutine has exited
	got := out.String()
	if !strings.Contains(got, "working...") {
		t.Errorf("expected spinner frames in output, got %q", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("expected the status line to be cleared on stop, got %q", got)
	}

	// nothing may be written once stopped
	settled := out.String()
	time.Sleep(250 * time.Millisecond)
	if out.String() != settled {
		t.Error("spinner kept writing after Stop")
	}
}

func TestSpinnerRestart(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)

	s.Start()
	s.Stop()
	before := len(out.String())

	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if len(out.String()) <= before {
		t.Error("expected spinner to animate again after restart")
	}
}

func TestSpinnerStopIdempotent(t *testing.T) {
	s := NewSpinner(&syncBuffer{})
	s.Stop()
	s.Start()
	s.Stop()
	s.Stop()
}
