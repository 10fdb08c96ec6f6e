package ux

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows elapsed time on a single status line while a turn runs.
type Spinner struct {
	out io.Writer

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

// Start begins animating. It is a no-op when already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	start := time.Now()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-stop:
			// clear the status line
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			elapsed := time.Since(start).Seconds()
			fmt.Fprintf(s.out, "\r\033[K%s working... (%.1fs ctrl+c to interrupt)",
				spinnerFrames[frame%len(spinnerFrames)], elapsed)
			frame++
		}
	}
}

// Stop halts the animation and clears the status line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	<-s.done
	s.running = false
}
