// Package profiling times the stages of a command (inventory fetch, view
// derivation, endpoint fan-out) and wires pprof output to CLI flags.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type stage struct {
	name     string
	depth    int
	start    time.Time
	duration time.Duration
	done     bool
}

// Recorder collects stage timings. Stages opened while another is open are
// nested under it.
type Recorder struct {
	mu      sync.Mutex
	enabled bool
	start   time.Time
	open    int
	stages  []*stage
}

var std = &Recorder{}

// Enable turns on the process-wide recorder.
func Enable() {
	std.Enable()
}

// Stage opens a named stage on the process-wide recorder and returns the
// function that closes it. It is a no-op until Enable.
func Stage(name string) func() {
	return std.Stage(name)
}

// Report prints the process-wide timings to w.
func Report(w io.Writer) {
	std.Report(w)
}

// Reset disables the process-wide recorder and drops its stages.
func Reset() {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.enabled = false
	std.open = 0
	std.stages = nil
}

// Enable starts recording; the total runs from the first call.
func (r *Recorder) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return
	}
	r.enabled = true
	r.start = time.Now()
}

// Stage opens a stage and returns its closer.
func (r *Recorder) Stage(name string) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return func() {}
	}

	s := &stage{name: name, depth: r.open, start: time.Now()}
	r.stages = append(r.stages, s)
	r.open++

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if s.done {
			return
		}
		s.done = true
		s.duration = time.Since(s.start)
		r.open--
	}
}

// Report prints every stage in start order, indented by nesting, with its
// share of the total.
func (r *Recorder) Report(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	total := time.Since(r.start)
	fmt.Fprintln(w, "\n--- Timing ---")
	for _, s := range r.stages {
		d := s.duration
		if !s.done {
			d = time.Since(s.start)
		}
		share := 0.0
		if total > 0 {
			share = float64(d) / float64(total) * 100
		}
		fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n", strings.Repeat("  ", s.depth), s.name, d.Round(100*time.Microsecond), share)
	}
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
}
