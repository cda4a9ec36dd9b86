// Package telemetry coalesces usage events into batched statistics reports.
//
// Each event type has its own counter and trailing-edge debounce timer: every
// Increment re-arms the timer, and when it finally fires the counter is read,
// reset to zero and reported asynchronously. A failed report loses that batch.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/idler/logging"
)

// EventType names a counted event.
type EventType string

const (
	Idle        EventType = "idle"
	Achievement EventType = "achievement"
)

// DefaultQuiescence is the debounce window.
const DefaultQuiescence = 5 * time.Second

// Timer is the part of *time.Timer the aggregator uses.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is backed by the time package.
var RealClock Clock = realClock{}

// Reporter delivers one batch. *api.Client satisfies it.
type Reporter interface {
	Statistics(ctx context.Context, eventType string, count int) error
}

type discard struct{}

func (discard) Statistics(context.Context, string, int) error { return nil }

// Discard drops every report; used when telemetry is disabled.
var Discard Reporter = discard{}

type counter struct {
	count int
	timer Timer
	// gen invalidates a timer that fires after it was re-armed or stopped.
	gen uint64
}

// Aggregator is the process-wide counter service. Construct one at startup
// and share it between every caller so bursts coalesce across them.
type Aggregator struct {
	mu         sync.Mutex
	clock      Clock
	reporter   Reporter
	quiescence time.Duration
	counters   map[EventType]*counter
	// inflight counts dispatched reports; settled is signalled when it
	// drops to zero. Both are guarded by mu.
	inflight int
	settled  *sync.Cond
	logger   *logrus.Entry
}

// NewAggregator returns an aggregator. A nil clock uses RealClock, a nil
// reporter uses Discard and a non-positive quiescence uses the default.
func NewAggregator(clock Clock, reporter Reporter, quiescence time.Duration) *Aggregator {
	if clock == nil {
		clock = RealClock
	}
	if reporter == nil {
		reporter = Discard
	}
	if quiescence <= 0 {
		quiescence = DefaultQuiescence
	}
	a := &Aggregator{
		clock:      clock,
		reporter:   reporter,
		quiescence: quiescence,
		counters:   make(map[EventType]*counter),
		logger:     logging.NewLogger("telemetry"),
	}
	a.settled = sync.NewCond(&a.mu)
	return a
}

// Increment counts one event and re-arms that type's flush timer.
func (a *Aggregator) Increment(t EventType) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.counters[t]
	if !ok {
		c = &counter{}
		a.counters[t] = c
	}
	c.count++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = a.clock.AfterFunc(a.quiescence, func() { a.fire(t, gen) })
}

// Pending returns the not yet reported count for t.
func (a *Aggregator) Pending(t EventType) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.counters[t]; ok {
		return c.count
	}
	return 0
}

func (a *Aggregator) fire(t EventType, gen uint64) {
	a.mu.Lock()
	c := a.counters[t]
	if c == nil || c.gen != gen {
		a.mu.Unlock()
		return
	}
	a.dispatch(t, a.take(c))
	a.mu.Unlock()
}

// take resets c and returns its count. Caller holds mu.
func (a *Aggregator) take(c *counter) int {
	n := c.count
	c.count = 0
	c.timer = nil
	c.gen++
	return n
}

// dispatch registers one report and sends it in the background. Caller
// holds mu, so a report is always counted before Wait can observe it.
func (a *Aggregator) dispatch(t EventType, n int) {
	if n <= 0 {
		return
	}
	a.inflight++
	go func() {
		defer a.done()
		if err := a.reporter.Statistics(context.Background(), string(t), n); err != nil {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"type":  t,
				"count": n,
			}).Warn("Failed to report statistics; batch dropped")
			return
		}
		a.logger.WithFields(logrus.Fields{"type": t, "count": n}).Debug("Reported statistics")
	}()
}

func (a *Aggregator) done() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--
	if a.inflight == 0 {
		a.settled.Broadcast()
	}
}

// ReportLaunch reports a single launch of kind right away, outside the
// debounced counters.
func (a *Aggregator) ReportLaunch(kind string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dispatch(EventType(kind), 1)
}

// Flush fires every pending timer now and waits for all reports in flight.
// Short-lived processes call it before exiting.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	for t, c := range a.counters {
		if c.timer != nil {
			c.timer.Stop()
		}
		a.dispatch(t, a.take(c))
	}
	a.mu.Unlock()

	a.Wait()
}

// Wait blocks until every dispatched report has completed.
func (a *Aggregator) Wait() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.inflight > 0 {
		a.settled.Wait()
	}
}

// Stop cancels pending timers and discards their counts.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.counters {
		if c.timer != nil {
			c.timer.Stop()
		}
		a.take(c)
	}
}
