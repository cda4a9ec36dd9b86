package telemetry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/grovetools/idler/testutil"
)

// fakeClock fires timers only when Advance moves past their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Duration
	f        func()
	stopped  bool
	fired    bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.deadline <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type report struct {
	Type  string
	Count int
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []report
	err     error
}

func (r *recordingReporter) Statistics(ctx context.Context, eventType string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{eventType, count})
	return r.err
}

func (r *recordingReporter) Reports() []report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]report(nil), r.reports...)
}

func newTestAggregator(t *testing.T) (*Aggregator, *fakeClock, *recordingReporter) {
	t.Helper()
	testutil.TempHome(t)
	clock := &fakeClock{}
	rep := &recordingReporter{}
	return NewAggregator(clock, rep, 5*time.Second), clock, rep
}

func TestBurstCoalescesIntoOneFlush(t *testing.T) {
	a, clock, rep := newTestAggregator(t)

	for i := 0; i < 7; i++ {
		a.Increment(Idle)
		clock.Advance(time.Second)
	}
	assert.Empty(t, rep.Reports(), "no flush while the burst continues")
	assert.Equal(t, 7, a.Pending(Idle))

	clock.Advance(5 * time.Second)
	a.Wait()

	assert.Equal(t, []report{{"idle", 7}}, rep.Reports())
	assert.Zero(t, a.Pending(Idle))
}

func TestSeparateWindowsFlushSeparately(t *testing.T) {
	a, clock, rep := newTestAggregator(t)

	a.Increment(Idle)
	a.Increment(Idle)
	clock.Advance(6 * time.Second)
	a.Wait()

	a.Increment(Idle)
	clock.Advance(6 * time.Second)
	a.Wait()

	assert.Equal(t, []report{{"idle", 2}, {"idle", 1}}, rep.Reports())
}

func TestEventTypesAreIndependent(t *testing.T) {
	a, clock, rep := newTestAggregator(t)

	a.Increment(Idle)
	clock.Advance(3 * time.Second)
	a.Increment(Achievement)
	clock.Advance(3 * time.Second)
	a.Wait()

	assert.Equal(t, []report{{"idle", 1}}, rep.Reports(), "achievement timer was armed later")

	clock.Advance(3 * time.Second)
	a.Wait()
	assert.Equal(t, []report{{"idle", 1}, {"achievement", 1}}, rep.Reports())
}

func TestFailedReportLosesBatch(t *testing.T) {
	a, clock, rep := newTestAggregator(t)
	rep.err = fmt.Errorf("network down")

	a.Increment(Achievement)
	a.Increment(Achievement)
	clock.Advance(5 * time.Second)
	a.Wait()

	assert.Zero(t, a.Pending(Achievement), "counter resets before the send completes")

	rep.err = nil
	a.Increment(Achievement)
	clock.Advance(5 * time.Second)
	a.Wait()

	assert.Equal(t, []report{{"achievement", 2}, {"achievement", 1}}, rep.Reports())
}

func TestFlushSendsPendingNow(t *testing.T) {
	a, clock, rep := newTestAggregator(t)

	a.Increment(Idle)
	a.Increment(Idle)
	a.Increment(Achievement)
	a.Flush()

	assert.ElementsMatch(t, []report{{"idle", 2}, {"achievement", 1}}, rep.Reports())

	// The cancelled timers must not report again
	clock.Advance(time.Minute)
	a.Wait()
	assert.Len(t, rep.Reports(), 2)
}

func TestStopDiscards(t *testing.T) {
	a, clock, rep := newTestAggregator(t)

	a.Increment(Idle)
	a.Stop()
	clock.Advance(time.Minute)
	a.Wait()

	assert.Empty(t, rep.Reports())
}

func TestReportLaunch(t *testing.T) {
	a, _, rep := newTestAggregator(t)
	a.ReportLaunch("launched")
	a.Wait()
	assert.Equal(t, []report{{"launched", 1}}, rep.Reports())
}

func TestRealClockFires(t *testing.T) {
	testutil.TempHome(t)
	rep := &recordingReporter{}
	a := NewAggregator(nil, rep, 20*time.Millisecond)

	a.Increment(Idle)
	a.Increment(Idle)

	require.Eventually(t, func() bool { return len(rep.Reports()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []report{{"idle", 2}}, rep.Reports())
}

func TestFlushWhileTimerFires(t *testing.T) {
	testutil.TempHome(t)
	rep := &recordingReporter{}
	a := NewAggregator(nil, rep, time.Millisecond)

	total := func() int {
		n := 0
		for _, r := range rep.Reports() {
			n += r.Count
		}
		return n
	}

	for i := 1; i <= 200; i++ {
		a.Increment(Idle)
		// Land Flush on either side of the quiescence deadline.
		time.Sleep(time.Duration(i%3) * 500 * time.Microsecond)
		a.Flush()
		require.Equal(t, i, total(), "iteration %d", i)
	}
}

func TestWaitCoversConcurrentLaunchReports(t *testing.T) {
	testutil.TempHome(t)
	rep := &recordingReporter{}
	a := NewAggregator(nil, rep, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.ReportLaunch("launched")
		}()
		go func() {
			defer wg.Done()
			a.Wait()
		}()
	}
	wg.Wait()
	a.Wait()

	assert.Len(t, rep.Reports(), 50)
}

func TestCoalescingProperty(t *testing.T) {
	testutil.TempHome(t)
	rapid.Check(t, func(rt *rapid.T) {
		clock := &fakeClock{}
		rep := &recordingReporter{}
		a := NewAggregator(clock, rep, 5*time.Second)

		n := rapid.IntRange(1, 50).Draw(rt, "n")
		for i := 0; i < n; i++ {
			a.Increment(Idle)
			gap := time.Duration(rapid.IntRange(0, 4999).Draw(rt, "gapMs")) * time.Millisecond
			clock.Advance(gap)
		}
		clock.Advance(5 * time.Second)
		a.Wait()

		got := rep.Reports()
		if len(got) != 1 || got[0].Count != n {
			rt.Fatalf("reports = %v, want one flush with count %d", got, n)
		}
	})
}
