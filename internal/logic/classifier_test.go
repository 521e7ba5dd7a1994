package logic

import (
	"testing"
	"time"
)

var base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

// confirmedAt converts the times at which transitions should be confirmed
// into raw edge times, given 1ms polling and the default 50ms debounce.
func confirmedAt(ms ...int) []int {
	edges := make([]int, len(ms))
	for i, m := range ms {
		edges[i] = m - 51
	}
	return edges
}

// polled is an event tagged with the poll offset that produced it.
type polled struct {
	ms    int
	event Event
}

// runEdges polls c every millisecond in [from, to). The raw line starts
// released and toggles at every offset listed in edges.
func runEdges(c *Classifier, edges []int, from, to int) []polled {
	var out []polled
	sample := Released
	next := 0
	for ms := from; ms < to; ms++ {
		for next < len(edges) && edges[next] <= ms {
			sample = !sample
			next++
		}
		if ev := c.Poll(sample, at(ms)); !ev.IsNone() {
			out = append(out, polled{ms: ms, event: ev})
		}
	}
	return out
}

func TestNewClassifierDefaults(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	cfg := c.Config()
	if cfg.Debounce != 50*time.Millisecond {
		t.Errorf("expected debounce 50ms, got %v", cfg.Debounce)
	}
	if cfg.DoublePressGap != 300*time.Millisecond {
		t.Errorf("expected gap 300ms, got %v", cfg.DoublePressGap)
	}
	if cfg.LongPress != time.Second {
		t.Errorf("expected long press 1s, got %v", cfg.LongPress)
	}
	if cfg.ReportSingleClicks {
		t.Error("single clicks should be silent by default")
	}
	if c.Confirmed() != Released {
		t.Errorf("expected initial sample RELEASED, got %s", c.Confirmed())
	}
	if c.ClickCount() != 0 {
		t.Errorf("expected no pending clicks, got %d", c.ClickCount())
	}
}

func TestNewClassifierCustomWindows(t *testing.T) {
	c := NewClassifier(ClassifierConfig{
		Debounce:       20 * time.Millisecond,
		DoublePressGap: 500 * time.Millisecond,
		LongPress:      2 * time.Second,
	})
	cfg := c.Config()
	if cfg.Debounce != 20*time.Millisecond || cfg.DoublePressGap != 500*time.Millisecond || cfg.LongPress != 2*time.Second {
		t.Errorf("custom windows not kept: %+v", cfg)
	}
}

func TestNoiseNeverConfirmed(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// Chatter every 10ms for half a second.
	for ms := 0; ms < 500; ms++ {
		sample := Sample((ms/10)%2 == 1)
		if ev := c.Poll(sample, at(ms)); !ev.IsNone() {
			t.Fatalf("t=%d: unexpected event %s", ms, ev.Type)
		}
		if c.Confirmed() != Released {
			t.Fatalf("t=%d: noise changed confirmed sample", ms)
		}
	}
}

func TestHeldExactlyDebounceIsNotConfirmed(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	c.Poll(Pressed, at(0))
	c.Poll(Pressed, at(50))
	if c.Confirmed() != Released {
		t.Error("should not confirm at exactly the debounce window")
	}
	c.Poll(Pressed, at(51))
	if c.Confirmed() != Pressed {
		t.Error("should confirm once the window is exceeded")
	}
	if c.ClickCount() != 1 {
		t.Errorf("expected 1 click after press edge, got %d", c.ClickCount())
	}
}

func TestBouncingPressCountsOnce(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// Contact bounce at 0-20ms, then held until 200ms.
	edges := []int{0, 5, 10, 15, 20, 200}
	events := runEdges(c, edges, 0, 100)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if c.Confirmed() != Pressed {
		t.Fatal("expected press to be confirmed")
	}
	if c.ClickCount() != 1 {
		t.Errorf("bounces should coalesce into 1 click, got %d", c.ClickCount())
	}
}

func TestSingleClickIsSilent(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	events := runEdges(c, confirmedAt(0, 80), -100, 1000)
	if len(events) != 0 {
		t.Fatalf("expected no events for a single click, got %d (%s)", len(events), events[0].event.Type)
	}
	if c.ClickCount() != 0 {
		t.Errorf("expected burst to be resolved, got %d pending clicks", c.ClickCount())
	}
	if got := c.Counts().Discarded; got != 1 {
		t.Errorf("expected 1 discarded burst, got %d", got)
	}
}

func TestDoubleClickScenario(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// Confirmed press 0, release 80, press 150, release 200.
	events := runEdges(c, confirmedAt(0, 80, 150, 200), -100, 451)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event by t=450, got %d", len(events))
	}

	e := events[0]
	if e.event.Type != EventDoubleClick {
		t.Errorf("expected DOUBLE_CLICK, got %s", e.event.Type)
	}
	if e.event.Clicks != 2 {
		t.Errorf("expected clicks=2, got %d", e.event.Clicks)
	}
	if e.ms != 301 {
		t.Errorf("expected burst to resolve at t=301, got t=%d", e.ms)
	}
	if !e.event.Timestamp.Equal(at(301)) {
		t.Errorf("unexpected timestamp: %v", e.event.Timestamp)
	}
	if c.ClickCount() != 0 {
		t.Errorf("expected click count reset, got %d", c.ClickCount())
	}
	if c.Counts().DoubleClicks != 1 {
		t.Errorf("expected DoubleClicks=1, got %d", c.Counts().DoubleClicks)
	}
}

func TestDoubleClickNotRepeated(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	events := runEdges(c, confirmedAt(0, 80, 150, 200), -100, 3000)
	if len(events) != 1 {
		t.Fatalf("expected one DOUBLE_CLICK over a long idle tail, got %d", len(events))
	}
}

func TestTwoClicksOutsideGapAreTwoSingles(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// Second press arrives after the first burst resolved.
	events := runEdges(c, confirmedAt(0, 80, 400, 480), -100, 1000)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if got := c.Counts().Discarded; got != 2 {
		t.Errorf("expected 2 discarded single bursts, got %d", got)
	}
}

func TestTripleClickResolvesToNothing(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	events := runEdges(c, confirmedAt(0, 60, 120, 180, 240, 300), -100, 1000)
	if len(events) != 0 {
		t.Fatalf("expected no event for 3 clicks, got %s", events[0].event.Type)
	}
	if c.Counts().DoubleClicks != 0 {
		t.Error("3 clicks must not count as a double click")
	}
	if c.Counts().Discarded != 1 {
		t.Errorf("expected 1 discarded burst, got %d", c.Counts().Discarded)
	}
}

func TestTripleClickCountsEveryPress(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	runEdges(c, confirmedAt(0, 60, 120, 180, 240, 300), -100, 300)
	if c.ClickCount() != 3 {
		t.Errorf("expected 3 pending clicks, got %d", c.ClickCount())
	}
}

func TestLongPressScenario(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	edges := confirmedAt(0, 1200)

	runEdges(c, edges, -100, 100)
	if c.ClickCount() != 1 {
		t.Fatalf("press edge should count a click, got %d", c.ClickCount())
	}

	events := runEdges(c, edges, 100, 2000)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	e := events[0]
	if e.event.Type != EventLongPress {
		t.Errorf("expected LONG_PRESS, got %s", e.event.Type)
	}
	if e.ms != 1200 {
		t.Errorf("expected LONG_PRESS at t=1200, got t=%d", e.ms)
	}
	if e.event.Hold != 1200*time.Millisecond {
		t.Errorf("expected hold 1200ms, got %v", e.event.Hold)
	}
	if c.ClickCount() != 0 {
		t.Errorf("expected click count 0 after long press, got %d", c.ClickCount())
	}
	if c.Counts().LongPresses != 1 {
		t.Errorf("expected LongPresses=1, got %d", c.Counts().LongPresses)
	}
}

func TestLongPressThresholdBoundary(t *testing.T) {
	tests := []struct {
		name    string
		release int
		want    bool
	}{
		{"just below", 999, false},
		{"exactly at threshold", 1000, true},
		{"above", 1001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(ClassifierConfig{})
			events := runEdges(c, confirmedAt(0, tt.release), -100, 2000)

			got := false
			for _, e := range events {
				if e.event.Type == EventLongPress {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("release at %dms: long press=%v, want %v", tt.release, got, tt.want)
			}
		})
	}
}

func TestLongPressCancelsPendingBurst(t *testing.T) {
	// A gap wider than the long press lets the hold land inside the burst.
	c := NewClassifier(ClassifierConfig{DoublePressGap: 2 * time.Second})

	// Click, then a second press held for 1050ms.
	events := runEdges(c, confirmedAt(0, 80, 150, 1200), -100, 4000)
	if len(events) != 1 {
		t.Fatalf("expected only LONG_PRESS, got %d events", len(events))
	}
	if events[0].event.Type != EventLongPress {
		t.Errorf("expected LONG_PRESS, got %s", events[0].event.Type)
	}
	if c.Counts().DoubleClicks != 0 {
		t.Error("cancelled burst must not resolve to a double click")
	}
}

func TestClickAfterLongPressStartsNewBurst(t *testing.T) {
	c := NewClassifier(ClassifierConfig{DoublePressGap: 2 * time.Second})

	// Long press inside a burst, then a fresh double click.
	edges := confirmedAt(0, 80, 150, 1200, 1300, 1380, 1450, 1520)
	events := runEdges(c, edges, -100, 5000)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].event.Type != EventLongPress {
		t.Errorf("event 0: expected LONG_PRESS, got %s", events[0].event.Type)
	}
	if events[1].event.Type != EventDoubleClick {
		t.Errorf("event 1: expected DOUBLE_CLICK, got %s", events[1].event.Type)
	}
	if events[1].ms != 1300+2001 {
		t.Errorf("expected new burst to resolve at t=%d, got t=%d", 1300+2001, events[1].ms)
	}
}

func TestReportSingleClicks(t *testing.T) {
	c := NewClassifier(ClassifierConfig{ReportSingleClicks: true})

	events := runEdges(c, confirmedAt(0, 80), -100, 1000)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].event.Type != EventShortClick {
		t.Errorf("expected SHORT_CLICK, got %s", events[0].event.Type)
	}
	if events[0].event.Clicks != 1 {
		t.Errorf("expected clicks=1, got %d", events[0].event.Clicks)
	}
	if c.Counts().ShortClicks != 1 {
		t.Errorf("expected ShortClicks=1, got %d", c.Counts().ShortClicks)
	}
}

func TestReportSingleClicksSkipsHeldPress(t *testing.T) {
	c := NewClassifier(ClassifierConfig{ReportSingleClicks: true})

	events := runEdges(c, confirmedAt(0, 1200), -100, 2000)
	if len(events) != 1 {
		t.Fatalf("expected only LONG_PRESS, got %d events", len(events))
	}
	if events[0].event.Type != EventLongPress {
		t.Errorf("expected LONG_PRESS, got %s", events[0].event.Type)
	}
}

func TestButtonHeldAtStartup(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// Line reads pressed from the very first poll.
	for ms := 0; ms <= 50; ms++ {
		c.Poll(Pressed, at(ms))
	}
	if c.Confirmed() != Released {
		t.Fatal("should not confirm before the debounce window elapses")
	}
	c.Poll(Pressed, at(51))
	if c.Confirmed() != Pressed {
		t.Fatal("expected press to be confirmed")
	}
}

func TestCoarsePollingStillClassifies(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// 20ms polling: press 0-100, press 200-300.
	samples := map[int]Sample{}
	for ms := 0; ms < 100; ms += 20 {
		samples[ms] = Pressed
	}
	for ms := 200; ms < 300; ms += 20 {
		samples[ms] = Pressed
	}

	var got []EventType
	for ms := 0; ms < 1000; ms += 20 {
		if ev := c.Poll(samples[ms], at(ms)); !ev.IsNone() {
			got = append(got, ev.Type)
		}
	}
	if len(got) != 1 || got[0] != EventDoubleClick {
		t.Errorf("expected [DOUBLE_CLICK], got %v", got)
	}
}

func TestSampleString(t *testing.T) {
	if Pressed.String() != "PRESSED" {
		t.Errorf("unexpected: %s", Pressed.String())
	}
	if Released.String() != "RELEASED" {
		t.Errorf("unexpected: %s", Released.String())
	}
}

func TestStateOf(t *testing.T) {
	if StateOf(true) != StateOn {
		t.Error("expected ON")
	}
	if StateOf(false) != StateOff {
		t.Error("expected OFF")
	}
}

func TestLongPressIsNotCountedAsDiscarded(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// The burst expires at t=301 while the button is still held.
	runEdges(c, confirmedAt(0, 1200), -100, 2000)

	counts := c.Counts()
	if counts.LongPresses != 1 {
		t.Errorf("expected LongPresses=1, got %d", counts.LongPresses)
	}
	if counts.Discarded != 0 {
		t.Errorf("a long press must not also count as a discarded burst, got %d", counts.Discarded)
	}
}

func TestHeldShortPressDiscardedOnRelease(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	edges := confirmedAt(0, 500)

	runEdges(c, edges, -100, 400)
	if got := c.Counts().Discarded; got != 0 {
		t.Fatalf("held press must stay undecided until release, got Discarded=%d", got)
	}

	events := runEdges(c, edges, 400, 1000)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %s", events[0].event.Type)
	}
	if got := c.Counts().Discarded; got != 1 {
		t.Errorf("expected Discarded=1 after release, got %d", got)
	}
}

func TestLongPressWinsOverBurstExpiryInSamePoll(t *testing.T) {
	c := NewClassifier(ClassifierConfig{LongPress: 200 * time.Millisecond})

	// Coarse polls: two presses confirmed at t=60 and t=200, then the
	// release is confirmed at t=420, where hold=220ms reaches the long
	// press threshold and the burst started at t=60 has also expired.
	polls := []struct {
		ms     int
		sample Sample
	}{
		{0, Pressed}, {60, Pressed},
		{70, Released}, {130, Released},
		{140, Pressed}, {200, Pressed},
		{300, Released},
	}
	for _, p := range polls {
		if ev := c.Poll(p.sample, at(p.ms)); !ev.IsNone() {
			t.Fatalf("t=%d: unexpected %s", p.ms, ev.Type)
		}
	}
	if c.ClickCount() != 2 {
		t.Fatalf("expected 2 pending clicks, got %d", c.ClickCount())
	}

	ev := c.Poll(Released, at(420))
	if ev.Type != EventLongPress {
		t.Fatalf("expected LONG_PRESS, got %s", ev.Type)
	}
	if ev.Hold != 220*time.Millisecond {
		t.Errorf("expected hold 220ms, got %v", ev.Hold)
	}
	if c.ClickCount() != 0 {
		t.Errorf("long press should cancel the burst, got %d pending clicks", c.ClickCount())
	}

	if next := c.Poll(Released, at(430)); !next.IsNone() {
		t.Errorf("cancelled burst must not resolve later, got %s", next.Type)
	}
	if c.Counts().DoubleClicks != 0 {
		t.Error("cancelled burst must not count as a double click")
	}
}
