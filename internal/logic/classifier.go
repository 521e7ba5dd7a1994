package logic

import "time"

// Default timing windows.
const (
	DefaultDebounce       = 50 * time.Millisecond
	DefaultDoublePressGap = 300 * time.Millisecond
	DefaultLongPress      = 1000 * time.Millisecond
)

// ClassifierConfig holds the timing windows. Zero values use the defaults.
type ClassifierConfig struct {
	Debounce       time.Duration
	DoublePressGap time.Duration
	LongPress      time.Duration

	// ReportSingleClicks emits SHORT_CLICK for a resolved single click
	// instead of discarding it. A single press still held when its burst
	// resolves is never reported, since it may yet become a long press.
	ReportSingleClicks bool
}

func (c ClassifierConfig) withDefaults() ClassifierConfig {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.DoublePressGap <= 0 {
		c.DoublePressGap = DefaultDoublePressGap
	}
	if c.LongPress <= 0 {
		c.LongPress = DefaultLongPress
	}
	return c
}

// DebounceState tracks the raw line and the confirmed (debounced) sample.
type DebounceState struct {
	LastRaw       Sample
	LastRawChange time.Time
	Confirmed     Sample
}

// ClickSession tracks a burst of clicks.
type ClickSession struct {
	Count        int
	SessionStart time.Time
	PressStart   time.Time
	// HeldSingle marks a single-click burst that expired while still
	// pressed. Its release decides between a long press and a discard.
	HeldSingle bool
}

// Classifier turns raw button samples into gestures.
// Not safe for concurrent use.
type Classifier struct {
	cfg     ClassifierConfig
	db      DebounceState
	session ClickSession
	counts  EventCounts
}

// NewClassifier creates a classifier with the button released.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (c *Classifier) Config() ClassifierConfig {
	return c.cfg
}

// Poll consumes one raw sample and returns at most one event.
// The returned event has Type EventNone when nothing was classified.
func (c *Classifier) Poll(sample Sample, now time.Time) Event {
	if c.debounce(sample, now) {
		if ev := c.handleEdge(now); !ev.IsNone() {
			return ev
		}
	}
	return c.resolveBurst(now)
}

// debounce returns true when the confirmed sample changed on this poll.
func (c *Classifier) debounce(sample Sample, now time.Time) bool {
	if sample != c.db.LastRaw {
		c.db.LastRaw = sample
		c.db.LastRawChange = now
	}

	if now.Sub(c.db.LastRawChange) > c.cfg.Debounce && sample != c.db.Confirmed {
		c.db.Confirmed = sample
		return true
	}
	return false
}

func (c *Classifier) handleEdge(now time.Time) Event {
	if c.db.Confirmed == Pressed {
		c.session.PressStart = now
		if c.session.Count == 0 {
			c.session.SessionStart = now
		}
		c.session.Count++
		return none(now)
	}

	heldSingle := c.session.HeldSingle
	c.session.HeldSingle = false

	hold := now.Sub(c.session.PressStart)
	if hold < c.cfg.LongPress {
		if heldSingle {
			c.counts.Discarded++
		}
		return none(now)
	}

	// A long press is never counted as a click and cancels the burst.
	c.session.Count = 0
	c.counts.LongPresses++
	return Event{Timestamp: now, Type: EventLongPress, Hold: hold}
}

func (c *Classifier) resolveBurst(now time.Time) Event {
	if c.session.Count == 0 || now.Sub(c.session.SessionStart) <= c.cfg.DoublePressGap {
		return none(now)
	}

	clicks := c.session.Count
	c.session.Count = 0

	switch {
	case clicks == 2:
		c.counts.DoubleClicks++
		return Event{Timestamp: now, Type: EventDoubleClick, Clicks: clicks}
	case clicks == 1 && c.cfg.ReportSingleClicks && c.db.Confirmed == Released:
		c.counts.ShortClicks++
		return Event{Timestamp: now, Type: EventShortClick, Clicks: clicks}
	}

	if clicks == 1 && c.db.Confirmed == Pressed {
		c.session.HeldSingle = true
		return none(now)
	}

	// Single clicks and 3+ click bursts are dropped.
	c.counts.Discarded++
	return none(now)
}

func none(now time.Time) Event {
	return Event{Timestamp: now, Type: EventNone}
}

// Confirmed returns the current debounced sample.
func (c *Classifier) Confirmed() Sample {
	return c.db.Confirmed
}

// ClickCount returns the number of clicks in the pending burst.
func (c *Classifier) ClickCount() int {
	return c.session.Count
}

// Counts returns a copy of the event counters.
func (c *Classifier) Counts() EventCounts {
	return c.counts
}
