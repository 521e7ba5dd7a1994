// Package logic contains the pure gesture classification and keep-alive scheduling logic.
// This package has NO external dependencies (no GPIO, HID, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Sample is a single raw reading of the button line.
type Sample bool

const (
	Released Sample = false
	Pressed  Sample = true
)

func (s Sample) String() string {
	if s {
		return "PRESSED"
	}
	return "RELEASED"
}

// State represents an on/off state for reporting.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// StateOf converts a flag into a State.
func StateOf(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// EventType is the classified intent produced by a poll.
type EventType string

const (
	EventNone        EventType = "NONE"
	EventShortClick  EventType = "SHORT_CLICK"
	EventDoubleClick EventType = "DOUBLE_CLICK"
	EventLongPress   EventType = "LONG_PRESS"
)

// Event is the result of a single Classifier.Poll.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Clicks is the click count of the resolved burst (0 for long presses).
	Clicks int
	// Hold is the press duration of a long press.
	Hold time.Duration
}

// IsNone reports whether the poll produced nothing actionable.
func (e Event) IsNone() bool {
	return e.Type == EventNone
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	ShortClicks  int
	DoubleClicks int
	LongPresses  int
	// Discarded counts bursts resolved without an event (silent singles, 3+ clicks).
	Discarded int
}

// Action is one of the two alternating keep-alive actions.
type Action string

const (
	ActionA Action = "SPACE"
	ActionB Action = "LEFT_ARROW"
)

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
