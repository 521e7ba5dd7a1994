// Package status provides a thread-safe status tracker for the pi-key daemon.
// It is read by the HTTP handlers and by heartbeat/system MQTT events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pi-key/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	DebounceMs       int64
	DoublePressGapMs int64
	LongPressMs      int64
	KeepAliveMinMs   int64
	KeepAliveMaxMs   int64
	HeartbeatMs      int64
	Broker           string
	HTTPAddr         string
	MacroLoaded      bool
}

// KeepAlive is the keep-alive scheduler state.
type KeepAlive struct {
	Active  bool
	NextDue time.Time
	Sent    int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Button        logic.Sample
	KeepAlive     KeepAlive
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the confirmed button state and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(button logic.Sample, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Button = button
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetKeepAlive sets the scheduler state.
func (t *Tracker) SetKeepAlive(ka KeepAlive) {
	t.mu.Lock()
	t.snap.KeepAlive = ka
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
