package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pi-key/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Button        string        `json:"button"`
	KeepAlive     KeepAliveJSON `json:"keep_alive"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// KeepAliveJSON reports the scheduler state.
type KeepAliveJSON struct {
	State   string `json:"state"`
	Sent    int    `json:"sent"`
	NextDue string `json:"next_due,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	ShortClicks  int `json:"short_clicks"`
	DoubleClicks int `json:"double_clicks"`
	LongPresses  int `json:"long_presses"`
	Discarded    int `json:"discarded"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	DoublePressGapMs int64  `json:"double_press_gap_ms"`
	LongPressMs      int64  `json:"long_press_ms"`
	KeepAliveMinMs   int64  `json:"keep_alive_min_ms"`
	KeepAliveMaxMs   int64  `json:"keep_alive_max_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
	MacroLoaded      bool   `json:"macro_loaded"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Button: snap.Button.String(),
		KeepAlive: KeepAliveJSON{
			State: string(logic.StateOf(snap.KeepAlive.Active)),
			Sent:  snap.KeepAlive.Sent,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			ShortClicks:  snap.Counts.ShortClicks,
			DoubleClicks: snap.Counts.DoubleClicks,
			LongPresses:  snap.Counts.LongPresses,
			Discarded:    snap.Counts.Discarded,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			DebounceMs:       snap.Config.DebounceMs,
			DoublePressGapMs: snap.Config.DoublePressGapMs,
			LongPressMs:      snap.Config.LongPressMs,
			KeepAliveMinMs:   snap.Config.KeepAliveMinMs,
			KeepAliveMaxMs:   snap.Config.KeepAliveMaxMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			MacroLoaded:      snap.Config.MacroLoaded,
		},
	}
	if snap.KeepAlive.Active {
		inner.KeepAlive.NextDue = snap.KeepAlive.NextDue.UTC().Format(time.RFC3339Nano)
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
