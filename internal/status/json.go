package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	LastCode      *CodeJSON    `json:"last_code,omitempty"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of pipeline counts.
type CountsJSON struct {
	Trains     int `json:"trains"`
	Decoded    int `json:"decoded"`
	Duplicates int `json:"duplicates"`
	Unmatched  int `json:"unmatched"`
}

// CodeJSON is the JSON representation of the last decoded code.
type CodeJSON struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Protocol  uint8  `json:"protocol"`
	Bits      int    `json:"bits"`
	Hex       string `json:"hex"`
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
	Source      string `json:"source"`
	Input       string `json:"input"`
	IdleUs      int64  `json:"idle_us"`
	GlitchUs    int64  `json:"glitch_us"`
	MinPairs    int    `json:"min_pairs"`
	Protocols   int    `json:"protocols"`
	StrictDedup bool   `json:"strict_dedup"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Config
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: c.Broker},
		Counts: CountsJSON{
			Trains:     snap.Counts.Trains,
			Decoded:    snap.Counts.Decoded,
			Duplicates: snap.Counts.Duplicates,
			Unmatched:  snap.Counts.Unmatched,
		},
		Config: ConfigJSON{
			Source:      c.Source,
			Input:       c.Input,
			IdleUs:      c.IdleUs,
			GlitchUs:    c.GlitchUs,
			MinPairs:    c.MinPairs,
			Protocols:   c.Protocols,
			StrictDedup: c.StrictDedup,
			HeartbeatMs: c.HeartbeatMs,
			Broker:      c.Broker,
			HTTPAddr:    c.HTTPAddr,
		},
	}

	if e := snap.LastCode; e != nil {
		inner.LastCode = &CodeJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(e.Type),
			Protocol:  e.Protocol,
			Bits:      e.Bits,
			Hex:       e.Hex(),
		}
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
