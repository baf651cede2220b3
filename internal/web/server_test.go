package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/rc-scanner/internal/logic"
	"github.com/sweeney/rc-scanner/internal/rcscan"
	"github.com/sweeney/rc-scanner/internal/status"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	cfg := status.Config{
		Source:      "gpio",
		Input:       "27",
		IdleUs:      5000,
		GlitchUs:    100,
		MinPairs:    23,
		Protocols:   15,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, rcscan.Protocols())
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.EventCounts{Trains: 7, Decoded: 5, Duplicates: 2}, &logic.Event{
		Timestamp: start.Add(time.Minute),
		Type:      logic.EventCode,
		Protocol:  1,
		Bits:      24,
		Value:     0x5A5A5A,
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.LastCode == nil {
		t.Fatal("expected last_code")
	}
	if sj.Status.LastCode.Hex != "5a5a5a" {
		t.Errorf("LastCode.Hex: got %q, want 5a5a5a", sj.Status.LastCode.Hex)
	}
	if sj.Status.LastCode.Protocol != 1 {
		t.Errorf("LastCode.Protocol: got %d, want 1", sj.Status.LastCode.Protocol)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Decoded != 5 {
		t.Errorf("Counts.Decoded: got %d, want 5", sj.Status.Counts.Decoded)
	}
	if sj.Status.Counts.Duplicates != 2 {
		t.Errorf("Counts.Duplicates: got %d, want 2", sj.Status.Counts.Duplicates)
	}
	if sj.Status.Config.IdleUs != 5000 {
		t.Errorf("Config.IdleUs: got %d, want 5000", sj.Status.Config.IdleUs)
	}
}

func TestJSONNoCodeYet(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.LastCode != nil {
		t.Errorf("expected no last_code before first decode, got %+v", sj.Status.LastCode)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.EventCounts{Trains: 1, Decoded: 1}, &logic.Event{
		Timestamp: start,
		Type:      logic.EventCode,
		Protocol:  6,
		Bits:      32,
		Value:     0xCAFE,
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "0x0000cafe") {
		t.Error("expected last code in page")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestHTMLListsProtocols(t *testing.T) {
	ts, _ := newTestServer(t)

	body := getBody(t, ts.URL+"/")
	for _, want := range []string{"<th>101</th>", "350us", "1:31", "none yet", "value only"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestUpdatesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Counts.Trains != 0 {
		t.Errorf("expected no trains initially, got %d", sj1.Status.Counts.Trains)
	}

	tr.Update(logic.EventCounts{Trains: 3, Unmatched: 3}, nil)
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Counts.Unmatched != 3 {
		t.Errorf("Counts.Unmatched: got %d, want 3", sj2.Status.Counts.Unmatched)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
