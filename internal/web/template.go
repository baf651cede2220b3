package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
	"github.com/sweeney/rc-scanner/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ratio": func(r rcscan.Ratio) string {
		return fmt.Sprintf("%d:%d", r.High, r.Low)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>RC Scanner</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.code { font-weight: bold; }
.repeat { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>RC Scanner</h1>

<h2>Last Code</h2>
<table>
{{with .LastCode}}<tr><th>Value</th><td id="last-code" class="{{if .Duplicate}}repeat{{else}}code{{end}}">0x{{.Hex}}</td></tr>
<tr><th>Protocol</th><td>{{.Protocol}}</td></tr>
<tr><th>Bits</th><td>{{.Bits}}</td></tr>
<tr><th>Seen</th><td>{{.Timestamp.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{else}}<tr><th>Value</th><td id="last-code">none yet</td></tr>
{{end}}</table>

<h2>Counts</h2>
<table>
<tr><th>Trains</th><td>{{.Counts.Trains}}</td></tr>
<tr><th>Decoded</th><td>{{.Counts.Decoded}}</td></tr>
<tr><th>Repeats</th><td>{{.Counts.Duplicates}}</td></tr>
<tr><th>Unmatched</th><td>{{.Counts.Unmatched}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Input</th><td>{{.Config.Source}} {{.Config.Input}}</td></tr>
<tr><th>Idle / glitch</th><td>{{.Config.IdleUs}}us / {{.Config.GlitchUs}}us</td></tr>
<tr><th>Dedup</th><td>{{if .Config.StrictDedup}}value and bit count{{else}}value only{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<h2>Protocols</h2>
<table>
<tr><th>ID</th><td>unit</td><td>tol</td><td>sync</td><td>zero</td><td>one</td><td>inv</td></tr>
{{range .Protocols}}<tr><th>{{.ID}}</th><td>{{.PulseUs}}us</td><td>{{.Tolerance}}%</td><td>{{ratio .Sync}}</td><td>{{ratio .Zero}}</td><td>{{ratio .One}}</td><td>{{if .Inverted}}yes{{end}}</td></tr>
{{end}}</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, protocols rcscan.Registry) error {
	data := struct {
		status.Snapshot
		Protocols rcscan.Registry
	}{
		Snapshot:  snap,
		Protocols: protocols,
	}
	return indexTmpl.Execute(w, data)
}
