package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pi-key/internal/status"
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
	"ms": func(ms int64) string {
		if ms <= 0 {
			return "disabled"
		}
		return fmt.Sprintf("%dms", ms)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pi Key</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Pi Key</h1>

<h2>State</h2>
<table>
<tr><th>Button</th><td id="button" class="{{if .Button}}on{{else}}off{{end}}">{{.Button}}</td></tr>
<tr><th>Keep-alive</th><td id="keep-alive" class="{{if .KeepAlive.Active}}on{{else}}off{{end}}">{{if .KeepAlive.Active}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Keep-alive sent</th><td id="keep-alive-sent">{{.KeepAlive.Sent}}</td></tr>
<tr><th>Macro</th><td>{{if .Config.MacroLoaded}}loaded{{else}}none{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Double clicks</th><td id="double-clicks">{{.Counts.DoubleClicks}}</td></tr>
<tr><th>Long presses</th><td id="long-presses">{{.Counts.LongPresses}}</td></tr>
<tr><th>Short clicks</th><td>{{.Counts.ShortClicks}}</td></tr>
<tr><th>Discarded</th><td>{{.Counts.Discarded}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{ms .Config.PollMs}}</td></tr>
<tr><th>Debounce</th><td>{{ms .Config.DebounceMs}}</td></tr>
<tr><th>Double-press gap</th><td>{{ms .Config.DoublePressGapMs}}</td></tr>
<tr><th>Long press</th><td>{{ms .Config.LongPressMs}}</td></tr>
<tr><th>Keep-alive delay</th><td>{{.Config.KeepAliveMinMs}}-{{.Config.KeepAliveMaxMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{ms .Config.HeartbeatMs}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  function setState(id, on, text) {
    var el = document.getElementById(id);
    el.textContent = text;
    el.className = on ? "on" : "off";
  }

  setInterval(function() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(msg) {
      var s = msg.status;
      setState("button", s.button === "PRESSED", s.button);
      setState("keep-alive", s.keep_alive.state === "ON", s.keep_alive.state);
      document.getElementById("keep-alive-sent").textContent = s.keep_alive.sent;
      document.getElementById("double-clicks").textContent = s.event_counts.double_clicks;
      document.getElementById("long-presses").textContent = s.event_counts.long_presses;
    }).catch(function() {});
  }, 2000);
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
