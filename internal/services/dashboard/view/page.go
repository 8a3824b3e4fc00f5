package view

import (
	"html/template"
	"io"
	"sort"
	"strings"
)

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"button": TabButtonID,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Raspberry Pi IoT Dashboard</title>
<style>
.tab-content{display:none}.tab-content.active{display:block}
.tab-button.active{font-weight:bold}
.new-data{background:#fef9c3}
.status-dot{display:inline-block;width:10px;height:10px;border-radius:5px;background:#ef4444}
.status-dot.active{background:#10b981}
.table-row{display:grid;grid-template-columns:2fr 2fr 3fr 1fr}
.table-row.header{font-weight:bold}
.loading.error{color:#ef4444}
</style>
</head>
<body data-version="{{.Version}}">
<header>
 <span id="status-dot" class="status-dot {{.Class "status-dot"}}"></span>
 <span id="connection-status" style="{{.Style "connection-status"}}">{{.Content "connection-status"}}</span>
 <span id="server-time">{{.Content "server-time"}}</span>
</header>
<nav>
{{- range $t := .Tabs}}
 <form method="post" action="/tab?name={{$t}}" style="display:inline"><button id="{{button $t}}" class="{{$.Class (button $t)}}">{{$t}}</button></form>
{{- end}}
</nav>
<section id="live" class="{{.Class "live"}}">
 <div>Device <span id="device-id">{{.Content "device-id"}}</span></div>
 <div>Value <span id="current-value">{{.Content "current-value"}}</span></div>
 <div>Status <span id="device-status">{{.Content "device-status"}}</span></div>
 <div>Message <span id="message-id">{{.Content "message-id"}}</span></div>
 <div>Last updated <span id="last-updated">{{.Content "last-updated"}}</span></div>
 <div id="latest-data" class="{{.Class "latest-data"}}">{{.Content "latest-data"}}</div>
</section>
<section id="historical" class="{{.Class "historical"}}">
 <form method="post" action="/time-range">
  <input id="time-range" name="hours" value="{{.Value "time-range"}}"><button>Load</button>
 </form>
 <div id="historyChart">{{.Content "historyChart"}}</div>
 <div id="historical-data">{{.Content "historical-data"}}</div>
</section>
<section id="stats" class="{{.Class "stats"}}">
 <div>Total <span id="total-readings">{{.Content "total-readings"}}</span></div>
 <div>Average <span id="average-value">{{.Content "average-value"}}</span></div>
 <div>Max <span id="max-value">{{.Content "max-value"}}</span></div>
 <div>Min <span id="min-value">{{.Content "min-value"}}</span></div>
</section>
</body>
</html>
`))

type pageData struct {
	Version  uint64
	Tabs     []string
	elements map[string]ElementSnapshot
}

func (p pageData) Content(id string) template.HTML {
	el := p.elements[id]
	if el.IsHTML {
		return template.HTML(el.Content)
	}
	return template.HTML(template.HTMLEscapeString(el.Content))
}

func (p pageData) Class(id string) string { return strings.Join(p.elements[id].Classes, " ") }

func (p pageData) Value(id string) string { return p.elements[id].Value }

func (p pageData) Style(id string) template.CSS {
	st := p.elements[id].Styles
	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k + ":" + st[k] + ";")
	}
	return template.CSS(b.String())
}

// RenderPage writes the full HTML page for a snapshot.
func RenderPage(w io.Writer, s Snapshot) error {
	return pageTmpl.Execute(w, pageData{Version: s.Version, Tabs: Tabs, elements: s.Elements})
}
