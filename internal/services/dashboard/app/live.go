package app

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

const (
	defaultDeviceID = "RaspberryPiEmulator1"
	defaultStatus   = "active"
	missingValue    = "--"

	// sensorValueKey is the key the quick stats look up first. The device
	// publishes "sendor data" (with a space), so this lookup never matches and
	// the value falls through to "value" or "--".
	sensorValueKey = "sendor_data"

	clockLayout = "3:04:05 PM"
)

var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// DisplayLatest renders a pushed payload and its optional epoch-seconds
// timestamp into the live panel.
func (d *Dashboard) DisplayLatest(payload json.RawMessage, timestamp *float64) {
	d.do(func() { d.displayLatest(payload, timestamp) })
}

func (d *Dashboard) displayLatest(payload json.RawMessage, timestamp *float64) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(payload)
	}

	d.doc.AddClass(view.LatestData, view.ClassNewData)
	d.flash()
	d.doc.SetHTML(view.LatestData, "<pre>"+angleEscaper.Replace(pretty.String())+"</pre>")

	if timestamp != nil && *timestamp != 0 {
		d.doc.SetText(view.LastUpdated, formatClock(epochSeconds(*timestamp), d.cfg.Location))
	}

	d.updateQuickStats(QuickStats(payload))
}

// flash replaces any pending highlight removal with a fresh one.
func (d *Dashboard) flash() {
	if d.highlight != nil {
		d.highlight.Stop()
	}
	d.highlight = d.cfg.AfterFunc(HighlightFor, func() {
		d.do(func() { d.doc.RemoveClass(view.LatestData, view.ClassNewData) })
	})
}

func (d *Dashboard) updateQuickStats(r msg.LiveReading) {
	d.doc.SetText(view.DeviceID, r.DeviceID)
	d.doc.SetText(view.CurrentVal, r.Value)
	d.doc.SetText(view.DeviceState, r.Status)
	d.doc.SetText(view.MessageID, r.MessageID)
}

// QuickStats extracts the four at-a-glance fields, each with its fallback
// when the key is absent or falsy (null, false, 0 or ""). A payload that is
// not a JSON object yields all fallbacks.
func QuickStats(payload json.RawMessage) msg.LiveReading {
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(payload, &fields)
	return msg.LiveReading{
		DeviceID:  firstOf(fields, defaultDeviceID, "device_id"),
		Value:     firstOf(fields, missingValue, sensorValueKey, "value"),
		Status:    firstOf(fields, defaultStatus, "status"),
		MessageID: firstOf(fields, missingValue, "message_id"),
	}
}

func firstOf(fields map[string]json.RawMessage, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := displayValue(fields[k]); ok {
			return s
		}
	}
	return def
}

func displayValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	}
	if bytes.Equal(raw, []byte("false")) {
		return "", false
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
		return "", false
	}
	return string(raw), true
}

func epochSeconds(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func formatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(clockLayout)
}
