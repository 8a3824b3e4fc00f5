package app

import (
	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

const (
	colorConnected    = "#10b981"
	colorDisconnected = "#ef4444"
)

// OnOpen, OnMessage and OnError make the Dashboard the stream's handler.

func (d *Dashboard) OnOpen() {
	d.do(func() {
		d.updateConnectionStatus(true)
		d.connected = true
	})
}

func (d *Dashboard) OnMessage(env msg.StreamEnvelope) {
	d.do(func() { d.displayLatest(env.Payload, env.Timestamp) })
}

func (d *Dashboard) OnError(error) {
	d.do(func() {
		d.updateConnectionStatus(false)
		d.connected = false
	})
}

func (d *Dashboard) UpdateConnectionStatus(connected bool) {
	d.do(func() { d.updateConnectionStatus(connected) })
}

func (d *Dashboard) updateConnectionStatus(connected bool) {
	if connected {
		d.doc.AddClass(view.StatusDot, view.ClassActive)
		d.doc.SetHTML(view.ConnectionStatus, `<i class="fas fa-bolt"></i> Receiving live MQTT data`)
		d.doc.SetStyle(view.ConnectionStatus, "color", colorConnected)
		return
	}
	d.doc.RemoveClass(view.StatusDot, view.ClassActive)
	d.doc.SetHTML(view.ConnectionStatus, `<i class="fas fa-unlink"></i> Disconnected from MQTT`)
	d.doc.SetStyle(view.ConnectionStatus, "color", colorDisconnected)
}
