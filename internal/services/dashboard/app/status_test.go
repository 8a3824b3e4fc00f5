package app

import (
	"encoding/json"
	"errors"
	"testing"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

func TestConnectionStatusIndicator(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	doc := d.Document()

	d.OnOpen()
	if !d.Connected() || !doc.HasClass(view.StatusDot, view.ClassActive) {
		t.Fatalf("open: connected=%v dot active=%v", d.Connected(), doc.HasClass(view.StatusDot, view.ClassActive))
	}
	if got := doc.Style(view.ConnectionStatus, "color"); got != colorConnected {
		t.Fatalf("open color = %q", got)
	}
	if got := doc.Text(view.ConnectionStatus); got != `<i class="fas fa-bolt"></i> Receiving live MQTT data` {
		t.Fatalf("open text = %q", got)
	}

	d.OnError(errors.New("reset"))
	if d.Connected() || doc.HasClass(view.StatusDot, view.ClassActive) {
		t.Fatalf("error left the indicator connected")
	}
	if got := doc.Style(view.ConnectionStatus, "color"); got != colorDisconnected {
		t.Fatalf("error color = %q", got)
	}
	if got := doc.Text(view.ConnectionStatus); got != `<i class="fas fa-unlink"></i> Disconnected from MQTT` {
		t.Fatalf("error text = %q", got)
	}
}

func TestOnMessageRendersEnvelope(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	ts := 1700000000.0
	d.OnMessage(msg.StreamEnvelope{Topic: "rpi/data", Payload: json.RawMessage(`{"value":42}`), Timestamp: &ts})

	if got := d.Document().Text(view.CurrentVal); got != "42" {
		t.Fatalf("current-value = %q, want 42", got)
	}
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	var got []view.Snapshot
	d.OnChange(func(s view.Snapshot) { got = append(got, s) })

	d.OnOpen()
	d.UpdateServerTime()
	if len(got) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(got))
	}
	if got[1].Version <= got[0].Version {
		t.Fatalf("versions not increasing: %d then %d", got[0].Version, got[1].Version)
	}
}
