package app

import (
	"context"
	"errors"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
)

var errNoLatest = errors.New("latest: no message yet")

// LoadLatest pulls the server's last message and shows it like a push.
func (d *Dashboard) LoadLatest(ctx context.Context) error {
	var resp msg.LatestResponse
	if err := d.api.GetJSON(ctx, "/api/latest", nil, &resp); err != nil && !decodedBody(err) {
		d.log.Printf("dashboard: error loading latest: %v", err)
		d.cfg.Metrics.Fetch("latest", "error")
		return err
	}
	if !resp.Success || resp.Data == nil || !resp.Data.HasPayload() {
		d.cfg.Metrics.Fetch("latest", "failed")
		return errNoLatest
	}
	d.cfg.Metrics.Fetch("latest", "ok")
	d.do(func() { d.displayLatest(resp.Data.Payload, resp.Timestamp) })
	return nil
}
