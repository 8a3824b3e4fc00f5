package app

import (
	"context"
	"fmt"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

// LoadStatistics fetches the aggregates. On any failure the panel keeps its
// previous values; the error is only logged and returned.
func (d *Dashboard) LoadStatistics(ctx context.Context) error {
	var resp msg.StatsResponse
	if err := d.api.GetJSON(ctx, "/api/stats", nil, &resp); err != nil && !decodedBody(err) {
		d.log.Printf("dashboard: error loading stats: %v", err)
		d.cfg.Metrics.Fetch("stats", "error")
		return err
	}
	if !resp.Success || resp.Stats == nil {
		reason := resp.Message
		if reason == "" {
			reason = resp.Error
		}
		d.cfg.Metrics.Fetch("stats", "failed")
		return fmt.Errorf("stats: not available: %s", reason)
	}
	d.cfg.Metrics.Fetch("stats", "ok")
	d.do(func() { d.updateStatistics(*resp.Stats) })
	return nil
}

func (d *Dashboard) UpdateStatistics(s msg.Statistics) {
	d.do(func() { d.updateStatistics(s) })
}

func (d *Dashboard) updateStatistics(s msg.Statistics) {
	d.doc.SetText(view.TotalReadings, s.TotalReadings.String())
	d.doc.SetText(view.AverageValue, s.AverageValue.String())
	d.doc.SetText(view.MaxValue, s.MaxValue.String())
	d.doc.SetText(view.MinValue, s.MinValue.String())
}
