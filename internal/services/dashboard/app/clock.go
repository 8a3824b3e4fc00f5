package app

import (
	"context"
	"time"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

func (d *Dashboard) UpdateServerTime() {
	d.do(func() { d.doc.SetText(view.ServerTime, formatClock(d.cfg.Now(), d.cfg.Location)) })
}

func (d *Dashboard) runClock(ctx context.Context) {
	t := time.NewTicker(ClockEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.UpdateServerTime()
		}
	}
}
