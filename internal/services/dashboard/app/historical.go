package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

const (
	defaultHours = 24

	historicalLoadingHTML = `<p class="loading">Loading...</p>`
	historicalEmptyHTML   = `<p class="loading">No data found</p>`
	historicalFailedHTML  = `<p class="loading error">Failed to load data</p>`
)

// LoadHistorical fetches the selected hour range and renders both the table
// and the chart from the same rows. Failures are rendered inline and also
// returned.
func (d *Dashboard) LoadHistorical(ctx context.Context) error {
	hours := hoursFrom(d.doc.Value(view.TimeRange))

	var resp msg.HistoricalResponse
	err := d.api.GetJSON(ctx, "/api/historical", url.Values{"hours": {strconv.Itoa(hours)}}, &resp)
	if err != nil && !decodedBody(err) {
		d.log.Printf("dashboard: error loading historical: %v", err)
		d.cfg.Metrics.Fetch("historical", "error")
		d.do(func() { d.doc.SetHTML(view.HistoricalData, historicalFailedHTML) })
		return err
	}
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "No historical data"
		}
		d.cfg.Metrics.Fetch("historical", "failed")
		d.do(func() { d.doc.SetHTML(view.HistoricalData, `<p class="loading">`+reason+`</p>`) })
		return fmt.Errorf("historical: %s", reason)
	}

	d.cfg.Metrics.Fetch("historical", "ok")
	d.do(func() {
		d.displayHistorical(resp.Data)
		d.updateChart(resp.Data)
	})
	return nil
}

// SetTimeRange changes the hour range the next LoadHistorical uses.
func (d *Dashboard) SetTimeRange(hours int) {
	d.do(func() { d.doc.SetValue(view.TimeRange, strconv.Itoa(hoursFrom(strconv.Itoa(hours)))) })
}

func (d *Dashboard) DisplayHistorical(rows []msg.HistoricalPoint) {
	d.do(func() { d.displayHistorical(rows) })
}

func (d *Dashboard) displayHistorical(rows []msg.HistoricalPoint) {
	d.doc.SetHTML(view.HistoricalData, HistoricalTable(rows))
}

// HistoricalTable builds the table markup. Row fields are interpolated as
// received; the server is responsible for their content.
func HistoricalTable(rows []msg.HistoricalPoint) string {
	if len(rows) == 0 {
		return historicalEmptyHTML
	}
	var b strings.Builder
	b.WriteString(`<div class="table-row header"><div>Time</div><div>Device</div><div>Message</div><div>Value</div></div>`)
	for _, p := range rows {
		message := p.Message
		if message == "" {
			message = "-"
		}
		fmt.Fprintf(&b, `<div class="table-row"><div>%s</div><div>%s</div><div>%s</div><div><strong>%s</strong></div></div>`,
			p.FormattedTime, p.DeviceID, message, formatValue(p.Value))
	}
	return b.String()
}

func formatValue(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func hoursFrom(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return defaultHours
	}
	return n
}
