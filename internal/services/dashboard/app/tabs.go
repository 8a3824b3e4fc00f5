package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

var (
	ErrUnknownTab = errors.New("unknown tab")
	ErrBadTarget  = errors.New("target is not a tab button")
)

// OpenTab makes name the only active panel and target the only active
// button. An empty target means the tab's own button. Entering the
// historical or stats tab refetches its data every time.
func (d *Dashboard) OpenTab(ctx context.Context, name, target string) error {
	if !slices.Contains(view.Tabs, name) {
		return fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	if target == "" {
		target = view.TabButtonID(name)
	}
	if !slices.Contains(d.doc.ByClass(view.ClassTabButton), target) {
		return fmt.Errorf("%w: %q", ErrBadTarget, target)
	}

	d.do(func() {
		for _, id := range d.doc.ByClass(view.ClassTabContent) {
			d.doc.RemoveClass(id, view.ClassActive)
		}
		for _, id := range d.doc.ByClass(view.ClassTabButton) {
			d.doc.RemoveClass(id, view.ClassActive)
		}
		d.doc.AddClass(name, view.ClassActive)
		d.doc.AddClass(target, view.ClassActive)

		if name == view.TabHistorical {
			d.doc.SetHTML(view.HistoricalData, historicalLoadingHTML)
		}
	})

	switch name {
	case view.TabHistorical:
		return d.LoadHistorical(ctx)
	case view.TabStats:
		return d.LoadStatistics(ctx)
	}
	return nil
}

// ActiveTab returns the active panel, or "" if none is.
func (d *Dashboard) ActiveTab() string {
	for _, id := range d.doc.ByClass(view.ClassTabContent) {
		if d.doc.HasClass(id, view.ClassActive) {
			return id
		}
	}
	return ""
}
