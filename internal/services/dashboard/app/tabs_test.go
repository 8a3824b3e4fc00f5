package app

import (
	"context"
	"errors"
	"testing"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

func activeCount(d *Dashboard, class string) int {
	n := 0
	for _, id := range d.Document().ByClass(class) {
		if d.Document().HasClass(id, view.ClassActive) {
			n++
		}
	}
	return n
}

func TestOpenTabSingleActive(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	ctx := context.Background()

	for _, name := range []string{view.TabHistorical, view.TabStats, view.TabLive, view.TabStats} {
		if err := d.OpenTab(ctx, name, ""); err != nil {
			t.Fatalf("OpenTab(%s): %v", name, err)
		}
		if d.ActiveTab() != name {
			t.Fatalf("active tab = %q, want %q", d.ActiveTab(), name)
		}
		if a, b := activeCount(d, view.ClassTabContent), activeCount(d, view.ClassTabButton); a != 1 || b != 1 {
			t.Fatalf("after %s: active panels=%d buttons=%d", name, a, b)
		}
		if !d.Document().HasClass(view.TabButtonID(name), view.ClassActive) {
			t.Fatalf("button of %s not active", name)
		}
	}
}

func TestOpenTabRefetches(t *testing.T) {
	d, api, _ := newTestDashboard(t)
	ctx := context.Background()

	_ = d.OpenTab(ctx, view.TabHistorical, "")
	_ = d.OpenTab(ctx, view.TabHistorical, "")
	_ = d.OpenTab(ctx, view.TabStats, "")
	_ = d.OpenTab(ctx, view.TabLive, "")

	if got := api.count("/api/historical"); got != 2 {
		t.Fatalf("historical fetches = %d, want 2", got)
	}
	if got := api.count("/api/stats"); got != 1 {
		t.Fatalf("stats fetches = %d, want 1", got)
	}
}

func TestOpenTabRejects(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	ctx := context.Background()

	if err := d.OpenTab(ctx, "settings", ""); !errors.Is(err, ErrUnknownTab) {
		t.Fatalf("unknown tab err = %v", err)
	}
	if err := d.OpenTab(ctx, view.TabStats, view.LatestData); !errors.Is(err, ErrBadTarget) {
		t.Fatalf("bad target err = %v", err)
	}
	if d.ActiveTab() != view.TabLive {
		t.Fatalf("rejected open changed the active tab to %q", d.ActiveTab())
	}
}
