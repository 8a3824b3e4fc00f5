package app

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/stream"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (f *fakeTimer) Stop() bool { f.stopped = true; return true }

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) stream.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[i]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fakeAPI serves the dashboard endpoints with canned bodies and counts hits.
type fakeAPI struct {
	mu         sync.Mutex
	hits       map[string]int
	historical any
	stats      any
	latest     any
	statsFail  bool
	lastHours  string
}

func (a *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(path string, body func() (any, bool)) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			a.mu.Lock()
			a.hits[path]++
			if path == "/api/historical" {
				a.lastHours = r.URL.Query().Get("hours")
			}
			v, fail := body()
			a.mu.Unlock()
			if fail {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(v)
		})
	}
	reply("/api/historical", func() (any, bool) { return a.historical, false })
	reply("/api/stats", func() (any, bool) { return a.stats, a.statsFail })
	reply("/api/latest", func() (any, bool) { return a.latest, false })
	return mux
}

func (a *fakeAPI) count(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[path]
}

func (a *fakeAPI) set(fn func(a *fakeAPI)) {
	a.mu.Lock()
	fn(a)
	a.mu.Unlock()
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

// newTestDashboard builds a dashboard against a fake API without starting
// the stream.
func newTestDashboard(t *testing.T) (*Dashboard, *fakeAPI, *fakeClock) {
	t.Helper()
	api := &fakeAPI{
		hits:       map[string]int{},
		historical: map[string]any{"success": true, "count": 0, "data": []any{}},
		stats:      map[string]any{"success": true, "stats": map[string]any{}},
		latest:     map[string]any{"success": false, "message": "No data available"},
	}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	clk := &fakeClock{}
	d := NewDashboard(Config{
		APIBaseURL:      srv.URL,
		BreakerFailures: 100,
		Location:        time.UTC,
		Logger:          quietLogger(),
		AfterFunc:       clk.AfterFunc,
	})
	return d, api, clk
}
