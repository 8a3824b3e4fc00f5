package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/metrics"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

func serve(h http.Handler, method, target string, body string, form bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if form {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPPageAndView(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	mux := NewHTTPMux(d, nil, metrics.New())

	rec := serve(mux, http.MethodGet, "/", "", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="status-dot"`) {
		t.Fatalf("GET / = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodGet, "/nope", "", false); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", rec.Code)
	}

	rec = serve(mux, http.MethodGet, "/view", "", false)
	var snap view.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode /view: %v", err)
	}
	if _, ok := snap.Elements[view.LatestData]; !ok {
		t.Fatalf("/view lacks %s", view.LatestData)
	}
}

func TestHTTPTab(t *testing.T) {
	d, api, _ := newTestDashboard(t)
	mux := NewHTTPMux(d, nil, nil)

	if rec := serve(mux, http.MethodGet, "/tab?name=stats", "", false); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /tab = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodPost, "/tab?name=bogus", "", false); rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus tab = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodPost, "/tab?name=stats", "", false); rec.Code != http.StatusNoContent {
		t.Fatalf("POST /tab = %d", rec.Code)
	}
	if d.ActiveTab() != view.TabStats || api.count("/api/stats") != 1 {
		t.Fatalf("tab=%q stats fetches=%d", d.ActiveTab(), api.count("/api/stats"))
	}

	form := url.Values{"name": {view.TabHistorical}}.Encode()
	rec := serve(mux, http.MethodPost, "/tab", form, true)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("form post = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHTTPTimeRange(t *testing.T) {
	d, api, _ := newTestDashboard(t)
	mux := NewHTTPMux(d, nil, nil)

	if rec := serve(mux, http.MethodPost, "/time-range?hours=x", "", false); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad hours = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodPost, "/time-range?hours=168", "", false); rec.Code != http.StatusNoContent {
		t.Fatalf("POST /time-range = %d", rec.Code)
	}
	if d.Document().Value(view.TimeRange) != "168" || api.lastHours != "168" {
		t.Fatalf("time-range=%q queried=%q", d.Document().Value(view.TimeRange), api.lastHours)
	}
}

func TestHTTPHealth(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	mux := NewHTTPMux(d, nil, metrics.New())

	if rec := serve(mux, http.MethodGet, "/readyz", "", false); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before open = %d", rec.Code)
	}
	d.OnOpen()
	if rec := serve(mux, http.MethodGet, "/readyz", "", false); rec.Code != http.StatusOK {
		t.Fatalf("readyz after open = %d", rec.Code)
	}

	rec := serve(mux, http.MethodGet, "/healthz", "", false)
	var st struct {
		Status          string `json:"status"`
		StreamConnected bool   `json:"stream_connected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if st.Status != "ok" || !st.StreamConnected {
		t.Fatalf("healthz = %+v", st)
	}

	if rec := serve(mux, http.MethodGet, "/metrics", "", false); rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
}
