package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/metrics"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

// NewHTTPMux serves the rendered dashboard and its controls.
func NewHTTPMux(d *Dashboard, hub *Hub, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := view.RenderPage(w, d.Document().Snapshot()); err != nil {
			d.log.Printf("dashboard: render page: %v", err)
		}
	})

	mux.HandleFunc("/view", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Document().Snapshot())
	})

	// POST /tab?name=historical[&target=tab-btn-historical]
	mux.HandleFunc("/tab", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		err := d.OpenTab(r.Context(), r.FormValue("name"), r.FormValue("target"))
		switch {
		case errors.Is(err, ErrUnknownTab), errors.Is(err, ErrBadTarget):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			// the panel already shows the failure
			d.log.Printf("dashboard: tab %s: %v", r.FormValue("name"), err)
		}
		redirectOrOK(w, r)
	})

	// POST /time-range?hours=6
	mux.HandleFunc("/time-range", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		hours, err := strconv.Atoi(r.FormValue("hours"))
		if err != nil || hours <= 0 {
			http.Error(w, "hours must be a positive integer", http.StatusBadRequest)
			return
		}
		d.SetTimeRange(hours)
		_ = d.LoadHistorical(r.Context())
		redirectOrOK(w, r)
	})

	if hub != nil {
		mux.HandleFunc("/ws", hub.ServeWS)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		type status struct {
			Status          string `json:"status"`
			StreamConnected bool   `json:"stream_connected"`
			StreamState     string `json:"stream_state"`
			Time            string `json:"time"`
		}
		st := status{
			Status:          "degraded",
			StreamConnected: d.Connected(),
			StreamState:     d.stream.State().String(),
			Time:            time.Now().UTC().Format(time.RFC3339),
		}
		if st.StreamConnected {
			st.Status = "ok"
		}
		writeJSON(w, http.StatusOK, st)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ready := d.Connected()
		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]bool{"ready": ready})
	})

	mux.Handle("/metrics", m.Handler())
	return mux
}

// browsers posting the page forms get sent back to it; API callers get 204
func redirectOrOK(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
