// Package metrics holds the Prometheus collectors of the dashboard client.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	messages   prometheus.Counter
	heartbeats prometheus.Counter
	malformed  prometheus.Counter
	reconnects prometheus.Counter
	connected  prometheus.Gauge
	fetches    *prometheus.CounterVec
	mqttDups   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_stream_messages_total",
			Help: "Live payloads dispatched to the live feed.",
		}),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_stream_heartbeats_total",
			Help: "Heartbeat events ignored on the push stream.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_stream_malformed_total",
			Help: "Push events dropped because the body was not a valid envelope.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_stream_reconnects_total",
			Help: "Reconnect attempts scheduled after a stream error.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_stream_connected",
			Help: "1 while the push stream is open.",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_fetch_total",
			Help: "On-demand API fetches by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		mqttDups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_mqtt_duplicates_total",
			Help: "MQTT payloads dropped as redeliveries.",
		}),
	}
	m.reg.MustRegister(
		m.messages, m.heartbeats, m.malformed, m.reconnects, m.connected, m.fetches, m.mqttDups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Message() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *Metrics) Heartbeat() {
	if m != nil {
		m.heartbeats.Inc()
	}
}

func (m *Metrics) Malformed() {
	if m != nil {
		m.malformed.Inc()
	}
}

func (m *Metrics) Reconnect() {
	if m != nil {
		m.reconnects.Inc()
	}
}

func (m *Metrics) Connected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// Fetch records one loader round trip; outcome is "ok", "failed" or "error".
func (m *Metrics) Fetch(endpoint, outcome string) {
	if m != nil {
		m.fetches.WithLabelValues(endpoint, outcome).Inc()
	}
}

func (m *Metrics) Duplicate() {
	if m != nil {
		m.mqttDups.Inc()
	}
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
