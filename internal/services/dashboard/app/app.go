package app

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/metrics"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/stream"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

const (
	// HighlightFor is how long the live panel keeps the new-data class.
	HighlightFor = time.Second
	// ClockEvery is the server-time refresh period.
	ClockEvery = time.Second
)

type Config struct {
	APIBaseURL     string
	StreamPath     string
	HTTPTimeout    time.Duration
	ReconnectDelay time.Duration

	BreakerFailures int
	BreakerOpenFor  time.Duration

	PrimeLatest bool
	Location    *time.Location

	Metrics *metrics.Metrics
	Logger  *log.Logger

	// AfterFunc and Now are replaced in tests.
	AfterFunc stream.AfterFunc
	Now       func() time.Time
}

// Dashboard owns the page document, the push stream, the chart instance and
// the highlight timer. Every callback renders through do, which holds mu for
// the whole render step, so renders never interleave.
type Dashboard struct {
	cfg Config
	log *log.Logger

	mu        sync.Mutex
	doc       *view.Document
	api       *Upstream
	stream    *stream.Client
	chart     *ChartRenderer
	connected bool
	highlight stream.Timer
	cancel    context.CancelFunc

	listenMu sync.Mutex
	onChange []func(view.Snapshot)
}

func NewDashboard(cfg Config) *Dashboard {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 5 * time.Second
	}
	if cfg.StreamPath == "" {
		cfg.StreamPath = "/api/stream"
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) stream.Timer { return time.AfterFunc(d, f) }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	d := &Dashboard{
		cfg:   cfg,
		log:   cfg.Logger,
		doc:   view.NewDashboard(),
		api:   NewUpstream("dashboard-api", cfg.APIBaseURL, cfg.HTTPTimeout, newBreaker("dashboard-api", cfg.BreakerFailures, cfg.BreakerOpenFor)),
		chart: NewChartRenderer(0, 0),
	}
	d.stream = stream.New(stream.Config{
		URL:       joinURL(cfg.APIBaseURL, cfg.StreamPath),
		Delay:     cfg.ReconnectDelay,
		AfterFunc: cfg.AfterFunc,
		Metrics:   cfg.Metrics,
		Logger:    cfg.Logger,
	}, d)
	return d
}

// Start connects the stream, runs each loader once and starts the clock.
func (d *Dashboard) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.log.Printf("dashboard: starting against %s", d.cfg.APIBaseURL)
	d.stream.Start(ctx)

	go func() { _ = d.LoadHistorical(ctx) }()
	go func() { _ = d.LoadStatistics(ctx) }()
	if d.cfg.PrimeLatest {
		go func() { _ = d.LoadLatest(ctx) }()
	}

	d.UpdateServerTime()
	go d.runClock(ctx)
}

// Close is the page teardown: the stream and all timers stop.
func (d *Dashboard) Close() {
	d.stream.Close()
	d.mu.Lock()
	if d.highlight != nil {
		d.highlight.Stop()
		d.highlight = nil
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
}

// OnChange registers fn to receive a snapshot after every render step.
func (d *Dashboard) OnChange(fn func(view.Snapshot)) {
	d.listenMu.Lock()
	d.onChange = append(d.onChange, fn)
	d.listenMu.Unlock()
}

func (d *Dashboard) Document() *view.Document { return d.doc }

func (d *Dashboard) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *Dashboard) do(fn func()) {
	d.mu.Lock()
	fn()
	d.mu.Unlock()

	d.listenMu.Lock()
	listeners := slices.Clone(d.onChange)
	d.listenMu.Unlock()
	if len(listeners) == 0 {
		return
	}
	snap := d.doc.Snapshot()
	for _, fn := range listeners {
		fn(snap)
	}
}
