// Package stream keeps the dashboard's push-stream connection open.
//
// Reconnects are a fixed-delay, timer-driven transition
// Disconnected -> Reconnecting -> Connected that repeats forever; every new
// connection replaces (and closes) the previous one, so at most one is live.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/metrics"
	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
)

const (
	// ReconnectDelay is the wait between a stream error and the next attempt.
	ReconnectDelay = 5 * time.Second

	// HeartbeatSentinel prefixes the keep-alive lines the server sends.
	HeartbeatSentinel = ": heartbeat"
)

var ErrStreamClosed = errors.New("stream closed by server")

type State int

const (
	StateDisconnected State = iota
	StateReconnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Handler receives the stream callbacks. Calls come from the connection's
// reader goroutine, one at a time, in receipt order.
type Handler interface {
	OnOpen()
	OnMessage(env msg.StreamEnvelope)
	OnError(err error)
}

// Timer is the part of *time.Timer the client needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d; tests replace it to drive reconnects by hand.
type AfterFunc func(d time.Duration, f func()) Timer

type Config struct {
	URL       string
	Delay     time.Duration
	Client    *http.Client
	AfterFunc AfterFunc
	Metrics   *metrics.Metrics
	Logger    *log.Logger
}

type conn struct {
	id     uint64
	cancel context.CancelFunc
}

type Client struct {
	cfg   Config
	http  *http.Client
	delay backoff.BackOff
	h     Handler
	log   *log.Logger

	mu     sync.Mutex
	ctx    context.Context
	state  State
	cur    *conn
	seq    uint64
	timer  Timer
	closed bool
	done   chan struct{}
}

func New(cfg Config, h Handler) *Client {
	if cfg.Delay <= 0 {
		cfg.Delay = ReconnectDelay
	}
	if cfg.Client == nil {
		// no overall timeout: the response body stays open for the stream's life
		cfg.Client = &http.Client{}
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Client{
		cfg:   cfg,
		http:  cfg.Client,
		delay: backoff.NewConstantBackOff(cfg.Delay),
		h:     h,
		log:   cfg.Logger,
		ctx:   context.Background(),
		done:  make(chan struct{}),
	}
}

// Start opens the first connection. Cancelling ctx is equivalent to Close.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.connect()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()
}

// Done is closed by the first Close.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears the stream down and cancels any pending reconnect.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cur != nil {
		c.cur.cancel()
		c.cur = nil
	}
	c.state = StateDisconnected
}

func (c *Client) connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.cur != nil {
		c.cur.cancel()
		c.cur = nil
	}
	c.seq++
	ctx, cancel := context.WithCancel(c.ctx)
	cn := &conn{id: c.seq, cancel: cancel}
	c.cur = cn
	c.state = StateReconnecting
	c.mu.Unlock()

	go c.run(ctx, cn)
}

func (c *Client) run(ctx context.Context, cn *conn) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		c.fail(cn, fmt.Errorf("stream: build request: %w", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(cn, fmt.Errorf("stream: connect: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.fail(cn, fmt.Errorf("stream: status %d", resp.StatusCode))
		return
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		c.fail(cn, fmt.Errorf("stream: unexpected content type %q", ct))
		return
	}
	if !c.opened(cn) {
		return
	}

	r := NewReader(resp.Body)
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrStreamClosed
			}
			c.fail(cn, fmt.Errorf("stream: read: %w", err))
			return
		}
		if !c.current(cn) {
			return
		}
		c.dispatch(ev)
	}
}

func (c *Client) current(cn *conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur == cn
}

func (c *Client) opened(cn *conn) bool {
	c.mu.Lock()
	if c.cur != cn {
		c.mu.Unlock()
		return false
	}
	c.state = StateConnected
	c.mu.Unlock()

	c.log.Printf("stream: connected to %s (conn %d)", c.cfg.URL, cn.id)
	c.cfg.Metrics.Connected(true)
	c.h.OnOpen()
	return true
}

// fail is a no-op for connections that were already replaced or closed, so
// one error schedules exactly one reconnect.
func (c *Client) fail(cn *conn, err error) {
	c.mu.Lock()
	if c.closed || c.cur != cn {
		c.mu.Unlock()
		return
	}
	cn.cancel()
	c.cur = nil
	c.state = StateDisconnected
	d := c.delay.NextBackOff()
	if c.timer == nil {
		c.timer = c.cfg.AfterFunc(d, c.connect)
	}
	c.mu.Unlock()

	c.log.Printf("stream: %v; reconnecting in %s", err, d)
	c.cfg.Metrics.Connected(false)
	c.cfg.Metrics.Reconnect()
	c.h.OnError(err)
}

func (c *Client) dispatch(ev Event) {
	if strings.HasPrefix(ev.Data, HeartbeatSentinel) {
		c.cfg.Metrics.Heartbeat()
		return
	}
	if ev.Comment {
		return
	}
	// named events only reach listeners registered for that name
	if ev.Type != "message" {
		return
	}

	var env msg.StreamEnvelope
	if err := json.Unmarshal([]byte(ev.Data), &env); err != nil {
		c.log.Printf("stream: error parsing message: %v", err)
		c.cfg.Metrics.Malformed()
		return
	}
	if !env.HasPayload() {
		c.log.Printf("stream: message without payload dropped")
		c.cfg.Metrics.Malformed()
		return
	}
	c.cfg.Metrics.Message()
	c.h.OnMessage(env)
}
