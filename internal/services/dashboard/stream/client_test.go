package stream

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
)

type recorder struct {
	mu     sync.Mutex
	opens  int
	errs   int
	msgs   []msg.StreamEnvelope
	events chan string
}

func newRecorder() *recorder { return &recorder{events: make(chan string, 64)} }

func (r *recorder) OnOpen() {
	r.mu.Lock()
	r.opens++
	r.mu.Unlock()
	r.events <- "open"
}

func (r *recorder) OnMessage(env msg.StreamEnvelope) {
	r.mu.Lock()
	r.msgs = append(r.msgs, env)
	r.mu.Unlock()
	r.events <- "message"
}

func (r *recorder) OnError(error) {
	r.mu.Lock()
	r.errs++
	r.mu.Unlock()
	r.events <- "error"
}

func (r *recorder) wait(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-r.events:
		if got != want {
			t.Fatalf("event = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

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

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func sseHandler(events ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, ev := range events {
			fmt.Fprint(w, ev)
		}
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}
}

func TestHeartbeatAndMalformedAreDropped(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		": heartbeat\n\n",
		"data: : heartbeat\n\n",
		"data: {not json\n\n",
		"data: {\"payload\":null}\n\n",
		"data: {\"payload\":{\"device_id\":\"x\"},\"timestamp\":1700000000}\n\n",
	))
	defer srv.Close()

	rec := newRecorder()
	clk := &fakeClock{}
	c := New(Config{URL: srv.URL, AfterFunc: clk.AfterFunc, Logger: quietLogger()}, rec)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	rec.wait(t, "open")
	rec.wait(t, "message")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(rec.msgs))
	}
	if ts := rec.msgs[0].Timestamp; ts == nil || *ts != 1700000000 {
		t.Fatalf("timestamp = %v", ts)
	}
	if rec.errs != 0 || c.State() != StateConnected {
		t.Fatalf("errs=%d state=%v", rec.errs, c.State())
	}
	if clk.count() != 0 {
		t.Fatal("malformed event scheduled a reconnect")
	}
}

func TestErrorSchedulesOneReconnect(t *testing.T) {
	var live, maxLive, hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := live.Add(1)
		defer live.Add(-1)
		for {
			m := maxLive.Load()
			if n <= m || maxLive.CompareAndSwap(m, n) {
				break
			}
		}
		if hits.Add(1) == 1 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		sseHandler()(w, r)
	}))
	defer srv.Close()

	rec := newRecorder()
	clk := &fakeClock{}
	c := New(Config{URL: srv.URL, AfterFunc: clk.AfterFunc, Logger: quietLogger()}, rec)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	rec.wait(t, "error")
	if c.State() != StateDisconnected {
		t.Fatalf("state after error = %v", c.State())
	}
	if clk.count() != 1 {
		t.Fatalf("timers after one error = %d", clk.count())
	}
	if d := clk.timers[0].d; d != ReconnectDelay {
		t.Fatalf("delay = %s, want %s", d, ReconnectDelay)
	}

	clk.fire(0)
	rec.wait(t, "open")
	if c.State() != StateConnected {
		t.Fatalf("state after reconnect = %v", c.State())
	}
	if clk.count() != 1 {
		t.Fatalf("timers after reconnect = %d", clk.count())
	}
	if maxLive.Load() > 1 {
		t.Fatalf("%d connections were live at once", maxLive.Load())
	}
}

func TestServerCloseReconnects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"payload\":{}}\n\n")
	}))
	defer srv.Close()

	rec := newRecorder()
	clk := &fakeClock{}
	c := New(Config{URL: srv.URL, AfterFunc: clk.AfterFunc, Logger: quietLogger()}, rec)
	c.Start(context.Background())
	defer c.Close()

	rec.wait(t, "open")
	rec.wait(t, "message")
	rec.wait(t, "error")
	if clk.count() != 1 {
		t.Fatalf("timers = %d", clk.count())
	}
}

func TestCloseStopsReconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := newRecorder()
	clk := &fakeClock{}
	c := New(Config{URL: srv.URL, AfterFunc: clk.AfterFunc, Logger: quietLogger()}, rec)
	c.Start(context.Background())
	rec.wait(t, "error")

	c.Close()
	if !clk.timers[0].stopped {
		t.Fatal("pending reconnect timer was not stopped")
	}
	clk.fire(0) // a timer that already fired must not reopen a closed client
	if c.State() != StateDisconnected {
		t.Fatalf("state = %v", c.State())
	}
	if clk.count() != 1 {
		t.Fatalf("timers = %d", clk.count())
	}
}

func TestWrongContentTypeIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	rec := newRecorder()
	clk := &fakeClock{}
	c := New(Config{URL: srv.URL, AfterFunc: clk.AfterFunc, Logger: quietLogger()}, rec)
	c.Start(context.Background())
	defer c.Close()

	rec.wait(t, "error")
	if rec.opens != 0 {
		t.Fatal("non event-stream response counted as open")
	}
}

func TestNamedEventsAreIgnored(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		"event: ping\ndata: {\"payload\":{\"a\":1}}\n\n",
		"data: {\"payload\":{\"a\":2}}\n\n",
	))
	defer srv.Close()

	rec := newRecorder()
	c := New(Config{URL: srv.URL, AfterFunc: (&fakeClock{}).AfterFunc, Logger: quietLogger()}, rec)
	c.Start(context.Background())
	defer c.Close()

	rec.wait(t, "open")
	rec.wait(t, "message")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.msgs) != 1 || string(rec.msgs[0].Payload) != `{"a":2}` {
		t.Fatalf("messages = %+v, want only the unnamed event", rec.msgs)
	}
}

func TestCloseReleasesStartWatcher(t *testing.T) {
	srv := httptest.NewServer(sseHandler())
	defer srv.Close()

	rec := newRecorder()
	c := New(Config{URL: srv.URL, AfterFunc: (&fakeClock{}).AfterFunc, Logger: quietLogger()}, rec)
	c.Start(context.Background())
	rec.wait(t, "open")

	c.Close()
	c.Close()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
	if c.State() != StateDisconnected {
		t.Fatalf("state = %v", c.State())
	}
}
