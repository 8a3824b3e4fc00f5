package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Upstream wraps JSON GETs against the dashboard API behind a circuit breaker.
type Upstream struct {
	name    string
	base    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

const defaultBreakerFailures = 5

// StatusError is a non-2xx answer. Decoded reports whether its body was JSON
// and has been decoded into the caller's value anyway.
type StatusError struct {
	Code    int
	Decoded bool
}

func (e *StatusError) Error() string { return fmt.Sprintf("upstream status %d", e.Code) }

// decodedBody reports whether err still left a usable response body in out.
func decodedBody(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Decoded
}

func newBreaker(name string, fails int, openFor time.Duration) *gobreaker.CircuitBreaker {
	if fails < 1 {
		fails = defaultBreakerFailures
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

// NewUpstream builds a client for base (scheme://host[:port]).
func NewUpstream(name, base string, timeout time.Duration, breaker *gobreaker.CircuitBreaker) *Upstream {
	return &Upstream{
		name:    name,
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

// GetJSON fetches base+path?query and decodes the body into out.
func (u *Upstream) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := u.base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	_, err := u.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := u.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request error: %w", err)
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			se := &StatusError{Code: resp.StatusCode}
			if strings.Contains(resp.Header.Get("Content-Type"), "json") {
				se.Decoded = dec.Decode(out) == nil
			}
			return nil, se
		}
		if err := dec.Decode(out); err != nil {
			return nil, fmt.Errorf("decode error: %w", err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: breaker open: %w", u.name, path, err)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", u.name, path, err)
	}
	return nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + strings.TrimLeft(path, "/")
}
