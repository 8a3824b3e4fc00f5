package stream

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event is one dispatched server-sent event. Comment lines are returned as
// their own events with Comment set and the raw line (leading ':' included)
// in Data, so keep-alives are observable.
type Event struct {
	ID      string
	Type    string
	Data    string
	Retry   time.Duration
	Comment bool
}

// Reader splits a text/event-stream body into events.
type Reader struct {
	br *bufio.Reader

	data    strings.Builder
	hasData bool
	id      string
	typ     string
	retry   time.Duration
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next blocks until a full event or comment is read. A partial event at end
// of input is discarded and io.EOF returned.
func (r *Reader) Next() (Event, error) {
	for {
		line, err := r.br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if ev, ok := r.dispatch(); ok {
				return ev, nil
			}
		case strings.HasPrefix(line, ":"):
			return Event{Data: line, Comment: true}, nil
		default:
			r.field(line)
		}

		if err == io.EOF {
			return Event{}, io.EOF
		}
	}
}

func (r *Reader) field(line string) {
	name, value := line, ""
	if i := strings.IndexByte(line, ':'); i >= 0 {
		name, value = line[:i], strings.TrimPrefix(line[i+1:], " ")
	}
	switch name {
	case "data":
		if r.hasData {
			r.data.WriteByte('\n')
		}
		r.data.WriteString(value)
		r.hasData = true
	case "event":
		r.typ = value
	case "id":
		r.id = value
	case "retry":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			r.retry = time.Duration(ms) * time.Millisecond
		}
	}
}

func (r *Reader) dispatch() (Event, bool) {
	defer func() {
		r.data.Reset()
		r.hasData = false
		r.typ = ""
	}()
	if !r.hasData {
		return Event{}, false
	}
	typ := r.typ
	if typ == "" {
		typ = "message"
	}
	return Event{ID: r.id, Type: typ, Data: r.data.String(), Retry: r.retry}, true
}
