package messages

import (
	"bytes"
	"encoding/json"
)

// StreamEnvelope is the body of a push event on /api/stream and the "data"
// object of /api/latest. Topic and ReceivedAt are set by the server and not
// used by the dashboard.
type StreamEnvelope struct {
	Topic      string          `json:"topic,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  *float64        `json:"timestamp,omitempty"`
	ReceivedAt string          `json:"received_at,omitempty"`
}

// HasPayload reports whether the envelope carries a non-null payload.
func (e StreamEnvelope) HasPayload() bool {
	p := bytes.TrimSpace(e.Payload)
	return len(p) > 0 && !bytes.Equal(p, []byte("null"))
}

// LatestResponse is returned by GET /api/latest.
type LatestResponse struct {
	Success   bool            `json:"success"`
	Data      *StreamEnvelope `json:"data,omitempty"`
	Timestamp *float64        `json:"timestamp,omitempty"`
	Message   string          `json:"message,omitempty"`
}
