package messages

// LiveReading holds the quick stats shown for the latest pushed payload.
// It is rebuilt from scratch on every push.
type LiveReading struct {
	DeviceID  string `json:"device_id"`
	Value     string `json:"value"`
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}
