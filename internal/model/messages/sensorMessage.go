package messages

// SensorMessage is what the field device publishes on the sensor topic.
// The value key really is "sendor data" (with a space) on the wire.
type SensorMessage struct {
	DeviceID   string `json:"device_id"`
	Timestamp  int64  `json:"timestamp"`
	MessageID  int    `json:"message_id"`
	SensorData int    `json:"sendor data"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}
