package messages

// HistoricalPoint is one row of GET /api/historical. Value is nil when the
// stored reading had no sensor value.
type HistoricalPoint struct {
	FormattedTime string   `json:"formatted_time"`
	DeviceID      string   `json:"device_id"`
	Message       string   `json:"message,omitempty"`
	Value         *float64 `json:"value"`
	Timestamp     int64    `json:"timestamp,omitempty"`
	Status        string   `json:"status,omitempty"`
}

type HistoricalResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count,omitempty"`
	Data    []HistoricalPoint `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}
