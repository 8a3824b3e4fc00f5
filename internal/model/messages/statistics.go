package messages

import "encoding/json"

// Statistics keeps the numbers as the server wrote them so the panel can show
// them verbatim.
type Statistics struct {
	TotalReadings json.Number `json:"total_readings"`
	AverageValue  json.Number `json:"average_value"`
	MaxValue      json.Number `json:"max_value"`
	MinValue      json.Number `json:"min_value"`
}

type StatsResponse struct {
	Success bool        `json:"success"`
	Stats   *Statistics `json:"stats,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}
