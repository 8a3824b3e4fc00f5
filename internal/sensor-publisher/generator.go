package sensor_publisher

import (
	"math/rand"
	"sync"
	"time"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
)

const (
	maxReading    = 100
	readingStatus = "active"
	readingText   = "sensor reading"
)

// DataGenerator produces the device readings: a uniform 0..100 value and a
// message id that starts at 1 and increases by one per reading.
type DataGenerator struct {
	mu       sync.Mutex
	deviceID string
	count    int
	rnd      *rand.Rand
	now      func() time.Time
}

func NewDataGenerator(deviceID string, seed int64) *DataGenerator {
	return &DataGenerator{
		deviceID: deviceID,
		rnd:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
	}
}

func (g *DataGenerator) Next() msg.SensorMessage {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.count++
	return msg.SensorMessage{
		DeviceID:   g.deviceID,
		Timestamp:  g.now().Unix(),
		MessageID:  g.count,
		SensorData: g.rnd.Intn(maxReading + 1),
		Status:     readingStatus,
		Message:    readingText,
	}
}
