package sensor_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/LeonardoBeccarini/iot_dashboard/pkg/broker"
)

type SensorPublisher struct {
	generator *DataGenerator
	publisher broker.IPublisher
	log       *log.Logger
}

func NewSensorPublisher(publisher broker.IPublisher, gen *DataGenerator, logger *log.Logger) *SensorPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &SensorPublisher{generator: gen, publisher: publisher, log: logger}
}

// Start publishes one reading per interval until ctx ends, then closes the
// publisher. A failed publish is logged and the next tick carries on.
func (s *SensorPublisher) Start(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	defer s.publisher.Close()

	for {
		select {
		case <-ctx.Done():
			s.log.Printf("publisher: shutting down...")
			return
		case <-t.C:
			if err := s.PublishOnce(); err != nil {
				s.log.Printf("publisher: publish error: %v", err)
			}
		}
	}
}

func (s *SensorPublisher) PublishOnce() error {
	m := s.generator.Next()
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.log.Printf("publisher: publishing %s", payload)
	return s.publisher.Publish(payload)
}
