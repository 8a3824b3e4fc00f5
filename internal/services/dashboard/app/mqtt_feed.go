package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/metrics"
	"github.com/LeonardoBeccarini/iot_dashboard/pkg/broker"
	"github.com/LeonardoBeccarini/iot_dashboard/pkg/dedup"
)

var errInvalidPayload = errors.New("mqtt: payload is not valid JSON")

// MQTTFeed reads the sensor topic straight from the broker and hands each
// payload to the live feed, wrapped the way the dashboard server wraps
// messages on its push stream.
type MQTTFeed struct {
	consumer broker.IConsumer
	sink     interface{ OnMessage(msg.StreamEnvelope) }
	deduper  *dedup.Deduper
	metrics  *metrics.Metrics
	log      *log.Logger
	now      func() time.Time
}

func NewMQTTFeed(consumer broker.IConsumer, sink interface{ OnMessage(msg.StreamEnvelope) }, m *metrics.Metrics, logger *log.Logger) *MQTTFeed {
	if logger == nil {
		logger = log.Default()
	}
	f := &MQTTFeed{
		consumer: consumer,
		sink:     sink,
		deduper:  dedup.New(2*time.Minute, 10000),
		metrics:  m,
		log:      logger,
		now:      time.Now,
	}
	consumer.SetHandler(f.handle)
	return f
}

// Run blocks until ctx is done.
func (f *MQTTFeed) Run(ctx context.Context) error {
	return f.consumer.ConsumeMessage(ctx)
}

func (f *MQTTFeed) handle(_ string, m mqtt.Message) error {
	return f.accept(m.Topic(), m.Payload())
}

func (f *MQTTFeed) accept(topic string, payload []byte) error {
	if !f.deduper.ShouldProcess(dedup.Key(payload)) {
		f.metrics.Duplicate()
		return nil
	}
	if !json.Valid(payload) {
		f.metrics.Malformed()
		return errInvalidPayload
	}
	now := f.now()
	ts := float64(now.Unix())
	f.metrics.Message()
	f.sink.OnMessage(msg.StreamEnvelope{
		Topic:      topic,
		Payload:    json.RawMessage(payload),
		Timestamp:  &ts,
		ReceivedAt: now.Format(time.RFC3339),
	})
	return nil
}
