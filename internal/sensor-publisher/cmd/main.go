package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	sensorPublisher "github.com/LeonardoBeccarini/iot_dashboard/internal/sensor-publisher"
	"github.com/LeonardoBeccarini/iot_dashboard/pkg/broker"
)

func main() {
	host := flag.String("host", "localhost", "MQTT broker host")
	port := flag.Int("port", 1883, "MQTT broker port (8883 for TLS)")
	user := flag.String("user", "", "MQTT user")
	pass := flag.String("password", "", "MQTT password")
	clientID := flag.String("client-id", "RaspberryPiEmulator1", "MQTT client ID, also the device_id")
	topic := flag.String("topic", "rpi/data", "topic to publish on")
	interval := flag.Duration("interval", 5*time.Second, "publish interval")
	ca := flag.String("ca", "", "CA certificate (PEM)")
	cert := flag.String("cert", "", "client certificate (PEM)")
	key := flag.String("key", "", "client private key (PEM)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := broker.NewConn(ctx, &broker.Config{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *pass,
		ClientID: *clientID,
		CAFile:   *ca,
		CertFile: *cert,
		KeyFile:  *key,
	})
	if err != nil {
		log.Fatal(err)
	}

	publisher := broker.NewPublisher(client, *topic, 1)
	generator := sensorPublisher.NewDataGenerator(*clientID, time.Now().UnixNano())
	log.Printf("publisher: starting to publish on %s every %s", *topic, *interval)
	sensorPublisher.NewSensorPublisher(publisher, generator, nil).Start(ctx, *interval)
}
