package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/app"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/metrics"
	"github.com/LeonardoBeccarini/iot_dashboard/pkg/broker"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("dashboard: config: %v", err)
	}

	loc := time.Local
	if cfg.TimeZone != "" {
		if loc, err = time.LoadLocation(cfg.TimeZone); err != nil {
			log.Fatalf("dashboard: time zone %q: %v", cfg.TimeZone, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	dash := app.NewDashboard(app.Config{
		APIBaseURL:      cfg.APIURL,
		StreamPath:      cfg.StreamPath,
		HTTPTimeout:     time.Duration(cfg.TimeoutMs) * time.Millisecond,
		ReconnectDelay:  cfg.ReconnectDelay,
		BreakerFailures: cfg.BreakerFails,
		BreakerOpenFor:  time.Duration(cfg.BreakerOpenMs) * time.Millisecond,
		PrimeLatest:     cfg.PrimeLatest,
		Location:        loc,
		Metrics:         m,
	})

	hub := app.NewHub(nil)
	go hub.Run()
	dash.OnChange(hub.Publish)

	if cfg.MQTT.Enabled {
		client, err := broker.NewConn(ctx, &broker.Config{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			User:     cfg.MQTT.User,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
			CAFile:   cfg.MQTT.CAFile,
			CertFile: cfg.MQTT.CertFile,
			KeyFile:  cfg.MQTT.KeyFile,
		})
		if err != nil {
			log.Printf("dashboard: mqtt feed disabled: %v", err)
		} else {
			feed := app.NewMQTTFeed(broker.NewConsumer(client, cfg.MQTT.Topic, 1, nil), dash, m, nil)
			go func() {
				if err := feed.Run(ctx); err != nil {
					log.Printf("dashboard: mqtt feed: %v", err)
				}
			}()
		}
	}

	dash.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.NewHTTPMux(dash, hub, m),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("dashboard: HTTP listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("dashboard: http server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("dashboard: shutting down...")
	dash.Close()
	hub.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
}
