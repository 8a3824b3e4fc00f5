package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	APIURL         string        `yaml:"api_url"`
	StreamPath     string        `yaml:"stream_path"`
	TimeoutMs      int           `yaml:"timeout_ms"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PrimeLatest    bool          `yaml:"prime_latest"`
	TimeZone       string        `yaml:"time_zone"`

	BreakerFails  int `yaml:"breaker_fails"`
	BreakerOpenMs int `yaml:"breaker_open_ms"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig enables the direct broker feed (off by default).
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	CAFile   string `yaml:"ca_file"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}

// loadConfig reads .env (if present), then the environment, then the YAML
// file named by DASH_CONFIG, whose keys win over the environment.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "8090"),
		APIURL:         getenv("DASH_API_URL", "http://localhost:5000"),
		StreamPath:     getenv("DASH_STREAM_PATH", "/api/stream"),
		TimeoutMs:      getenvInt("TIMEOUT_MS", 5000),
		ReconnectDelay: getenvDuration("DASH_RECONNECT_DELAY", 5*time.Second),
		PrimeLatest:    getenvBool("DASH_PRIME_LATEST", false),
		TimeZone:       getenv("TZ", ""),
		BreakerFails:   getenvInt("CB_FAILS", 5),
		BreakerOpenMs:  getenvInt("CB_OPEN_MS", 10000),
		MQTT: MQTTConfig{
			Enabled:  getenvBool("MQTT_ENABLED", false),
			Host:     getenv("MQTT_ENDPOINT", "localhost"),
			Port:     getenvInt("MQTT_PORT", 1883),
			User:     getenv("MQTT_USER", ""),
			Password: getenv("MQTT_PASSWORD", ""),
			ClientID: getenv("MQTT_CLIENT_ID", "WebDashboard"),
			Topic:    getenv("MQTT_TOPIC", "rpi/data"),
			CAFile:   getenv("MQTT_CA_PATH", ""),
			CertFile: getenv("MQTT_CERT_PATH", ""),
			KeyFile:  getenv("MQTT_KEY_PATH", ""),
		},
	}

	if path := getenv("DASH_CONFIG", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("DASH_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("TIMEOUT_MS must be positive")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	if c.MQTT.Enabled && c.MQTT.Topic == "" {
		return fmt.Errorf("MQTT_TOPIC is required when MQTT_ENABLED")
	}
	return nil
}
