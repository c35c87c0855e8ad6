// Package config reads service settings from the environment, optionally
// populated from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr string

	MongoURI string
	MongoDB  string

	JWTSecret         string
	JWTExpiry         time.Duration
	AuthLatency       time.Duration
	AcceptAnyPassword bool
	DemoPassword      string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustProxyHeaders bool
}

// Load reads the given .env files (".env" when none are given) and then
// the environment. Missing files are ignored; variables already set in the
// environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := Config{
		HTTPAddr:          getString("HTTP_ADDR", ":8080"),
		MongoURI:          getString("MONGO_URI", ""),
		MongoDB:           getString("MONGO_DB", "ridebooking"),
		JWTSecret:         getString("JWT_SECRET", ""),
		JWTExpiry:         getDuration("JWT_EXPIRY", 24*time.Hour, &errs),
		AuthLatency:       getDuration("AUTH_LATENCY", 800*time.Millisecond, &errs),
		AcceptAnyPassword: getBool("AUTH_ACCEPT_ANY_PASSWORD", false, &errs),
		DemoPassword:      getString("DEMO_PASSWORD", "password123"),
		MQTTBroker:        getString("MQTT_BROKER", ""),
		MQTTClientID:      getString("MQTT_CLIENT_ID", "ride-booking"),
		MQTTTopicPrefix:   strings.TrimSuffix(getString("MQTT_TOPIC_PREFIX", "ridebooking"), "/"),
		LogLevel:          getString("LOG_LEVEL", "info"),
		LogFormat:         getString("LOG_FORMAT", "text"),
		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 20, &errs),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute, &errs),
		TrustProxyHeaders: getBool("RATE_LIMIT_TRUST_PROXY", false, &errs),
	}
	if cfg.AuthLatency < 0 {
		errs = append(errs, fmt.Errorf("AUTH_LATENCY must not be negative"))
	}
	if cfg.RateLimitRequests < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetupLogging applies the configured level and format to the standard logger.
func (c Config) SetupLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch c.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func getBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}
