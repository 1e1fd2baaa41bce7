package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	RoomTTL              time.Duration `env:"ROOM_TTL,default=5m"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	IngestionTimeout     time.Duration `env:"INGESTION_TIMEOUT,default=1s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`
	RoomCodeAttempts     int           `env:"ROOM_CODE_ATTEMPTS,default=10"`
	DebugPort            int           `env:"DEBUG_PORT,default=0"`
}

// Validate rejects values the relay cannot run with.
func (c Config) Validate() error {
	durations := map[string]time.Duration{
		"ROOM_TTL":          c.RoomTTL,
		"SINK_TIMEOUT":      c.SinkTimeout,
		"INGESTION_TIMEOUT": c.IngestionTimeout,
		"RESTART_INTERVAL":  c.RestartInterval,
		"METRIC_INTERVAL":   c.MetricInterval,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	sizes := map[string]int{
		"PORT":                   c.Port,
		"BUFFER_SIZE":            c.BufferSize,
		"CONNECTION_BUFFER_SIZE": c.ConnectionBufferSize,
		"ROOM_CODE_ATTEMPTS":     c.RoomCodeAttempts,
	}
	for name, n := range sizes {
		if n <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, n)
		}
	}
	if c.LowCapacityThreshold < 0 {
		return fmt.Errorf("LOW_CAPACITY_THRESHOLD must not be negative, got %d", c.LowCapacityThreshold)
	}
	if c.DebugPort < 0 || c.DebugPort == c.Port {
		return fmt.Errorf("DEBUG_PORT must be 0 or a free port other than PORT, got %d", c.DebugPort)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
