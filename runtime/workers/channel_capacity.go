package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelUsage struct {
	Name     string
	Capacity int
	Length   int
}

// Low reports whether at most threshold slots are left. Unbuffered
// channels are never low.
func (u ChannelUsage) Low(threshold int) bool {
	return u.Capacity > 0 && u.Capacity-u.Length <= threshold
}

// ChannelCapacityWorker periodically samples the length and capacity of
// the given channels and warns when one of them is close to full, which
// means publishers are about to hit the ingestion timeout.
// Reading len and cap is non-blocking and does not interfere with other
// goroutines.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel capacity sampling")
			return nil
		case <-ticker.C:
			for _, usage := range w.Sample() {
				w.log.Debug("Channel usage", "name", usage.Name, "length", usage.Length, "capacity", usage.Capacity)
				if usage.Low(w.lowCapacityThreshold) {
					w.log.Warn("Channel almost full", "name", usage.Name, "capacity_left", usage.Capacity-usage.Length)
				}
			}
		}
	}
}

func (w *ChannelCapacityWorker) Sample() []ChannelUsage {
	var usages []ChannelUsage
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		usages = append(usages, ChannelUsage{Name: nc.Name, Capacity: v.Cap(), Length: v.Len()})
	}
	return usages
}
