package source

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// DefaultSensorGroups lists CPU sensor groups in order of preference:
// Intel, AMD (two drivers), then the Raspberry Pi SoC zone.
var DefaultSensorGroups = []string{"coretemp", "k10temp", "zenpower", "cpu_thermal"}

// Temperature reports the first reading of the first sensor group present.
type Temperature struct {
	Groups  []string
	sensors func(ctx context.Context) ([]host.TemperatureStat, error)
}

func NewTemperature() *Temperature {
	return &Temperature{Groups: DefaultSensorGroups, sensors: host.SensorsTemperaturesWithContext}
}

// Sample returns degrees Celsius. A host without any of the expected groups
// yields ErrUnavailable.
func (t *Temperature) Sample(ctx context.Context) (float64, error) {
	temps, err := t.sensors(ctx)
	// gopsutil returns partial results alongside warnings for unreadable zones.
	if err != nil && len(temps) == 0 {
		if isNotSupported(err) {
			return 0, ErrUnavailable
		}
		return 0, fmt.Errorf("source: sensors: %w", err)
	}
	for _, group := range t.Groups {
		for _, ts := range temps {
			if !strings.HasPrefix(strings.ToLower(ts.SensorKey), group) {
				continue
			}
			if ts.Temperature <= 0 || math.IsNaN(ts.Temperature) || math.IsInf(ts.Temperature, 0) {
				continue
			}
			return ts.Temperature, nil
		}
	}
	return 0, ErrUnavailable
}

var _ Source[float64] = (*Temperature)(nil)
