package model

import "fmt"

// Status is the overall health indicator shown next to the title.
type Status int

const (
	StatusMonitoring Status = iota
	StatusHighLoad
	StatusDegraded
)

// HighLoadThreshold is the 1-minute load average above which the status
// switches to StatusHighLoad.
const HighLoadThreshold = 5.0

func (s Status) String() string {
	switch s {
	case StatusMonitoring:
		return "monitoring"
	case StatusHighLoad:
		return "high load"
	case StatusDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, c := range []Status{StatusMonitoring, StatusHighLoad, StatusDegraded} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("model: unknown status %q", b)
}

// StatusOf derives the indicator for a tick. Adapter failures take precedence
// over load.
func StatusOf(failed bool, load1 Opt[float64]) Status {
	if failed {
		return StatusDegraded
	}
	if v, ok := load1.Get(); ok && v > HighLoadThreshold {
		return StatusHighLoad
	}
	return StatusMonitoring
}

// Level buckets a percentage for display colouring.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

// LevelOf maps a 0-100 percentage onto a colour bucket.
func LevelOf(pct float64) Level {
	switch {
	case pct > 85:
		return LevelCritical
	case pct > 70:
		return LevelWarning
	default:
		return LevelNormal
	}
}
