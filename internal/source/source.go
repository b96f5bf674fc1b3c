// Package source wraps OS-exposed counters behind fallible adapters. Every
// adapter reports failure through its error return and never panics past its
// own boundary. ErrUnavailable marks an expected absence (missing tool,
// missing sensor group, unsupported platform); any other error is a transient
// failure of a single sample.
package source

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable reports that a metric cannot be obtained on this host. It is
// not an error condition and should be rendered as "N/A".
var ErrUnavailable = errors.New("source: unavailable")

// Source is the contract shared by all adapters.
type Source[T any] interface {
	Sample(ctx context.Context) (T, error)
}

// isNotSupported reports whether err is gopsutil's way of saying the
// platform has no implementation for a counter.
func isNotSupported(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not implemented") || strings.Contains(msg, "not supported")
}
