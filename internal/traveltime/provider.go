package traveltime

import (
	"context"
	"errors"
)

// ErrUnavailable means the routing backend could not produce a value
// (network failure, timeout, unroutable pair). Callers must treat it as
// "travel time unknown", never as zero.
var ErrUnavailable = errors.New("travel time unavailable")

type Coordinate struct {
	Lat float64
	Lng float64
}

type Estimate struct {
	Seconds int
	Meters  int
}

// DistanceProvider is the single capability the engine needs from the
// outside world: travel seconds and meters between two coordinates. A
// mapping API, a static table or a test double all satisfy it.
type DistanceProvider interface {
	Distance(ctx context.Context, from, to Coordinate) (Estimate, error)
}
