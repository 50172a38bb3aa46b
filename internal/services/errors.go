package services

import (
	"errors"
	"fmt"
)

var (
	// ErrClusterConfig is returned before any clustering work when
	// maxStopsPerRoute is below 1.
	ErrClusterConfig = errors.New("maxStopsPerRoute must be at least 1")

	// ErrNoRoutableStops is returned when a request has zero
	// successfully geocoded non-depot stops.
	ErrNoRoutableStops = errors.New("no successfully geocoded stops to route")

	// ErrUnmatchedStop is returned when a stop without coordinates
	// reaches a stage that requires them.
	ErrUnmatchedStop = errors.New("stop has not been successfully geocoded")
)

// ClusterFailure reports that both optimization strategies were
// exhausted for one cluster. Sibling clusters are unaffected.
type ClusterFailure struct {
	ClusterID int
	StopCount int
	Err       error
}

func (f ClusterFailure) Error() string {
	return fmt.Sprintf("cluster %d (%d stops): routing failed: %v", f.ClusterID, f.StopCount, f.Err)
}

func (f ClusterFailure) Unwrap() error { return f.Err }
