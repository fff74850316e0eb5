package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned by stores when no account matches.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnknownNetwork is returned for a network name with no descriptor.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrEmptyRange is reported when a spreadsheet range returns no rows.
	ErrEmptyRange = errors.New("range returned no rows")
)

// MetricNotFoundError reports a metric key that the network does not track.
type MetricNotFoundError struct {
	Network Network
	Metric  string
}

func (e *MetricNotFoundError) Error() string {
	return fmt.Sprintf("metric %q is not tracked for network %s", e.Metric, e.Network)
}

// UpstreamFetchError wraps failures of the spreadsheet source or of the
// OAuth token exchange.
type UpstreamFetchError struct {
	Source string
	Range  string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	if e.Range != "" {
		return fmt.Sprintf("%s fetch %q failed: %v", e.Source, e.Range, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// PersistenceError reports that saving imported accounts failed. Records
// already saved stay saved.
type PersistenceError struct {
	Failed int
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting accounts failed (%d failures): %v", e.Failed, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ValidationError represents a malformed client request.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
