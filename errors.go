package snipwatch

import (
	"errors"
	"fmt"
)

// ErrSinkNotConfigured is returned by a Notifier whose credentials are absent.
// The delivery is skipped, not failed.
var ErrSinkNotConfigured = errors.New("notification sink not configured")

// MalformedReferenceError is returned when a reference string cannot be parsed.
type MalformedReferenceError struct {
	Reference string
	Reason    string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed reference %q: %s", e.Reference, e.Reason)
}

// DuplicateReferenceError is returned when adding a snippet that is already monitored.
type DuplicateReferenceError struct {
	Reference string
	ID        string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("snippet already monitored: %s (id %s)", e.Reference, e.ID)
}

// FetchError describes a failed raw content fetch. It is recoverable: the
// snippet is retried on the next cycle.
type FetchError struct {
	URL        string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RangeError is returned when the requested lines do not exist in the fetched text.
type RangeError struct {
	Start     int
	End       int
	LineCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("lines L%d-L%d out of range (file has %d lines)", e.Start, e.End, e.LineCount)
}

// SummaryUnavailableError wraps any summarizer failure. It never blocks delivery.
type SummaryUnavailableError struct {
	Backend string
	Err     error
}

func (e *SummaryUnavailableError) Error() string {
	return fmt.Sprintf("%s: summary unavailable: %v", e.Backend, e.Err)
}

func (e *SummaryUnavailableError) Unwrap() error { return e.Err }

// DeliveryError describes a failed notification delivery.
type DeliveryError struct {
	Sink       string
	StatusCode int // 0 for transport failures
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: delivery failed with status %d: %s", e.Sink, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: delivery failed: %v", e.Sink, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ConfigurationError prevents the monitoring loop from starting.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
