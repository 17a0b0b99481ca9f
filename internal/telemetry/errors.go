package telemetry

import "errors"

// Ingestion errors. Telemetry is at-most-once: any of these causes the
// message to be logged and dropped, never retried or buffered. Devices
// sample frequently enough that the next reading covers the gap.
var (
	// ErrMalformedPayload is returned when the payload is not valid JSON
	// or not an object.
	ErrMalformedPayload = errors.New("telemetry: malformed payload")

	// ErrInvalidAddress is returned when the topic's MAC segment is not a
	// well-formed hardware address.
	ErrInvalidAddress = errors.New("telemetry: invalid address")

	// ErrMissingField is returned when a required field (temperature) is
	// absent from the payload.
	ErrMissingField = errors.New("telemetry: missing required field")

	// ErrConstraint is returned when the store rejects an insert due to a
	// constraint violation (e.g. foreign key).
	ErrConstraint = errors.New("telemetry: store constraint violation")

	// ErrPersistenceFailed is returned when the insert fails for any
	// other reason.
	ErrPersistenceFailed = errors.New("telemetry: persistence failed")
)
