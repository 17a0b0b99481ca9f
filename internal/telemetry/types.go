package telemetry

import "time"

// Measurement is one telemetry sample from a device. Rows are immutable
// after insert; the timestamp is assigned by the server, never taken
// from the device payload.
type Measurement struct {
	ID  int64  `json:"id"`
	MAC string `json:"mac"`

	// Timestamp is server-assigned UTC at insert time. Device clocks are
	// not trusted (most nodes have no RTC).
	Timestamp time.Time `json:"timestamp"`

	Temperature float64  `json:"temperature"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Battery     *float64 `json:"battery,omitempty"`
}

// Record is a measurement joined with its device's display name, as
// served by the report API. DeviceName is nil when the registry row has
// no name (should not happen, the join is defensive LEFT).
type Record struct {
	Measurement
	DeviceName *string `json:"device_name,omitempty"`
}

// payload is the inbound telemetry wire format. All fields are pointers
// so presence can be distinguished from zero: a reading of 0.0 degrees
// is valid, a missing temperature is not.
type payload struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Battery     *float64 `json:"battery"`
}
