// Package telemetry ingests and stores sensor measurements.
//
// The pipeline runs once per inbound Temperatura message: decode,
// validate, insert. Timestamps are server-assigned because device
// clocks are not trusted. Delivery is at-most-once by policy: a failed
// message is logged and dropped, never retried, since the next sample
// arrives within the publishing cycle anyway.
//
// Accepted measurements can optionally be mirrored to a secondary
// time-series store for dashboarding; the SQLite row remains the source
// of truth and mirror failures never reject a sample.
package telemetry
