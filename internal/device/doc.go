// Package device provides the sensor registry and per-device control
// state for ACS Control Core.
//
// # Registry
//
// Devices are keyed by hardware address (MAC) because the address is
// what devices put on the wire: it is the middle segment of every
// ACS_Control/<mac>/<suffix> topic. Registration normally happens
// implicitly on first telemetry via Repository.EnsureRegistered.
//
// # Logical delete
//
// Devices are never physically deleted. Repository.Delete flips the
// active flag instead, so historical measurements and the state row
// always reference a valid registry entry. There is deliberately no
// operation that issues a SQL DELETE against the devices table.
//
// # Control state
//
// State carries the thresholds and season a device should apply, plus
// the boiler relay flag that stays server-side. StateRepository.Upsert
// bumps last_updated on every write; the change-detection scheduler
// compares that timestamp against its in-memory watermark to decide
// which devices need a configuration push.
package device
