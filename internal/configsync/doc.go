// Package configsync keeps device configuration in step with the store.
//
// Two paths deliver configuration to devices:
//
//   - Pull: a device publishes "1" to ACS_Control/<mac>/ConfigRequest
//     (typically at boot) and Service replies on .../ConfigResponse.
//   - Push: Scheduler polls the store and publishes to .../ConfigUpdate
//     for any device whose state changed since the last push.
//
// Both paths send the full current {tempMin, tempMax, season}; messages
// are idempotent overwrites, so ordering between a concurrent response
// and push does not matter. The boiler relay flag never leaves the
// server on either path.
//
// Router is the inbound counterpart: it classifies every subscribed
// message as either a config request or a telemetry submission and
// dispatches accordingly.
package configsync
