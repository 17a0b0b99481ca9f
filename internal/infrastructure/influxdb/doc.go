// Package influxdb provides the optional telemetry mirror for ACS
// Control Core.
//
// When enabled in config, every accepted measurement is also written to
// an InfluxDB v2 bucket, tagged by device address. This exists purely
// for dashboarding (Grafana and friends); SQLite remains the system of
// record and the core runs fine with the mirror disabled or down.
//
// Writes are batched and asynchronous. A mirror failure never rejects a
// measurement: the ingestion pipeline logs it and moves on.
package influxdb
