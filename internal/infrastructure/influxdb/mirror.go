package influxdb

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/dmorante/acs-control-core/internal/telemetry"
)

// Write mirrors one accepted measurement to InfluxDB.
//
// Implements telemetry.Mirror. The point carries the SQLite-assigned
// timestamp so both stores agree on when the sample happened. The write
// itself is batched and non-blocking; only the disconnected case is
// reported synchronously, actual transmission failures arrive via the
// SetOnError callback.
func (c *Client) Write(_ context.Context, m *telemetry.Measurement) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	fields := map[string]interface{}{
		"temperature": m.Temperature,
	}
	if m.Humidity != nil {
		fields["humidity"] = *m.Humidity
	}
	if m.Battery != nil {
		fields["battery"] = *m.Battery
	}

	point := write.NewPoint(
		"telemetry",
		map[string]string{
			"mac": m.MAC,
		},
		fields,
		m.Timestamp,
	)

	c.writeAPI.WritePoint(point)
	return nil
}
