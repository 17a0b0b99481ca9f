package device

import "time"

// Device represents a registered sensor node, keyed by its hardware
// address. This matches the database schema in
// migrations/20260301_120000_initial_schema.up.sql.
type Device struct {
	// MAC is the colon-separated hardware address, e.g. "AA:BB:CC:DD:EE:FF".
	// It doubles as the device's MQTT topic segment.
	MAC string `json:"mac"`

	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`

	RegisteredAt time.Time `json:"registered_at"`

	// Active is flipped to false on logical delete. Inactive devices keep
	// their measurements and state rows but are excluded from config pushes.
	Active bool `json:"active"`
}

// Season selects the operating mode a device applies to its thresholds.
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonWinter Season = "winter"
)

// AllSeasons returns the recognised season values.
func AllSeasons() []Season {
	return []Season{SeasonSummer, SeasonWinter}
}

// State holds the current control configuration for a device.
// At most one row per device; every write bumps LastUpdated, which the
// change-detection scheduler uses as its watermark source.
//
// All configuration fields are optional: a device may have a state row
// with only some thresholds set. BoilerState is internal bookkeeping and
// is never included in messages sent to devices.
type State struct {
	MAC string `json:"mac"`

	TempMin *float64 `json:"temp_min,omitempty"`
	TempMax *float64 `json:"temp_max,omitempty"`
	Season  *Season  `json:"season,omitempty"`

	BoilerState *bool `json:"boiler_state,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}
