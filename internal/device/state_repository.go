package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateRepository defines the interface for device state persistence.
type StateRepository interface {
	// Get retrieves the state row for a device.
	// Returns ErrStateNotFound if the device has no state row.
	Get(ctx context.Context, mac string) (*State, error)

	// Upsert inserts or replaces the state row for a device and bumps
	// LastUpdated to the current UTC time. The scheduler's change
	// detection keys off this timestamp.
	Upsert(ctx context.Context, state *State) error

	// LastUpdated retrieves only the watermark timestamp for a device.
	// Returns ErrStateNotFound if the device has no state row.
	LastUpdated(ctx context.Context, mac string) (time.Time, error)
}

// SQLiteStateRepository implements StateRepository using SQLite.
type SQLiteStateRepository struct {
	db *sql.DB
}

// NewSQLiteStateRepository creates a new SQLite-backed state repository.
func NewSQLiteStateRepository(db *sql.DB) *SQLiteStateRepository {
	return &SQLiteStateRepository{db: db}
}

// Get retrieves the state row for a device.
func (r *SQLiteStateRepository) Get(ctx context.Context, mac string) (*State, error) {
	query := `
		SELECT mac, temp_min, temp_max, season, boiler_state, last_updated
		FROM device_states
		WHERE mac = ?`

	row := r.db.QueryRowContext(ctx, query, mac)

	var s State
	var tempMin, tempMax sql.NullFloat64
	var season sql.NullString
	var boilerState sql.NullInt64
	var lastUpdated string

	err := row.Scan(&s.MAC, &tempMin, &tempMax, &season, &boilerState, &lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("querying device state: %w", err)
	}

	if tempMin.Valid {
		s.TempMin = &tempMin.Float64
	}
	if tempMax.Valid {
		s.TempMax = &tempMax.Float64
	}
	if season.Valid {
		v := Season(season.String)
		s.Season = &v
	}
	if boilerState.Valid {
		v := boilerState.Int64 != 0
		s.BoilerState = &v
	}

	// RFC3339Nano also parses plain RFC3339 values, so rows written
	// before sub-second storage (or by the schema default) still scan.
	s.LastUpdated, err = time.Parse(time.RFC3339Nano, lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parsing last_updated: %w", err)
	}

	return &s, nil
}

// Upsert inserts or replaces the state row for a device.
//
// Every call bumps last_updated, even when the configuration values are
// unchanged; the scheduler treats any bump as a change and re-pushes the
// full state, which is harmless because pushes are full-state overwrites.
func (r *SQLiteStateRepository) Upsert(ctx context.Context, state *State) error {
	if err := ValidateState(state); err != nil {
		return err
	}

	// Nanosecond storage: two writes landing in the same wall-clock
	// second must still compare as distinct watermarks, or the second
	// write's configuration would never be pushed.
	state.LastUpdated = time.Now().UTC()

	query := `
		INSERT INTO device_states (mac, temp_min, temp_max, season, boiler_state, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (mac) DO UPDATE SET
			temp_min = excluded.temp_min,
			temp_max = excluded.temp_max,
			season = excluded.season,
			boiler_state = excluded.boiler_state,
			last_updated = excluded.last_updated`

	_, err := r.db.ExecContext(ctx, query,
		state.MAC,
		nullableFloat(state.TempMin),
		nullableFloat(state.TempMax),
		nullableSeason(state.Season),
		nullableBool(state.BoilerState),
		state.LastUpdated.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting device state: %w", err)
	}

	return nil
}

// LastUpdated retrieves only the watermark timestamp for a device.
func (r *SQLiteStateRepository) LastUpdated(ctx context.Context, mac string) (time.Time, error) {
	var lastUpdated string
	err := r.db.QueryRowContext(ctx,
		"SELECT last_updated FROM device_states WHERE mac = ?", mac).Scan(&lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrStateNotFound
		}
		return time.Time{}, fmt.Errorf("querying last_updated: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, lastUpdated)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last_updated: %w", err)
	}

	return t, nil
}

// nullableFloat returns a sql.NullFloat64 for optional float pointers.
func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// nullableSeason returns a sql.NullString for optional season pointers.
func nullableSeason(s *Season) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

// nullableBool returns a sql.NullInt64 for optional bool pointers.
func nullableBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	var v int64
	if *b {
		v = 1
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
