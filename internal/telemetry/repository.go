package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for measurement persistence.
type Repository interface {
	// Insert stores a new measurement. The timestamp is assigned here,
	// server-side, and written back to m. Foreign key violations map to
	// ErrConstraint.
	Insert(ctx context.Context, m *Measurement) error

	// List retrieves measurements joined with device names, newest
	// first, for the report API's pagination.
	List(ctx context.Context, offset, limit int) ([]Record, error)

	// Count returns the total number of stored measurements.
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed measurement repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores a new measurement with a server-assigned UTC timestamp.
func (r *SQLiteRepository) Insert(ctx context.Context, m *Measurement) error {
	m.Timestamp = time.Now().UTC()

	query := `
		INSERT INTO measurements (mac, timestamp, temperature, humidity, battery)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		m.MAC,
		m.Timestamp.Format(time.RFC3339),
		m.Temperature,
		nullableFloat(m.Humidity),
		nullableFloat(m.Battery),
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %w", ErrConstraint, err)
		}
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		m.ID = id
	}

	return nil
}

// List retrieves a page of measurements, newest first, with the owning
// device's name attached. The join is LEFT so a measurement is never
// hidden by a registry anomaly.
func (r *SQLiteRepository) List(ctx context.Context, offset, limit int) ([]Record, error) {
	query := `
		SELECT m.id, m.mac, m.timestamp, m.temperature, m.humidity, m.battery, d.name
		FROM measurements m
		LEFT JOIN devices d ON d.mac = m.mac
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var humidity, battery sql.NullFloat64
		var deviceName sql.NullString
		var timestamp string

		err := rows.Scan(&rec.ID, &rec.MAC, &timestamp,
			&rec.Temperature, &humidity, &battery, &deviceName)
		if err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}

		if humidity.Valid {
			rec.Humidity = &humidity.Float64
		}
		if battery.Valid {
			rec.Battery = &battery.Float64
		}
		if deviceName.Valid {
			rec.DeviceName = &deviceName.String
		}

		rec.Timestamp, err = time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating measurements: %w", err)
	}

	return records, nil
}

// Count returns the total number of stored measurements.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM measurements").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting measurements: %w", err)
	}
	return count, nil
}

// nullableFloat returns a sql.NullFloat64 for optional float pointers.
func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// isConstraintError checks if an error is a SQLite constraint violation.
func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint")
}
