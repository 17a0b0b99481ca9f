package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device registry persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByMAC retrieves a device by hardware address.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByMAC(ctx context.Context, mac string) (*Device, error)

	// List retrieves all devices, active and inactive, ordered by name.
	List(ctx context.Context) ([]Device, error)

	// ListActiveMACs retrieves the hardware addresses of all active devices.
	// This is the scheduler's per-tick device enumeration.
	ListActiveMACs(ctx context.Context) ([]string, error)

	// Create inserts a new device.
	// Returns ErrDeviceExists if the MAC is already registered.
	Create(ctx context.Context, device *Device) error

	// EnsureRegistered creates a minimal registry entry for a MAC if one
	// does not already exist. Used to auto-register devices on first
	// telemetry. An existing row (active or not) is left untouched.
	EnsureRegistered(ctx context.Context, mac string) error

	// Update modifies an existing device's descriptive fields.
	// Returns ErrDeviceNotFound if the device does not exist.
	Update(ctx context.Context, device *Device) error

	// Delete logically deletes a device by flipping active to 0.
	// Rows are never physically removed: measurements and state keep a
	// valid parent. Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, mac string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByMAC retrieves a device by hardware address.
func (r *SQLiteRepository) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	query := `
		SELECT mac, name, description, location, registered_at, active
		FROM devices
		WHERE mac = ?`

	row := r.db.QueryRowContext(ctx, query, mac)
	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by mac: %w", err)
	}
	return device, nil
}

// List retrieves all devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	query := `
		SELECT mac, name, description, location, registered_at, active
		FROM devices
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// ListActiveMACs retrieves the hardware addresses of all active devices.
func (r *SQLiteRepository) ListActiveMACs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT mac FROM devices WHERE active = 1 ORDER BY mac")
	if err != nil {
		return nil, fmt.Errorf("querying active devices: %w", err)
	}
	defer rows.Close()

	var macs []string
	for rows.Next() {
		var mac string
		if err := rows.Scan(&mac); err != nil {
			return nil, fmt.Errorf("scanning mac: %w", err)
		}
		macs = append(macs, mac)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating active devices: %w", err)
	}

	return macs, nil
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	if err := ValidateDevice(device); err != nil {
		return err
	}

	if device.RegisteredAt.IsZero() {
		device.RegisteredAt = time.Now().UTC()
	}

	query := `
		INSERT INTO devices (mac, name, description, location, registered_at, active)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		device.MAC,
		device.Name,
		nullableString(device.Description),
		nullableString(device.Location),
		device.RegisteredAt.Format(time.RFC3339),
		boolToInt(device.Active),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDeviceExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}

	return nil
}

// EnsureRegistered creates a minimal registry entry for an unknown MAC.
// The device is named by its address; operators can rename it later.
func (r *SQLiteRepository) EnsureRegistered(ctx context.Context, mac string) error {
	if err := ValidateMAC(mac); err != nil {
		return err
	}

	query := `
		INSERT INTO devices (mac, name, registered_at, active)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (mac) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		mac, mac, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("registering device: %w", err)
	}

	return nil
}

// Update modifies an existing device's descriptive fields.
// The active flag is managed through Delete, not here.
func (r *SQLiteRepository) Update(ctx context.Context, device *Device) error {
	if err := ValidateDevice(device); err != nil {
		return err
	}

	query := `
		UPDATE devices
		SET name = ?, description = ?, location = ?
		WHERE mac = ?`

	result, err := r.db.ExecContext(ctx, query,
		device.Name,
		nullableString(device.Description),
		nullableString(device.Location),
		device.MAC,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Delete logically deletes a device. The row, its measurements and its
// state all survive; the device simply stops receiving config pushes.
func (r *SQLiteRepository) Delete(ctx context.Context, mac string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET active = 0 WHERE mac = ?", mac)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a row or rows result into a Device.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var description, location sql.NullString
	var registeredAt string
	var active int

	err := scanner.Scan(
		&d.MAC,
		&d.Name,
		&description,
		&location,
		&registeredAt,
		&active,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		d.Description = &description.String
	}
	if location.Valid {
		d.Location = &location.String
	}
	d.Active = active != 0

	d.RegisteredAt, err = time.Parse(time.RFC3339, registeredAt)
	if err != nil {
		return nil, fmt.Errorf("parsing registered_at: %w", err)
	}

	return &d, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
