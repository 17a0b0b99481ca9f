package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE devices (
			mac TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			location TEXT,
			registered_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			active INTEGER NOT NULL DEFAULT 1
		) STRICT;

		CREATE TABLE measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mac TEXT NOT NULL REFERENCES devices(mac),
			timestamp TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			temperature REAL NOT NULL,
			humidity REAL,
			battery REAL
		) STRICT;

		CREATE TABLE device_states (
			mac TEXT PRIMARY KEY REFERENCES devices(mac),
			temp_min REAL,
			temp_max REAL,
			season TEXT CHECK (season IN ('summer', 'winter')),
			boiler_state INTEGER,
			last_updated TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

func testDevice(mac string) *Device {
	location := "Salón"
	return &Device{
		MAC:      mac,
		Name:     "Living Room Sensor",
		Location: &location,
		Active:   true,
	}
}

func TestCreateAndGetByMAC(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	want := testDevice("AA:BB:CC:DD:EE:FF")
	if err := repo.Create(ctx, want); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByMAC(ctx, "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("GetByMAC() error = %v", err)
	}

	if got.MAC != want.MAC {
		t.Errorf("MAC = %q, want %q", got.MAC, want.MAC)
	}
	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if got.Location == nil || *got.Location != *want.Location {
		t.Errorf("Location = %v, want %v", got.Location, *want.Location)
	}
	if !got.Active {
		t.Error("Active = false, want true")
	}
	if got.RegisteredAt.IsZero() {
		t.Error("RegisteredAt is zero")
	}
}

func TestGetByMACNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByMAC(context.Background(), "00:00:00:00:00:00")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("AA:BB:CC:DD:EE:FF")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, testDevice("AA:BB:CC:DD:EE:FF"))
	if !errors.Is(err, ErrDeviceExists) {
		t.Errorf("error = %v, want ErrDeviceExists", err)
	}
}

func TestCreateInvalidMAC(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	err := repo.Create(context.Background(), testDevice("not-a-mac"))
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("error = %v, want ErrInvalidAddress", err)
	}
}

func TestEnsureRegistered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("registers unknown device named by mac", func(t *testing.T) {
		if err := repo.EnsureRegistered(ctx, "AA:BB:CC:DD:EE:01"); err != nil {
			t.Fatalf("EnsureRegistered() error = %v", err)
		}

		got, err := repo.GetByMAC(ctx, "AA:BB:CC:DD:EE:01")
		if err != nil {
			t.Fatalf("GetByMAC() error = %v", err)
		}
		if got.Name != "AA:BB:CC:DD:EE:01" {
			t.Errorf("Name = %q, want mac as default name", got.Name)
		}
		if !got.Active {
			t.Error("Active = false, want true")
		}
	})

	t.Run("leaves existing device untouched", func(t *testing.T) {
		want := testDevice("AA:BB:CC:DD:EE:02")
		if err := repo.Create(ctx, want); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := repo.EnsureRegistered(ctx, "AA:BB:CC:DD:EE:02"); err != nil {
			t.Fatalf("EnsureRegistered() error = %v", err)
		}

		got, err := repo.GetByMAC(ctx, "AA:BB:CC:DD:EE:02")
		if err != nil {
			t.Fatalf("GetByMAC() error = %v", err)
		}
		if got.Name != want.Name {
			t.Errorf("Name = %q, want original name %q preserved", got.Name, want.Name)
		}
	})

	t.Run("does not reactivate deleted device", func(t *testing.T) {
		if err := repo.Create(ctx, testDevice("AA:BB:CC:DD:EE:03")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Delete(ctx, "AA:BB:CC:DD:EE:03"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if err := repo.EnsureRegistered(ctx, "AA:BB:CC:DD:EE:03"); err != nil {
			t.Fatalf("EnsureRegistered() error = %v", err)
		}

		got, err := repo.GetByMAC(ctx, "AA:BB:CC:DD:EE:03")
		if err != nil {
			t.Fatalf("GetByMAC() error = %v", err)
		}
		if got.Active {
			t.Error("Active = true, want deleted device to stay inactive")
		}
	})

	t.Run("rejects malformed mac", func(t *testing.T) {
		err := repo.EnsureRegistered(ctx, "bogus")
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("error = %v, want ErrInvalidAddress", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	dev := testDevice("AA:BB:CC:DD:EE:FF")
	if err := repo.Create(ctx, dev); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	desc := "north wall, second floor"
	dev.Name = "Bedroom Sensor"
	dev.Description = &desc
	if err := repo.Update(ctx, dev); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByMAC(ctx, dev.MAC)
	if err != nil {
		t.Fatalf("GetByMAC() error = %v", err)
	}
	if got.Name != "Bedroom Sensor" {
		t.Errorf("Name = %q, want %q", got.Name, "Bedroom Sensor")
	}
	if got.Description == nil || *got.Description != desc {
		t.Errorf("Description = %v, want %q", got.Description, desc)
	}
}

func TestUpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	err := repo.Update(context.Background(), testDevice("00:00:00:00:00:00"))
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestDeleteIsLogical(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	mac := "AA:BB:CC:DD:EE:FF"
	if err := repo.Create(ctx, testDevice(mac)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Give the device a measurement and a state row.
	if _, err := db.Exec(
		"INSERT INTO measurements (mac, temperature) VALUES (?, 21.5)", mac); err != nil {
		t.Fatalf("inserting measurement: %v", err)
	}
	if _, err := db.Exec(
		"INSERT INTO device_states (mac, temp_min) VALUES (?, 18.0)", mac); err != nil {
		t.Fatalf("inserting state: %v", err)
	}

	if err := repo.Delete(ctx, mac); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Row survives with active=0.
	got, err := repo.GetByMAC(ctx, mac)
	if err != nil {
		t.Fatalf("GetByMAC() after delete error = %v", err)
	}
	if got.Active {
		t.Error("Active = true after delete, want false")
	}

	// Measurements and state survive.
	var measurements, states int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM measurements WHERE mac = ?", mac).Scan(&measurements); err != nil {
		t.Fatalf("counting measurements: %v", err)
	}
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM device_states WHERE mac = ?", mac).Scan(&states); err != nil {
		t.Fatalf("counting states: %v", err)
	}
	if measurements != 1 {
		t.Errorf("measurements = %d, want 1 preserved", measurements)
	}
	if states != 1 {
		t.Errorf("device_states = %d, want 1 preserved", states)
	}
}

func TestDeleteNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	err := repo.Delete(context.Background(), "00:00:00:00:00:00")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestListActiveMACs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, mac := range []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02", "AA:BB:CC:DD:EE:03"} {
		if err := repo.Create(ctx, testDevice(mac)); err != nil {
			t.Fatalf("Create(%s) error = %v", mac, err)
		}
	}
	if err := repo.Delete(ctx, "AA:BB:CC:DD:EE:02"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	macs, err := repo.ListActiveMACs(ctx)
	if err != nil {
		t.Fatalf("ListActiveMACs() error = %v", err)
	}

	want := []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:03"}
	if len(macs) != len(want) {
		t.Fatalf("got %d macs, want %d: %v", len(macs), len(want), macs)
	}
	for i, mac := range want {
		if macs[i] != mac {
			t.Errorf("macs[%d] = %q, want %q", i, macs[i], mac)
		}
	}
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	a := testDevice("AA:BB:CC:DD:EE:01")
	a.Name = "Bedroom"
	b := testDevice("AA:BB:CC:DD:EE:02")
	b.Name = "Attic"
	for _, d := range []*Device{a, b} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if err := repo.Delete(ctx, a.MAC); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	devices, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	// Inactive devices are included, ordered by name.
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].Name != "Attic" || devices[1].Name != "Bedroom" {
		t.Errorf("order = [%s, %s], want [Attic, Bedroom]", devices[0].Name, devices[1].Name)
	}
}
