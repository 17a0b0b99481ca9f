package device

import (
	"context"
	"errors"
	"testing"
)

func TestStateGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStateRepository(db)

	_, err := repo.Get(context.Background(), "AA:BB:CC:DD:EE:FF")
	if !errors.Is(err, ErrStateNotFound) {
		t.Errorf("error = %v, want ErrStateNotFound", err)
	}
}

func TestStateUpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	devices := NewSQLiteRepository(db)
	repo := NewSQLiteStateRepository(db)
	ctx := context.Background()

	mac := "AA:BB:CC:DD:EE:FF"
	if err := devices.Create(ctx, testDevice(mac)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	low, high := 18.5, 24.0
	winter := SeasonWinter
	on := true
	state := &State{
		MAC:         mac,
		TempMin:     &low,
		TempMax:     &high,
		Season:      &winter,
		BoilerState: &on,
	}

	if err := repo.Upsert(ctx, state); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, mac)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.TempMin == nil || *got.TempMin != low {
		t.Errorf("TempMin = %v, want %v", got.TempMin, low)
	}
	if got.TempMax == nil || *got.TempMax != high {
		t.Errorf("TempMax = %v, want %v", got.TempMax, high)
	}
	if got.Season == nil || *got.Season != SeasonWinter {
		t.Errorf("Season = %v, want winter", got.Season)
	}
	if got.BoilerState == nil || !*got.BoilerState {
		t.Errorf("BoilerState = %v, want true", got.BoilerState)
	}
	if got.LastUpdated.IsZero() {
		t.Error("LastUpdated is zero")
	}
}

func TestStateUpsertPartialFields(t *testing.T) {
	db := setupTestDB(t)
	devices := NewSQLiteRepository(db)
	repo := NewSQLiteStateRepository(db)
	ctx := context.Background()

	mac := "AA:BB:CC:DD:EE:FF"
	if err := devices.Create(ctx, testDevice(mac)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	low := 18.0
	if err := repo.Upsert(ctx, &State{MAC: mac, TempMin: &low}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, mac)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TempMax != nil || got.Season != nil || got.BoilerState != nil {
		t.Errorf("unset fields not nil: max=%v season=%v boiler=%v",
			got.TempMax, got.Season, got.BoilerState)
	}
}

func TestStateUpsertBumpsLastUpdated(t *testing.T) {
	db := setupTestDB(t)
	devices := NewSQLiteRepository(db)
	repo := NewSQLiteStateRepository(db)
	ctx := context.Background()

	mac := "AA:BB:CC:DD:EE:FF"
	if err := devices.Create(ctx, testDevice(mac)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	low := 18.0
	if err := repo.Upsert(ctx, &State{MAC: mac, TempMin: &low}); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	first, err := repo.LastUpdated(ctx, mac)
	if err != nil {
		t.Fatalf("LastUpdated() error = %v", err)
	}

	// No sleep: both writes land within the same wall-clock second, the
	// case where second-precision storage would collapse them into an
	// equal watermark and the change detector would miss the update.
	low = 16.0
	if err := repo.Upsert(ctx, &State{MAC: mac, TempMin: &low}); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	second, err := repo.LastUpdated(ctx, mac)
	if err != nil {
		t.Fatalf("LastUpdated() error = %v", err)
	}

	if !second.After(first) {
		t.Errorf("LastUpdated not strictly increasing: first=%v second=%v", first, second)
	}
}

func TestStateUpsertReplacesValues(t *testing.T) {
	db := setupTestDB(t)
	devices := NewSQLiteRepository(db)
	repo := NewSQLiteStateRepository(db)
	ctx := context.Background()

	mac := "AA:BB:CC:DD:EE:FF"
	if err := devices.Create(ctx, testDevice(mac)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	low, high := 18.0, 24.0
	summer := SeasonSummer
	if err := repo.Upsert(ctx, &State{MAC: mac, TempMin: &low, TempMax: &high, Season: &summer}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Second write clears temp_max and switches season.
	winter := SeasonWinter
	if err := repo.Upsert(ctx, &State{MAC: mac, TempMin: &low, Season: &winter}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, mac)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TempMax != nil {
		t.Errorf("TempMax = %v, want nil after overwrite", got.TempMax)
	}
	if got.Season == nil || *got.Season != SeasonWinter {
		t.Errorf("Season = %v, want winter", got.Season)
	}
}

func TestStateUpsertValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStateRepository(db)
	ctx := context.Background()

	t.Run("bad mac", func(t *testing.T) {
		err := repo.Upsert(ctx, &State{MAC: "nope"})
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("error = %v, want ErrInvalidAddress", err)
		}
	})

	t.Run("unknown season", func(t *testing.T) {
		bogus := Season("monsoon")
		err := repo.Upsert(ctx, &State{MAC: "AA:BB:CC:DD:EE:FF", Season: &bogus})
		if !errors.Is(err, ErrInvalidSeason) {
			t.Errorf("error = %v, want ErrInvalidSeason", err)
		}
	})
}

func TestLastUpdatedNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStateRepository(db)

	_, err := repo.LastUpdated(context.Background(), "AA:BB:CC:DD:EE:FF")
	if !errors.Is(err, ErrStateNotFound) {
		t.Errorf("error = %v, want ErrStateNotFound", err)
	}
}
