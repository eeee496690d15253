package bin

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/database"
	_ "github.com/smartbin-iot/smartbin-core/migrations"
)

// newTestRepo opens a temporary migrated database and returns a repository
// backed by it.
func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func testBin(id string) *Bin {
	return &Bin{
		ID:          id,
		Name:        "Kitchen Bin",
		Location:    "Floor 2",
		Mode:        ModeAuto,
		ThresholdCM: 40,
		CapacityCM:  200,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "bin-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Name != "Kitchen Bin" {
		t.Errorf("Name = %q, want %q", got.Name, "Kitchen Bin")
	}
	if got.Mode != ModeAuto {
		t.Errorf("Mode = %q, want %q", got.Mode, ModeAuto)
	}
	if got.ThresholdCM != 40 {
		t.Errorf("ThresholdCM = %v, want 40", got.ThresholdCM)
	}
	if got.Online {
		t.Error("new bin should not be online")
	}
	if got.LastSeen != nil {
		t.Error("new bin should have no last-seen timestamp")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrBinNotFound) {
		t.Errorf("GetByID() error = %v, want ErrBinNotFound", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, testBin("bin-001"))
	if !errors.Is(err, ErrBinExists) {
		t.Errorf("duplicate Create() error = %v, want ErrBinExists", err)
	}
}

func TestCreateInvalidMode(t *testing.T) {
	repo := newTestRepo(t)

	b := testBin("bin-001")
	b.Mode = Mode("MANUAL")

	err := repo.Create(context.Background(), b)
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Create() error = %v, want ErrInvalidMode", err)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bins, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bins) != 0 {
		t.Fatalf("empty store List() returned %d bins", len(bins))
	}

	for _, id := range []string{"bin-002", "bin-001", "bin-003"} {
		if err := repo.Create(ctx, testBin(id)); err != nil {
			t.Fatalf("Create(%q) error = %v", id, err)
		}
	}

	bins, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bins) != 3 {
		t.Fatalf("List() returned %d bins, want 3", len(bins))
	}
	if bins[0].ID != "bin-001" || bins[2].ID != "bin-003" {
		t.Errorf("List() not ordered by ID: %q, %q, %q", bins[0].ID, bins[1].ID, bins[2].ID)
	}
}

func TestUpdateTelemetry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdateTelemetry(ctx, "bin-001", 45, 110); err != nil {
		t.Fatalf("UpdateTelemetry() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "bin-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.LevelPercent != 45 {
		t.Errorf("LevelPercent = %d, want 45", got.LevelPercent)
	}
	if got.DistanceCM != 110 {
		t.Errorf("DistanceCM = %v, want 110", got.DistanceCM)
	}
	if got.LastSeen == nil {
		t.Error("UpdateTelemetry should set last-seen")
	} else if time.Since(*got.LastSeen) > time.Minute {
		t.Errorf("last-seen too old: %v", got.LastSeen)
	}
}

func TestUpdateTelemetryNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.UpdateTelemetry(context.Background(), "nope", 45, 110)
	if !errors.Is(err, ErrBinNotFound) {
		t.Errorf("UpdateTelemetry() error = %v, want ErrBinNotFound", err)
	}
}

func TestUpdatePresence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdatePresence(ctx, "bin-001", true); err != nil {
		t.Fatalf("UpdatePresence(online) error = %v", err)
	}
	got, _ := repo.GetByID(ctx, "bin-001")
	if !got.Online {
		t.Error("bin should be online")
	}
	if got.LastSeen == nil {
		t.Error("UpdatePresence should set last-seen")
	}

	if err := repo.UpdatePresence(ctx, "bin-001", false); err != nil {
		t.Fatalf("UpdatePresence(offline) error = %v", err)
	}
	got, _ = repo.GetByID(ctx, "bin-001")
	if got.Online {
		t.Error("bin should be offline")
	}
}

func TestUpdateConfig(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mode := ModeAuth
	threshold := 35.0
	err := repo.UpdateConfig(ctx, "bin-001", ConfigUpdate{
		Mode:        &mode,
		ThresholdCM: &threshold,
	})
	if err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "bin-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Mode != ModeAuth {
		t.Errorf("Mode = %q, want %q", got.Mode, ModeAuth)
	}
	if got.ThresholdCM != 35 {
		t.Errorf("ThresholdCM = %v, want 35", got.ThresholdCM)
	}
	// Untouched fields keep their values.
	if got.CapacityCM != 200 {
		t.Errorf("CapacityCM = %v, want 200 (untouched)", got.CapacityCM)
	}
	if got.Name != "Kitchen Bin" {
		t.Errorf("Name = %q, want unchanged", got.Name)
	}
}

func TestUpdateConfigEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.UpdateConfig(ctx, "bin-001", ConfigUpdate{})
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("UpdateConfig() error = %v, want ErrEmptyUpdate", err)
	}
}

func TestUpdateConfigInvalidMode(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testBin("bin-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bad := Mode("SOMETIMES")
	err := repo.UpdateConfig(ctx, "bin-001", ConfigUpdate{Mode: &bad})
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("UpdateConfig() error = %v, want ErrInvalidMode", err)
	}
}

func TestUpdateConfigNotFound(t *testing.T) {
	repo := newTestRepo(t)

	mode := ModeAuth
	err := repo.UpdateConfig(context.Background(), "nope", ConfigUpdate{Mode: &mode})
	if !errors.Is(err, ErrBinNotFound) {
		t.Errorf("UpdateConfig() error = %v, want ErrBinNotFound", err)
	}
}
