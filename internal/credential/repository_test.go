package credential

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/database"
	_ "github.com/smartbin-iot/smartbin-core/migrations"
)

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

func TestCreateAndGetByUID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Create(ctx, &Credential{
		UID:    "04A1B2C3",
		Holder: "Ada Lovelace",
		Role:   "staff",
		Active: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUID(ctx, "04A1B2C3")
	if err != nil {
		t.Fatalf("GetByUID() error = %v", err)
	}
	if got.Holder != "Ada Lovelace" {
		t.Errorf("Holder = %q, want %q", got.Holder, "Ada Lovelace")
	}
	if !got.Active {
		t.Error("credential should be active")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestGetByUIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByUID(context.Background(), "DEADBEEF")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByUID() error = %v, want ErrNotFound", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &Credential{UID: "04A1B2C3", Holder: "Ada", Role: "staff", Active: true}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, &Credential{UID: "04A1B2C3", Holder: "Grace", Role: "staff"})
	if !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Create() error = %v, want ErrExists", err)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, uid := range []string{"B2", "A1", "C3"} {
		if err := repo.Create(ctx, &Credential{UID: uid, Holder: "h", Role: "staff", Active: true}); err != nil {
			t.Fatalf("Create(%q) error = %v", uid, err)
		}
	}

	creds, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(creds) != 3 {
		t.Fatalf("List() returned %d credentials, want 3", len(creds))
	}
	if creds[0].UID != "A1" || creds[2].UID != "C3" {
		t.Errorf("List() not ordered by UID: %q, %q, %q", creds[0].UID, creds[1].UID, creds[2].UID)
	}
}

func TestSetActive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &Credential{UID: "A1", Holder: "Ada", Role: "staff", Active: true}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.SetActive(ctx, "A1", false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	got, err := repo.GetByUID(ctx, "A1")
	if err != nil {
		t.Fatalf("GetByUID() error = %v", err)
	}
	if got.Active {
		t.Error("credential should be inactive after SetActive(false)")
	}
}

func TestSetActiveNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SetActive(context.Background(), "nope", true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive() error = %v, want ErrNotFound", err)
	}
}
