package patient

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&Patient{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewRepository(db)
}

func TestCreateOrGetIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	first, err := repo.CreateOrGet(ctx, "PX-aaaa1111", "Yatak 3", 1)
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	// A second create with a different label keeps the original record.
	second, err := repo.CreateOrGet(ctx, "PX-aaaa1111", "Yatak 9", 2)
	if err != nil {
		t.Fatalf("second CreateOrGet() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("got two records for one identifier: %d and %d", first.ID, second.ID)
	}
	if second.Label != "Yatak 3" {
		t.Errorf("Label = %q, want original Yatak 3", second.Label)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	if _, err := repo.CreateOrGet(ctx, "PX-aaaa1111", "", 1); err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	ok, err := repo.Exists(ctx, "PX-aaaa1111")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("known patient reported as missing")
	}

	ok, err = repo.Exists(ctx, "PX-missing")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("unknown patient reported as present")
	}
}

func TestLabelUnknownPatient(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	label, err := repo.Label(ctx, "PX-missing")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if label != "" {
		t.Errorf("Label = %q, want empty for unknown patient", label)
	}
}
