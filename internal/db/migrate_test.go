package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/pkg/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	}
	d, err := New(cfg, "ERROR")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)

	if err := Migrate(d); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	// A second run against an already-migrated schema must succeed unchanged.
	if err := Migrate(d); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, model := range allModels {
		if !d.Migrator().HasTable(model) {
			t.Errorf("table for %T missing after migration", model)
		}
	}
}

func TestSeedRunsOnce(t *testing.T) {
	d := openTestDB(t)
	if err := Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := Seed(d); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(d); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var categories int64
	if err := d.Model(&models.Category{}).Count(&categories).Error; err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categories != int64(len(defaultCategories)) {
		t.Errorf("categories after double seed = %d, want %d", categories, len(defaultCategories))
	}

	var users int64
	if err := d.Model(&models.StaffUser{}).Count(&users).Error; err != nil {
		t.Fatalf("count staff users: %v", err)
	}
	if users == 0 {
		t.Error("no staff users seeded")
	}
}

func TestBackend(t *testing.T) {
	d := openTestDB(t)
	if d.Backend() != "sqlite" {
		t.Errorf("backend = %q, want sqlite", d.Backend())
	}
	if err := d.Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}
