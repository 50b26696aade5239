// Package dbtest testler için geçici sqlite veritabanı kurar.
package dbtest

import (
	"path/filepath"
	"testing"

	"restoran-admin/internal/database"
	"restoran-admin/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New her test için ayrı, migrate edilmiş bir veritabanı döndürür.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := database.Open(sqlite.Open(dsn), gormlogger.Silent)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() failed: %v", err)
	}
	// SQLite tek yazıcı destekler
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return db
}

func CreateIngredient(t *testing.T, db *gorm.DB, name string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, Unit: models.UnitKilogram, Slug: name}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("create ingredient %q: %v", name, err)
	}
	return ing
}

func CreateMenuItem(t *testing.T, db *gorm.DB, name string) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		Name:     name,
		Slug:     name,
		Price:    decimal.NewFromInt(100),
		IsActive: true,
		Status:   models.MenuItemAvailable,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create menu item %q: %v", name, err)
	}
	return item
}
