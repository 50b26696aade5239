package database

import (
	"fmt"

	"restoran-admin/internal/config"
	"restoran-admin/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models AutoMigrate sırası: referans verilen tablolar önce.
var Models = []any{
	&models.User{},
	&models.Ingredient{},
	&models.IngredientTransaction{},
	&models.Recipe{},
	&models.RecipeIngredient{},
	&models.MenuItem{},
	&models.Employee{},
	&models.Shift{},
	&models.TimeKeeping{},
	&models.WorkingDayConfig{},
	&models.AuditLog{},
}

func Init(cfg *config.Config, log *zap.SugaredLogger) *gorm.DB {
	db, err := Open(postgres.Open(cfg.DatabaseDSN), gormlogger.Warn)
	if err != nil {
		log.Fatalw("veritabanına bağlanılamadı", "error", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalw("AutoMigrate hatası", "error", err)
	}

	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db
}

// Open unique/foreign key ihlallerini gorm.ErrDuplicatedKey ve
// gorm.ErrForeignKeyViolated olarak döndüren bir bağlantı açar.
func Open(dialector gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanı açılamadı: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migration başarısız: %w", err)
	}
	return nil
}
