// Package workday haftanın yedi günü için çalışma saati ve fazla mesai
// çarpanı ayarlarını tutar.
package workday

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minutesPerDay = 24 * 60

var minuteDivisor = decimal.NewFromInt(60)

type DaySetting struct {
	DayOfWeek     models.DayOfWeek `json:"day_of_week"`
	IsWorkingDay  bool             `json:"is_working_day"`
	StartTime     *string          `json:"start_time"`
	EndTime       *string          `json:"end_time"`
	StandardHours *decimal.Decimal `json:"standard_hours"` // istemcinin hesabı, sunucuda doğrulanır
	OvertimeRate  decimal.Decimal  `json:"overtime_rate"`
}

type Store struct {
	db        *gorm.DB
	tolerance decimal.Decimal
	logger    *zap.SugaredLogger
}

func NewStore(db *gorm.DB, tolerance decimal.Decimal, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, tolerance: tolerance, logger: logger}
}

// ParseClock "15:04" veya "15:04:05" biçimindeki saati gün başından
// itibaren dakikaya çevirir.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("geçersiz saat: %q", s)
}

// StandardHours çalışma günü için bitiş-başlangıç farkını iki ondalığa
// yuvarlanmış saat olarak verir; bitiş başlangıçtan önceyse ertesi güne
// sarkan vardiya sayılır. Çalışma günü değilse her zaman 0'dır.
func StandardHours(isWorkingDay bool, start, end *string) (decimal.Decimal, error) {
	if !isWorkingDay {
		return decimal.Zero, nil
	}
	if start == nil || end == nil || strings.TrimSpace(*start) == "" || strings.TrimSpace(*end) == "" {
		return decimal.Zero, apperr.Validation("Çalışma günü için başlangıç ve bitiş saati zorunlu")
	}
	from, err := ParseClock(*start)
	if err != nil {
		return decimal.Zero, apperr.Validation("Başlangıç saati HH:MM olmalı")
	}
	to, err := ParseClock(*end)
	if err != nil {
		return decimal.Zero, apperr.Validation("Bitiş saati HH:MM olmalı")
	}
	if to == from {
		return decimal.Zero, apperr.Validation("Bitiş saati başlangıçla aynı olamaz")
	}
	// Bitiş başlangıçtan önceyse gün gece yarısını geçer (18:00-02:00)
	minutes := (to - from + minutesPerDay) % minutesPerDay
	return decimal.NewFromInt(int64(minutes)).DivRound(minuteDivisor, 2), nil
}

func (s *Store) normalize(in DaySetting) (models.WorkingDayConfig, error) {
	cfg := models.WorkingDayConfig{
		DayOfWeek:    in.DayOfWeek,
		IsWorkingDay: in.IsWorkingDay,
		OvertimeRate: in.OvertimeRate,
	}
	if in.OvertimeRate.LessThan(decimal.NewFromInt(1)) {
		return cfg, apperr.Validation("%s: fazla mesai çarpanı en az 1 olmalı", in.DayOfWeek)
	}

	hours, err := StandardHours(in.IsWorkingDay, in.StartTime, in.EndTime)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			appErr.Message = fmt.Sprintf("%s: %s", in.DayOfWeek, appErr.Message)
		}
		return cfg, err
	}

	if in.IsWorkingDay {
		if in.StandardHours != nil && in.StandardHours.Sub(hours).Abs().GreaterThan(s.tolerance) {
			return cfg, apperr.Validation("%s: standart saat %s gönderildi, başlangıç/bitişe göre %s olmalı",
				in.DayOfWeek, in.StandardHours.String(), hours.StringFixed(2))
		}
		start, end := strings.TrimSpace(*in.StartTime), strings.TrimSpace(*in.EndTime)
		cfg.StartTime, cfg.EndTime = &start, &end
	}
	cfg.StandardHours = hours
	return cfg, nil
}

// UpdateSettings yedi günün tamamını tek transaction içinde değiştirir.
func (s *Store) UpdateSettings(ctx context.Context, actor auth.Actor, settings []DaySetting) ([]models.WorkingDayConfig, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if len(settings) != len(models.Weekdays) {
		return nil, apperr.Validation("Haftanın 7 günü için ayar gönderilmeli")
	}

	seen := make(map[models.DayOfWeek]bool, len(settings))
	rows := make([]models.WorkingDayConfig, 0, len(settings))
	for _, in := range settings {
		if !in.DayOfWeek.Valid() {
			return nil, apperr.Validation("Geçersiz gün: %q", in.DayOfWeek)
		}
		if seen[in.DayOfWeek] {
			return nil, apperr.Validation("%s birden fazla kez gönderildi", in.DayOfWeek)
		}
		seen[in.DayOfWeek] = true

		row, err := s.normalize(in)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before []models.WorkingDayConfig
		if err := tx.Find(&before).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day_of_week"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_working_day", "start_time", "end_time", "standard_hours", "overtime_rate", "updated_at"}),
		}).Create(&rows).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "working_day_config",
			Action:      models.AuditActionUpdate,
			Description: "Çalışma günü ayarları güncellendi",
			Before:      before,
			After:       rows,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("çalışma günü ayarları güncellendi", "user_id", actor.UserID)
	return s.List(ctx)
}

// List ayarları pazartesiden pazara sıralı döndürür.
func (s *Store) List(ctx context.Context) ([]models.WorkingDayConfig, error) {
	var rows []models.WorkingDayConfig
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, apperr.Store(err)
	}
	byDay := make(map[models.DayOfWeek]models.WorkingDayConfig, len(rows))
	for _, r := range rows {
		byDay[r.DayOfWeek] = r
	}
	res := make([]models.WorkingDayConfig, 0, len(rows))
	for _, d := range models.Weekdays {
		if r, ok := byDay[d]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

// ForDate tarihin haftanın gününe ait ayarı döndürür; kayıt yoksa nil.
func ForDate(tx *gorm.DB, date time.Time) (*models.WorkingDayConfig, error) {
	var cfg models.WorkingDayConfig
	err := tx.Where("day_of_week = ?", models.DayOfWeekOf(date)).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SeedDefaults eksik günleri varsayılan değerlerle oluşturur, mevcut
// kayıtlara dokunmaz.
func (s *Store) SeedDefaults(ctx context.Context) error {
	start, end := "09:00", "17:00"
	rows := make([]models.WorkingDayConfig, 0, len(models.Weekdays))
	for _, d := range models.Weekdays {
		row := models.WorkingDayConfig{DayOfWeek: d}
		if d == models.Saturday || d == models.Sunday {
			row.OvertimeRate = decimal.NewFromInt(2)
			row.StandardHours = decimal.Zero
		} else {
			row.IsWorkingDay = true
			row.StartTime, row.EndTime = &start, &end
			row.StandardHours = decimal.NewFromInt(8)
			row.OvertimeRate = decimal.RequireFromString("1.5")
		}
		rows = append(rows, row)
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return fmt.Errorf("çalışma günü varsayılanları oluşturulamadı: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.logger.Infow("çalışma günü varsayılanları oluşturuldu", "count", res.RowsAffected)
	}
	return nil
}
