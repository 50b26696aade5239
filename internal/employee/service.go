// Package employee çalışan profillerini ve maaş politikasını yönetir.
package employee

import (
	"context"
	"errors"
	"strings"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValidateSalary maaş türüne göre zorunlu alanları kontrol eder:
// MONTHLY ve MIXED için aylık maaş, HOURLY ve MIXED için saatlik ücret.
// Gönderilen tutarlar pozitif olmalı.
func ValidateSalary(t models.SalaryType, base, hourly decimal.NullDecimal) error {
	if !t.Valid() {
		return apperr.Validation("Maaş türü HOURLY, MONTHLY veya MIXED olmalı")
	}
	if t.UsesBaseSalary() && !base.Valid {
		return apperr.Validation("%s maaş türü için aylık maaş zorunlu", t)
	}
	if t.UsesHours() && !hourly.Valid {
		return apperr.Validation("%s maaş türü için saatlik ücret zorunlu", t)
	}
	if base.Valid && !base.Decimal.IsPositive() {
		return apperr.Validation("Aylık maaş pozitif olmalı")
	}
	if hourly.Valid && !hourly.Decimal.IsPositive() {
		return apperr.Validation("Saatlik ücret pozitif olmalı")
	}
	return nil
}

// applicableSalary türün kullanmadığı tutarı temizler; HOURLY çalışanda
// aylık maaş, MONTHLY çalışanda saatlik ücret saklanmaz.
func applicableSalary(t models.SalaryType, base, hourly decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal) {
	if !t.UsesBaseSalary() {
		base = decimal.NullDecimal{}
	}
	if !t.UsesHours() {
		hourly = decimal.NullDecimal{}
	}
	return base, hourly
}

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateInput struct {
	UserID     *uint
	FullName   string
	Position   string
	SalaryType models.SalaryType
	BaseSalary decimal.NullDecimal
	HourlyRate decimal.NullDecimal
}

type SalaryInput struct {
	SalaryType models.SalaryType
	BaseSalary decimal.NullDecimal
	HourlyRate decimal.NullDecimal
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*models.Employee, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, apperr.Validation("Ad soyad zorunlu")
	}
	if err := ValidateSalary(in.SalaryType, in.BaseSalary, in.HourlyRate); err != nil {
		return nil, err
	}

	base, hourly := applicableSalary(in.SalaryType, in.BaseSalary, in.HourlyRate)
	emp := models.Employee{
		UserID:     in.UserID,
		FullName:   name,
		Position:   strings.TrimSpace(in.Position),
		SalaryType: in.SalaryType,
		BaseSalary: base,
		HourlyRate: hourly,
		IsActive:   true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.UserID != nil {
			var user models.User
			if err := tx.First(&user, *in.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Kullanıcı bulunamadı")
				}
				return err
			}
			var linked int64
			if err := tx.Model(&models.Employee{}).Where("user_id = ?", *in.UserID).Count(&linked).Error; err != nil {
				return err
			}
			if linked > 0 {
				return apperr.Conflict("Bu kullanıcıya bağlı bir çalışan profili zaten var")
			}
		}

		if err := tx.Create(&emp).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionCreate,
			Description: "Çalışan oluşturuldu: " + emp.FullName,
			After:       emp,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("çalışan oluşturuldu", "employee_id", emp.ID, "salary_type", emp.SalaryType)
	return &emp, nil
}

// UpdateSalary maaş türünü ve tutarlarını birlikte değiştirir. Türün
// kullanmadığı alan gönderilmişse temizlenir.
func (s *Service) UpdateSalary(ctx context.Context, actor auth.Actor, id uint, in SalaryInput) (*models.Employee, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := ValidateSalary(in.SalaryType, in.BaseSalary, in.HourlyRate); err != nil {
		return nil, err
	}

	var emp models.Employee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&emp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Çalışan bulunamadı")
			}
			return err
		}
		before := emp

		emp.SalaryType = in.SalaryType
		emp.BaseSalary, emp.HourlyRate = applicableSalary(in.SalaryType, in.BaseSalary, in.HourlyRate)
		if err := tx.Save(&emp).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionUpdate,
			Description: "Maaş bilgisi güncellendi: " + emp.FullName,
			Before:      before,
			After:       emp,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &emp, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	q := s.db.WithContext(ctx).Order("full_name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var employees []models.Employee
	if err := q.Find(&employees).Error; err != nil {
		return nil, apperr.Store(err)
	}
	return employees, nil
}
