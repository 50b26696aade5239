package attendance

import (
	"context"
	"strings"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"
	"restoran-admin/internal/workday"

	"gorm.io/gorm"
)

type CreateShiftInput struct {
	Name      string
	StartTime string
	EndTime   string
}

// CreateShift yeni vardiya tanımı ekler. Gece vardiyaları için bitiş saati
// başlangıçtan önce olabilir.
func (s *Service) CreateShift(ctx context.Context, actor auth.Actor, in CreateShiftInput) (*models.Shift, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Vardiya adı zorunlu")
	}
	if _, err := workday.ParseClock(in.StartTime); err != nil {
		return nil, apperr.Validation("Başlangıç saati HH:MM olmalı")
	}
	if _, err := workday.ParseClock(in.EndTime); err != nil {
		return nil, apperr.Validation("Bitiş saati HH:MM olmalı")
	}

	shift := models.Shift{
		Name:      name,
		StartTime: strings.TrimSpace(in.StartTime),
		EndTime:   strings.TrimSpace(in.EndTime),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shift).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "shift",
			EntityID:    shift.ID,
			Action:      models.AuditActionCreate,
			Description: "Vardiya oluşturuldu: " + shift.Name,
			After:       shift,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &shift, nil
}

func (s *Service) ListShifts(ctx context.Context) ([]models.Shift, error) {
	var shifts []models.Shift
	if err := s.db.WithContext(ctx).Order("start_time ASC").Find(&shifts).Error; err != nil {
		return nil, apperr.Store(err)
	}
	return shifts, nil
}
