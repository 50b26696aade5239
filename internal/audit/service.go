package audit

import (
	"encoding/json"
	"fmt"

	"restoran-admin/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog kaydı verilen transaction içinde yazar; işlem geri alınırsa log da
// geri alınır.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr, err := marshalOrNull(opts.Before)
	if err != nil {
		return err
	}
	afterStr, err := marshalOrNull(opts.After)
	if err != nil {
		return err
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

func marshalOrNull(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("audit verisi serileştirilemedi: %w", err)
	}
	return string(b), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
