// Package menu menü öğelerini yönetir. Tarif bağlantısı burada değil,
// recipe servisinde kurulur.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"
	"restoran-admin/internal/slug"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Status      models.MenuItemStatus
}

type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	IsActive    *bool
	Status      *models.MenuItemStatus
}

func validStatus(s models.MenuItemStatus) bool {
	return s == models.MenuItemAvailable || s == models.MenuItemUnavailable
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Menü öğesi bulunamadı")
	}
	return err
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*models.MenuItem, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Menü öğesi adı zorunlu")
	}
	itemSlug := slug.Make(name)
	if itemSlug == "" {
		return nil, apperr.Validation("Menü öğesi adı en az bir harf veya rakam içermeli")
	}
	if in.Price.IsNegative() {
		return nil, apperr.Validation("Fiyat negatif olamaz")
	}
	status := in.Status
	if status == "" {
		status = models.MenuItemAvailable
	}
	if !validStatus(status) {
		return nil, apperr.Validation("Geçersiz durum: %q", status)
	}

	item := models.MenuItem{
		Name:        name,
		Slug:        itemSlug,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		IsActive:    true,
		Status:      status,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slug.Taken(tx, &models.MenuItem{}, itemSlug, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("%q isimli menü öğesi zaten mevcut", name)
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: "Menü öğesi oluşturuldu: " + item.Name,
			After:       item,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("menü öğesi oluşturuldu", "menu_item_id", item.ID, "slug", item.Slug)
	return &item, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id uint, in UpdateInput) (*models.MenuItem, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, apperr.Validation("Fiyat negatif olamaz")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return nil, apperr.Validation("Geçersiz durum: %q", *in.Status)
	}

	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return notFound(err)
		}
		before := item

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("Menü öğesi adı zorunlu")
			}
			if name != item.Name {
				newSlug := slug.Make(name)
				if newSlug == "" {
					return apperr.Validation("Menü öğesi adı en az bir harf veya rakam içermeli")
				}
				taken, err := slug.Taken(tx, &models.MenuItem{}, newSlug, item.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("%q isimli menü öğesi zaten mevcut", name)
				}
				item.Name, item.Slug = name, newSlug
			}
		}
		if in.Description != nil {
			item.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			item.Price = *in.Price
		}
		if in.IsActive != nil {
			item.IsActive = *in.IsActive
		}
		if in.Status != nil {
			item.Status = *in.Status
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: "Menü öğesi güncellendi: " + item.Name,
			Before:      before,
			After:       item,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &item, nil
}

// Duplicate menü öğesini "-copy" slug'ıyla kopyalar. Tarif bağlantısı
// kopyalanmaz.
func (s *Service) Duplicate(ctx context.Context, actor auth.Actor, id uint) (*models.MenuItem, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var dup models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src models.MenuItem
		if err := tx.First(&src, id).Error; err != nil {
			return notFound(err)
		}

		newName, newSlug, err := slug.NextCopy(src.Name, func(candidate string) (bool, error) {
			return slug.Taken(tx.Unscoped(), &models.MenuItem{}, candidate, 0)
		})
		if err != nil {
			return err
		}

		dup = models.MenuItem{
			Name:        newName,
			Slug:        newSlug,
			Description: src.Description,
			Price:       src.Price,
			IsActive:    src.IsActive,
			Status:      src.Status,
		}
		if err := tx.Create(&dup).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Retryable(err)
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "menu_item",
			EntityID:    dup.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Menü öğesi kopyalandı: %s -> %s", src.Slug, dup.Slug),
			After:       dup,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("menü öğesi kopyalandı", "source_id", id, "menu_item_id", dup.ID, "slug", dup.Slug)
	return &dup, nil
}

func (s *Service) SoftDelete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.First(&item, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionDelete,
			Description: "Menü öğesi silindi: " + item.Name,
			Before:      item,
		})
	})
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, apperr.Store(err)
	}
	return items, nil
}
