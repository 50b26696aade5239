package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItemStatus string

const (
	MenuItemAvailable   MenuItemStatus = "AVAILABLE"
	MenuItemUnavailable MenuItemStatus = "UNAVAILABLE"
)

// MenuItem tarifi sadece referans olarak tutar. Bir tarifi en fazla bir menü
// öğesi gösterebilir; bu kural recipe servisinde uygulanır.
type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Slug        string          `gorm:"size:180;not null;uniqueIndex:idx_menu_items_slug_active,where:deleted_at IS NULL" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	RecipeID    *uint           `gorm:"index" json:"recipe_id"`
	Recipe      *Recipe         `json:"recipe,omitempty"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	Status      MenuItemStatus  `gorm:"size:20;not null" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at"`
}
