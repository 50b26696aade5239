package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type IngredientUnit string

const (
	UnitKilogram   IngredientUnit = "KG"
	UnitGram       IngredientUnit = "G"
	UnitLiter      IngredientUnit = "L"
	UnitMilliliter IngredientUnit = "ML"
	UnitPiece      IngredientUnit = "PIECE"
	UnitPack       IngredientUnit = "PACK"
)

func (u IngredientUnit) Valid() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitLiter, UnitMilliliter, UnitPiece, UnitPack:
		return true
	}
	return false
}

type Ingredient struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Code      string         `gorm:"size:50;index" json:"code"` // Opsiyonel etiket
	Unit      IngredientUnit `gorm:"size:20;not null" json:"unit"`
	Slug      string         `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type IngredientTransactionType string

const (
	TransactionImport  IngredientTransactionType = "IMPORT"
	TransactionConsume IngredientTransactionType = "CONSUME"
)

// IngredientTransaction: değiştirilemez stok hareketi. Miktar her zaman pozitif
// girilir, yön Type ile belirlenir.
type IngredientTransaction struct {
	ID           uint                      `gorm:"primaryKey" json:"id"`
	IngredientID uint                      `gorm:"index;not null" json:"ingredient_id"`
	Ingredient   *Ingredient               `gorm:"constraint:OnDelete:RESTRICT" json:"ingredient,omitempty"`
	Type         IngredientTransactionType `gorm:"size:10;not null" json:"type"`
	Quantity     decimal.Decimal           `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Price        decimal.Decimal           `gorm:"type:decimal(12,2);not null" json:"price"` // birim fiyat
	CreatedByID  uint                      `gorm:"index;not null" json:"created_by_id"`
	Notes        string                    `gorm:"size:255" json:"notes"`
	CreatedAt    time.Time                 `json:"created_at"`
}
