package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Recipe struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Name            string              `gorm:"size:150;not null" json:"name"`
	Slug            string              `gorm:"size:180;not null;uniqueIndex:idx_recipes_slug_active,where:deleted_at IS NULL" json:"slug"`
	Description     string              `gorm:"type:text" json:"description"`
	Instructions    string              `gorm:"type:text" json:"instructions"`
	EstimatedCost   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"estimated_cost"`
	PreparationTime *int                `json:"preparation_time"` // dakika
	ServingSize     int                 `gorm:"not null" json:"serving_size"`
	Ingredients     []RecipeIngredient  `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"deleted_at"`
}

// RecipeIngredient: bir tarifte her malzeme en fazla bir kez bulunur.
type RecipeIngredient struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RecipeID     uint            `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint            `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   *Ingredient     `gorm:"constraint:OnDelete:RESTRICT" json:"ingredient,omitempty"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"deleted_at"`
}
