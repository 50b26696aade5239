package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"restoran-admin/internal/apperr"

	"github.com/shopspring/decimal"
)

type IngredientLine struct {
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// MenuItemRef bağlanacak menü öğesi. ID nil ise bağlantı yok ("none").
type MenuItemRef struct {
	ID *uint
}

func MenuItem(id uint) MenuItemRef { return MenuItemRef{ID: &id} }

// UnmarshalJSON sayı, sayısal string, "none", "" ve null kabul eder.
func (r *MenuItemRef) UnmarshalJSON(b []byte) error {
	r.ID = nil

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return fmt.Errorf("geçersiz menu_item_id: %v", v)
		}
		id := uint(v)
		r.ID = &id
	case string:
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "none") {
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("geçersiz menu_item_id: %q", v)
		}
		id := uint(n)
		r.ID = &id
	default:
		return fmt.Errorf("geçersiz menu_item_id")
	}
	return nil
}

type CreateInput struct {
	Name            string
	Description     string
	Instructions    string
	EstimatedCost   *decimal.Decimal // nil ise malzemelerden hesaplanır
	PreparationTime *int
	ServingSize     *int
	Ingredients     []IngredientLine
	MenuItem        MenuItemRef
}

// UpdateInput: Name zorunlu, diğer alanlar nil ise değişmez. Ingredients nil
// ise mevcut liste korunur, nil değilse (boş dahil) liste tamamen değiştirilir.
// MenuItem her güncellemede uzlaştırılır: ID nil ise bağlantı kaldırılır.
type UpdateInput struct {
	Name            string
	Description     *string
	Instructions    *string
	EstimatedCost   *decimal.Decimal
	PreparationTime *int
	ServingSize     *int
	Ingredients     []IngredientLine
	MenuItem        MenuItemRef
}

func validateLines(lines []IngredientLine) error {
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if line.IngredientID == 0 {
			return apperr.Validation("Malzeme seçilmeli")
		}
		if !line.Quantity.IsPositive() {
			return apperr.Validation("Malzeme miktarı sıfırdan büyük olmalı")
		}
		if _, dup := seen[line.IngredientID]; dup {
			return apperr.Validation("Aynı malzeme tarife birden fazla eklenemez (ID: %d)", line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}
	}
	return nil
}

func validateServing(servingSize, preparationTime *int) error {
	if servingSize != nil && *servingSize < 1 {
		return apperr.Validation("Porsiyon sayısı en az 1 olmalı")
	}
	if preparationTime != nil && *preparationTime < 0 {
		return apperr.Validation("Hazırlama süresi negatif olamaz")
	}
	return nil
}
