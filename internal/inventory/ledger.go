package inventory

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
	"gorm.io/gorm/clause"
)

type StockStatus string

const (
	StatusInStock    StockStatus = "IN_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// stok = IMPORT toplamı - CONSUME toplamı. Tekil sorgu ve liste aynı ifadeyi kullanır.
const stockExpr = "COALESCE(SUM(CASE WHEN type = 'IMPORT' THEN quantity ELSE -quantity END), 0)"

type LedgerConfig struct {
	LowStockThreshold  decimal.Decimal
	AllowNegativeStock bool
}

type Ledger struct {
	db     *gorm.DB
	cfg    LedgerConfig
	logger *zap.SugaredLogger
}

func NewLedger(db *gorm.DB, cfg LedgerConfig, logger *zap.SugaredLogger) *Ledger {
	return &Ledger{db: db, cfg: cfg, logger: logger}
}

// StatusFor stok miktarından durum türetir.
func StatusFor(stock, lowThreshold decimal.Decimal) StockStatus {
	switch {
	case stock.LessThanOrEqual(decimal.Zero):
		return StatusOutOfStock
	case stock.LessThanOrEqual(lowThreshold):
		return StatusLowStock
	default:
		return StatusInStock
	}
}

func (l *Ledger) Status(stock decimal.Decimal) StockStatus {
	return StatusFor(stock, l.cfg.LowStockThreshold)
}

type CreateIngredientInput struct {
	Name string
	Code string
	Unit models.IngredientUnit
}

func (l *Ledger) CreateIngredient(ctx context.Context, actor auth.Actor, in CreateIngredientInput) (*models.Ingredient, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	if in.Name == "" {
		return nil, apperr.Validation("Malzeme adı zorunlu")
	}
	if !in.Unit.Valid() {
		return nil, apperr.Validation("Geçersiz birim: %q", in.Unit)
	}
	s := slug.Make(in.Name)
	if s == "" {
		return nil, apperr.Validation("Malzeme adı en az bir harf veya rakam içermeli")
	}

	ing := models.Ingredient{Name: in.Name, Code: in.Code, Unit: in.Unit, Slug: s}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slug.Taken(tx, &models.Ingredient{}, s, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("%q isimli malzeme zaten mevcut", in.Name)
		}
		if err := tx.Create(&ing).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Malzeme eklendi: %s", ing.Name),
			After:       ing,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &ing, nil
}

type UpdateIngredientInput struct {
	Name *string
	Code *string
	Unit *models.IngredientUnit
}

func (l *Ledger) UpdateIngredient(ctx context.Context, actor auth.Actor, id uint, in UpdateIngredientInput) (*models.Ingredient, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var ing models.Ingredient
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Malzeme bulunamadı")
			}
			return err
		}
		before := ing

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("Malzeme adı boş olamaz")
			}
			if name != ing.Name {
				s := slug.Make(name)
				if s == "" {
					return apperr.Validation("Malzeme adı en az bir harf veya rakam içermeli")
				}
				taken, err := slug.Taken(tx, &models.Ingredient{}, s, ing.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("%q isimli malzeme zaten mevcut", name)
				}
				ing.Name, ing.Slug = name, s
			}
		}
		if in.Code != nil {
			ing.Code = strings.TrimSpace(*in.Code)
		}
		if in.Unit != nil {
			if !in.Unit.Valid() {
				return apperr.Validation("Geçersiz birim: %q", *in.Unit)
			}
			ing.Unit = *in.Unit
		}

		if err := tx.Save(&ing).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Malzeme güncellendi: %s", ing.Name),
			Before:      before,
			After:       ing,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &ing, nil
}

// DeleteIngredient hareket geçmişi veya tarif satırı varken silmeyi reddeder.
func (l *Ledger) DeleteIngredient(ctx context.Context, actor auth.Actor, id uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ing models.Ingredient
		if err := tx.First(&ing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Malzeme bulunamadı")
			}
			return err
		}

		var txCount, lineCount int64
		if err := tx.Model(&models.IngredientTransaction{}).Where("ingredient_id = ?", id).Count(&txCount).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&lineCount).Error; err != nil {
			return err
		}
		if txCount > 0 || lineCount > 0 {
			return apperr.Conflict("Malzemenin stok hareketi veya tarif kaydı olduğu için silinemez")
		}

		if err := tx.Delete(&ing).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Malzeme silindi: %s", ing.Name),
			Before:      ing,
		})
	})
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

type RecordTransactionInput struct {
	IngredientID uint
	Type         models.IngredientTransactionType
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Notes        string
}

// RecordTransaction tek bir değiştirilemez stok hareketi ekler. Hareketi
// yapan kullanıcı actor'dan alınır.
func (l *Ledger) RecordTransaction(ctx context.Context, actor auth.Actor, in RecordTransactionInput) (*models.IngredientTransaction, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	if in.Type != models.TransactionImport && in.Type != models.TransactionConsume {
		return nil, apperr.Validation("Hareket tipi IMPORT veya CONSUME olmalı")
	}
	// Miktar işaretsizdir, yön Type'tan gelir. Sıfır miktarlı hareket
	// (ör. fiyat notu) kabul edilir ve stoğu değiştirmez.
	if in.Quantity.IsNegative() {
		return nil, apperr.Validation("Miktar negatif olamaz")
	}
	if in.Price.IsNegative() {
		return nil, apperr.Validation("Fiyat negatif olamaz")
	}

	entry := models.IngredientTransaction{
		IngredientID: in.IngredientID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Price:        in.Price,
		CreatedByID:  actor.UserID,
		Notes:        strings.TrimSpace(in.Notes),
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Aynı malzemeye eşzamanlı hareketleri sıraya sok
		var ing models.Ingredient
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ing, in.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Malzeme bulunamadı")
			}
			return err
		}

		if in.Type == models.TransactionConsume && !l.cfg.AllowNegativeStock {
			stock, err := currentStock(tx, ing.ID)
			if err != nil {
				return err
			}
			if stock.LessThan(in.Quantity) {
				return apperr.Conflict("Yetersiz stok: %s mevcut, %s isteniyor", stock.String(), in.Quantity.String())
			}
		}

		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "ingredient_transaction",
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s: %s - %s %s", entry.Type, ing.Name, entry.Quantity.String(), ing.Unit),
			After:       entry,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	l.logger.Infow("stok hareketi kaydedildi",
		"ingredient_id", entry.IngredientID,
		"type", entry.Type,
		"quantity", entry.Quantity.String(),
		"user_id", actor.UserID,
	)
	return &entry, nil
}

// CurrentStock her çağrıda hareket defterinden yeniden hesaplanır.
func (l *Ledger) CurrentStock(ctx context.Context, ingredientID uint) (decimal.Decimal, error) {
	db := l.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Ingredient{}).Where("id = ?", ingredientID).Count(&count).Error; err != nil {
		return decimal.Zero, apperr.Store(err)
	}
	if count == 0 {
		return decimal.Zero, apperr.NotFound("Malzeme bulunamadı")
	}

	stock, err := currentStock(db, ingredientID)
	if err != nil {
		return decimal.Zero, apperr.Store(err)
	}
	return stock, nil
}

func currentStock(tx *gorm.DB, ingredientID uint) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := tx.Model(&models.IngredientTransaction{}).
		Select(stockExpr).
		Where("ingredient_id = ?", ingredientID).
		Row().
		Scan(&stock)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stok hesaplanamadı: %w", err)
	}
	return stock, nil
}

type StockLine struct {
	Ingredient models.Ingredient
	Stock      decimal.Decimal
	Status     StockStatus
}

// ListStock tüm malzemeleri isim sırasıyla, güncel stok ve durumlarıyla döndürür.
func (l *Ledger) ListStock(ctx context.Context) ([]StockLine, error) {
	db := l.db.WithContext(ctx)

	var ingredients []models.Ingredient
	if err := db.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, apperr.Store(err)
	}

	rows, err := db.Model(&models.IngredientTransaction{}).
		Select("ingredient_id, " + stockExpr).
		Group("ingredient_id").
		Rows()
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()

	stocks := make(map[uint]decimal.Decimal)
	for rows.Next() {
		var id uint
		var stock decimal.Decimal
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, apperr.Store(err)
		}
		stocks[id] = stock
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}

	res := make([]StockLine, 0, len(ingredients))
	for _, ing := range ingredients {
		stock := stocks[ing.ID]
		res = append(res, StockLine{Ingredient: ing, Stock: stock, Status: l.Status(stock)})
	}
	return res, nil
}

// UnitCosts IMPORT hareketlerinin ağırlıklı ortalama birim fiyatını verir.
// Hiç girişi olmayan malzeme haritada yer almaz.
func UnitCosts(tx *gorm.DB, ingredientIDs []uint) (map[uint]decimal.Decimal, error) {
	costs := make(map[uint]decimal.Decimal, len(ingredientIDs))
	if len(ingredientIDs) == 0 {
		return costs, nil
	}

	rows, err := tx.Model(&models.IngredientTransaction{}).
		Select("ingredient_id, COALESCE(SUM(quantity * price), 0), COALESCE(SUM(quantity), 0)").
		Where("type = ? AND ingredient_id IN ?", models.TransactionImport, ingredientIDs).
		Group("ingredient_id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("birim maliyet hesaplanamadı: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint
		var total, qty decimal.Decimal
		if err := rows.Scan(&id, &total, &qty); err != nil {
			return nil, fmt.Errorf("birim maliyet okunamadı: %w", err)
		}
		if qty.IsPositive() {
			costs[id] = total.DivRound(qty, 4)
		}
	}
	return costs, rows.Err()
}
