// Package recipe tarif, tarif malzemeleri ve menü öğesi bağlantısını tek
// transaction içinde tutarlı tutar.
//
// Her işlem sonunda:
//   - tarifin malzeme listesi gönderilen listeyle birebir aynıdır,
//   - tarifi en fazla bir menü öğesi gösterir,
//   - slug silinmemiş tarifler arasında tekildir.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/inventory"
	"restoran-admin/internal/models"
	"restoran-admin/internal/slug"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}

// Detail tarif ve türetilmiş alanları.
type Detail struct {
	Recipe         models.Recipe
	MenuItemID     *uint
	CostPerServing decimal.NullDecimal
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Detail, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Tarif adı zorunlu")
	}
	recipeSlug := slug.Make(name)
	if recipeSlug == "" {
		return nil, apperr.Validation("Tarif adı en az bir harf veya rakam içermeli")
	}
	if err := validateServing(in.ServingSize, in.PreparationTime); err != nil {
		return nil, err
	}
	if err := validateLines(in.Ingredients); err != nil {
		return nil, err
	}
	if in.EstimatedCost != nil && in.EstimatedCost.IsNegative() {
		return nil, apperr.Validation("Tahmini maliyet negatif olamaz")
	}

	r := models.Recipe{
		Name:            name,
		Slug:            recipeSlug,
		Description:     strings.TrimSpace(in.Description),
		Instructions:    strings.TrimSpace(in.Instructions),
		PreparationTime: in.PreparationTime,
		ServingSize:     1,
	}
	if in.ServingSize != nil {
		r.ServingSize = *in.ServingSize
	}
	for _, line := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slug.Taken(tx, &models.Recipe{}, recipeSlug, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("%q isimli tarif zaten mevcut", name)
		}
		if err := ensureIngredientsExist(tx, in.Ingredients); err != nil {
			return err
		}

		if in.EstimatedCost != nil {
			r.EstimatedCost = decimal.NewNullDecimal(*in.EstimatedCost)
		} else if r.EstimatedCost, err = estimateCost(tx, in.Ingredients); err != nil {
			return err
		}

		// Malzeme satırları tarifle birlikte oluşturulur
		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		// Yeni tarifi gösteren başka menü öğesi olamaz, sadece hedef bağlanır
		if in.MenuItem.ID != nil {
			if err := attachMenuItem(tx, r.ID, *in.MenuItem.ID); err != nil {
				return err
			}
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "recipe",
			EntityID:    r.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Tarif oluşturuldu: %s", r.Name),
			After:       r,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("tarif oluşturuldu", "recipe_id", r.ID, "slug", r.Slug, "user_id", actor.UserID)
	return s.Get(ctx, r.ID)
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id uint, in UpdateInput) (*Detail, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Tarif adı zorunlu")
	}
	if err := validateServing(in.ServingSize, in.PreparationTime); err != nil {
		return nil, err
	}
	if in.Ingredients != nil {
		if err := validateLines(in.Ingredients); err != nil {
			return nil, err
		}
	}
	if in.EstimatedCost != nil && in.EstimatedCost.IsNegative() {
		return nil, apperr.Validation("Tahmini maliyet negatif olamaz")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.Preload("Ingredients").First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Tarif bulunamadı")
			}
			return err
		}
		before := r
		r.Ingredients = nil

		// Slug sadece isim değiştiyse yeniden kontrol edilir
		if name != r.Name {
			newSlug := slug.Make(name)
			if newSlug == "" {
				return apperr.Validation("Tarif adı en az bir harf veya rakam içermeli")
			}
			taken, err := slug.Taken(tx, &models.Recipe{}, newSlug, r.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("%q isimli tarif zaten mevcut", name)
			}
			r.Name, r.Slug = name, newSlug
		}

		if in.Description != nil {
			r.Description = strings.TrimSpace(*in.Description)
		}
		if in.Instructions != nil {
			r.Instructions = strings.TrimSpace(*in.Instructions)
		}
		if in.PreparationTime != nil {
			r.PreparationTime = in.PreparationTime
		}
		if in.ServingSize != nil {
			r.ServingSize = *in.ServingSize
		}

		if in.Ingredients != nil {
			if err := replaceIngredients(tx, r.ID, in.Ingredients); err != nil {
				return err
			}
		}

		switch {
		case in.EstimatedCost != nil:
			r.EstimatedCost = decimal.NewNullDecimal(*in.EstimatedCost)
		case in.Ingredients != nil:
			cost, err := estimateCost(tx, in.Ingredients)
			if err != nil {
				return err
			}
			r.EstimatedCost = cost
		}

		if err := tx.Omit(clause.Associations).Save(&r).Error; err != nil {
			return err
		}

		// Önce eski bağlantıyı kopar, sonra hedefi bağla
		if err := detachMenuItems(tx, r.ID); err != nil {
			return err
		}
		if in.MenuItem.ID != nil {
			if err := attachMenuItem(tx, r.ID, *in.MenuItem.ID); err != nil {
				return err
			}
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "recipe",
			EntityID:    r.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Tarif güncellendi: %s", r.Name),
			Before:      before,
			After:       r,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("tarif güncellendi", "recipe_id", id, "user_id", actor.UserID)
	return s.Get(ctx, id)
}

// Duplicate kaynağın malzemelerini değer olarak kopyalar. Kopya hiçbir menü
// öğesine bağlanmaz.
func (s *Service) Duplicate(ctx context.Context, actor auth.Actor, id uint) (*Detail, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var dup models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src models.Recipe
		if err := tx.Preload("Ingredients").First(&src, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Tarif bulunamadı")
			}
			return err
		}

		// Silinmiş kayıtlar dahil tüm tarifler arasında boş slug aranır
		newName, newSlug, err := slug.NextCopy(src.Name, func(candidate string) (bool, error) {
			return slug.Taken(tx.Unscoped(), &models.Recipe{}, candidate, 0)
		})
		if err != nil {
			return err
		}

		dup = models.Recipe{
			Name:          newName,
			Slug:          newSlug,
			Description:   src.Description,
			Instructions:  src.Instructions,
			EstimatedCost: src.EstimatedCost,
			ServingSize:   src.ServingSize,
		}
		if src.PreparationTime != nil {
			prep := *src.PreparationTime
			dup.PreparationTime = &prep
		}
		for _, line := range src.Ingredients {
			dup.Ingredients = append(dup.Ingredients, models.RecipeIngredient{
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
			})
		}

		if err := tx.Create(&dup).Error; err != nil {
			// Eşzamanlı iki kopyalama aynı slug'ı almaya çalışmış olabilir
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Retryable(err)
			}
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "recipe",
			EntityID:    dup.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Tarif kopyalandı: %s -> %s", src.Slug, dup.Slug),
			After:       dup,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("tarif kopyalandı", "source_id", id, "recipe_id", dup.ID, "slug", dup.Slug)
	return s.Get(ctx, dup.ID)
}

// SoftDelete sadece deleted_at'i işaretler; malzemeler ve menü bağlantısı
// olduğu gibi kalır.
func (s *Service) SoftDelete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Tarif bulunamadı")
			}
			return err
		}
		if err := tx.Delete(&r).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "recipe",
			EntityID:    r.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Tarif silindi: %s", r.Name),
			Before:      r,
		})
	})
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

// HardDelete tarifi (soft-delete edilmiş olsa bile) fiziksel olarak siler.
// Menü öğesi bağlantıları aynı transaction içinde temizlenir.
func (s *Service) HardDelete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.Unscoped().Preload("Ingredients").First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Tarif bulunamadı")
			}
			return err
		}

		if err := detachMenuItems(tx, r.ID); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("recipe_id = ?", r.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.Recipe{}, r.ID).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "recipe",
			EntityID:    r.ID,
			Action:      models.AuditActionHardDelete,
			Description: fmt.Sprintf("Tarif kalıcı olarak silindi: %s", r.Name),
			Before:      r,
		})
	})
	if err != nil {
		return apperr.Store(err)
	}

	s.logger.Infow("tarif kalıcı olarak silindi", "recipe_id", id, "user_id", actor.UserID)
	return nil
}

// Get silinmemiş bir tarifi malzemeleriyle döndürür.
func (s *Service) Get(ctx context.Context, id uint) (*Detail, error) {
	db := s.db.WithContext(ctx)

	var r models.Recipe
	if err := db.Preload("Ingredients", func(q *gorm.DB) *gorm.DB {
		return q.Order("id asc")
	}).Preload("Ingredients.Ingredient").First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Tarif bulunamadı")
		}
		return nil, apperr.Store(err)
	}

	links, err := menuLinks(db, []uint{r.ID})
	if err != nil {
		return nil, apperr.Store(err)
	}
	d := newDetail(r, links)
	return &d, nil
}

// List silinmemiş tarifleri isme göre döndürür.
func (s *Service) List(ctx context.Context) ([]Detail, error) {
	db := s.db.WithContext(ctx)

	var recipes []models.Recipe
	if err := db.Preload("Ingredients").Preload("Ingredients.Ingredient").Order("name asc").Find(&recipes).Error; err != nil {
		return nil, apperr.Store(err)
	}

	ids := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	links, err := menuLinks(db, ids)
	if err != nil {
		return nil, apperr.Store(err)
	}

	res := make([]Detail, 0, len(recipes))
	for _, r := range recipes {
		res = append(res, newDetail(r, links))
	}
	return res, nil
}

func newDetail(r models.Recipe, links map[uint]uint) Detail {
	d := Detail{Recipe: r}
	if menuID, ok := links[r.ID]; ok {
		d.MenuItemID = &menuID
	}
	if r.EstimatedCost.Valid && r.ServingSize > 0 {
		d.CostPerServing = decimal.NewNullDecimal(
			r.EstimatedCost.Decimal.DivRound(decimal.NewFromInt(int64(r.ServingSize)), 2),
		)
	}
	return d
}

func menuLinks(db *gorm.DB, recipeIDs []uint) (map[uint]uint, error) {
	links := make(map[uint]uint, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return links, nil
	}
	var items []models.MenuItem
	if err := db.Select("id", "recipe_id").Where("recipe_id IN ?", recipeIDs).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.RecipeID != nil {
			links[*item.RecipeID] = item.ID
		}
	}
	return links, nil
}

func ensureIngredientsExist(tx *gorm.DB, lines []IngredientLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}

	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	for _, id := range ids {
		if !exists[id] {
			return apperr.NotFound("Malzeme bulunamadı (ID: %d)", id)
		}
	}
	return nil
}

// replaceIngredients mevcut satırların hepsini siler ve listeyi yeniden
// yazar. Son yazan kazanır.
func replaceIngredients(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	if err := ensureIngredientsExist(tx, lines); err != nil {
		return err
	}
	if err := tx.Unscoped().Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}
	return tx.Create(&rows).Error
}

// estimateCost satır miktarı x ağırlıklı ortalama birim fiyat toplamıdır.
// Fiyatı bilinmeyen bir malzeme varsa maliyet boş kalır.
func estimateCost(tx *gorm.DB, lines []IngredientLine) (decimal.NullDecimal, error) {
	if len(lines) == 0 {
		return decimal.NullDecimal{}, nil
	}
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}
	costs, err := inventory.UnitCosts(tx, ids)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		unit, ok := costs[line.IngredientID]
		if !ok {
			return decimal.NullDecimal{}, nil
		}
		total = total.Add(line.Quantity.Mul(unit))
	}
	return decimal.NewNullDecimal(total.Round(2)), nil
}

func detachMenuItems(tx *gorm.DB, recipeID uint) error {
	return tx.Unscoped().Model(&models.MenuItem{}).
		Where("recipe_id = ?", recipeID).
		Update("recipe_id", nil).Error
}

func attachMenuItem(tx *gorm.DB, recipeID, menuItemID uint) error {
	var item models.MenuItem
	if err := tx.First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Menü öğesi bulunamadı")
		}
		return err
	}
	return tx.Model(&item).Update("recipe_id", recipeID).Error
}
