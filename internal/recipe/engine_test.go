package recipe

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/database/dbtest"
	"restoran-admin/internal/logger"
	"restoran-admin/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var admin = auth.Actor{UserID: 1, Role: models.RoleAdmin}

type fixture struct {
	db  *gorm.DB
	svc *Service
	ing []models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{db: db, svc: NewService(db, logger.Nop())}
	for _, name := range []string{"un", "seker", "yumurta", "sut"} {
		f.ing = append(f.ing, dbtest.CreateIngredient(t, db, name))
	}
	return f
}

func line(id uint, qty string) IngredientLine {
	return IngredientLine{IngredientID: id, Quantity: decimal.RequireFromString(qty)}
}

func (f *fixture) lines(t *testing.T, recipeID uint) map[uint]string {
	t.Helper()
	var rows []models.RecipeIngredient
	require.NoError(t, f.db.Unscoped().Where("recipe_id = ?", recipeID).Find(&rows).Error)
	got := make(map[uint]string, len(rows))
	for _, r := range rows {
		_, dup := got[r.IngredientID]
		require.False(t, dup, "ingredient %d appears twice", r.IngredientID)
		got[r.IngredientID] = r.Quantity.String()
	}
	return got
}

func (f *fixture) linkedMenuItems(t *testing.T, recipeID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, f.db.Unscoped().Model(&models.MenuItem{}).Where("recipe_id = ?", recipeID).Pluck("id", &ids).Error)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestCreateRecipe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	menu := dbtest.CreateMenuItem(t, f.db, "kek-menu")

	d, err := f.svc.Create(ctx, admin, CreateInput{
		Name:        "Pamuk Kek",
		Ingredients: []IngredientLine{line(f.ing[0].ID, "0.5"), line(f.ing[2].ID, "3")},
		MenuItem:    MenuItem(menu.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, "pamuk-kek", d.Recipe.Slug)
	assert.Equal(t, 1, d.Recipe.ServingSize)
	require.NotNil(t, d.MenuItemID)
	assert.Equal(t, menu.ID, *d.MenuItemID)
	assert.Equal(t, map[uint]string{f.ing[0].ID: "0.5", f.ing[2].ID: "3"}, f.lines(t, d.Recipe.ID))
	assert.False(t, d.Recipe.EstimatedCost.Valid, "no import prices, cost unknown")
}

func TestCreateRecipeNameConflictWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, admin, CreateInput{Name: "Sütlaç"})
	require.NoError(t, err)

	menu := dbtest.CreateMenuItem(t, f.db, "sutlac-menu")
	_, err = f.svc.Create(ctx, admin, CreateInput{
		Name:        "  sütlaç ",
		Ingredients: []IngredientLine{line(f.ing[3].ID, "1")},
		MenuItem:    MenuItem(menu.ID),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&models.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Count(&count).Error)
	assert.Zero(t, count)

	var item models.MenuItem
	require.NoError(t, f.db.First(&item, menu.ID).Error)
	assert.Nil(t, item.RecipeID)
}

func TestCreateRecipeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	zero := 0

	tests := []struct {
		name string
		in   CreateInput
		kind apperr.Kind
	}{
		{"empty name", CreateInput{Name: "  "}, apperr.KindValidation},
		{"zero quantity", CreateInput{Name: "a", Ingredients: []IngredientLine{line(f.ing[0].ID, "0")}}, apperr.KindValidation},
		{"duplicate ingredient", CreateInput{Name: "b", Ingredients: []IngredientLine{line(f.ing[0].ID, "1"), line(f.ing[0].ID, "2")}}, apperr.KindValidation},
		{"serving size", CreateInput{Name: "c", ServingSize: &zero}, apperr.KindValidation},
		{"unknown ingredient", CreateInput{Name: "d", Ingredients: []IngredientLine{line(9999, "1")}}, apperr.KindNotFound},
		{"unknown menu item", CreateInput{Name: "e", MenuItem: MenuItem(9999)}, apperr.KindNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, admin, tc.in)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "failed creates must roll back")

	_, err := f.svc.Create(ctx, auth.Actor{UserID: 5, Role: models.RoleStaff}, CreateInput{Name: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestUpdateReplacesIngredientSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, err := f.svc.Create(ctx, admin, CreateInput{
		Name:        "Krep",
		Ingredients: []IngredientLine{line(f.ing[0].ID, "1"), line(f.ing[1].ID, "2"), line(f.ing[2].ID, "3")},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{
		Name:        "Krep",
		Ingredients: []IngredientLine{line(f.ing[2].ID, "4"), line(f.ing[3].ID, "0.25")},
	})
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{f.ing[2].ID: "4", f.ing[3].ID: "0.25"}, f.lines(t, d.Recipe.ID))

	// nil liste mevcut malzemeleri korur
	desc := "ince"
	got, err := f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{Name: "Krep", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "ince", got.Recipe.Description)
	assert.Len(t, f.lines(t, d.Recipe.ID), 2)

	// boş liste hepsini kaldırır
	_, err = f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{Name: "Krep", Ingredients: []IngredientLine{}})
	require.NoError(t, err)
	assert.Empty(t, f.lines(t, d.Recipe.ID))
}

func TestUpdateRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	menu := dbtest.CreateMenuItem(t, f.db, "pilav-menu")

	d, err := f.svc.Create(ctx, admin, CreateInput{
		Name:        "Pilav",
		Ingredients: []IngredientLine{line(f.ing[0].ID, "1")},
		MenuItem:    MenuItem(menu.ID),
	})
	require.NoError(t, err)

	// malzemeler değişir, sonra olmayan menü öğesi yüzünden hata alınır
	_, err = f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{
		Name:        "Tereyağlı Pilav",
		Ingredients: []IngredientLine{line(f.ing[3].ID, "2")},
		MenuItem:    MenuItem(9999),
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, map[uint]string{f.ing[0].ID: "1"}, f.lines(t, d.Recipe.ID))
	assert.Equal(t, []uint{menu.ID}, f.linkedMenuItems(t, d.Recipe.ID))

	var r models.Recipe
	require.NoError(t, f.db.First(&r, d.Recipe.ID).Error)
	assert.Equal(t, "Pilav", r.Name)
	assert.Equal(t, "pilav", r.Slug)
}

func TestUpdateSlugRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.Create(ctx, admin, CreateInput{Name: "Mantı"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, CreateInput{Name: "Börek"})
	require.NoError(t, err)

	// isim değişmediyse kontrol yok, slug korunur
	got, err := f.svc.Update(ctx, admin, a.Recipe.ID, UpdateInput{Name: "Mantı"})
	require.NoError(t, err)
	assert.Equal(t, "manti", got.Recipe.Slug)

	_, err = f.svc.Update(ctx, admin, a.Recipe.ID, UpdateInput{Name: "BÖREK"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err = f.svc.Update(ctx, admin, a.Recipe.ID, UpdateInput{Name: "Kayseri Mantısı"})
	require.NoError(t, err)
	assert.Equal(t, "kayseri-mantisi", got.Recipe.Slug)

	_, err = f.svc.Update(ctx, admin, 9999, UpdateInput{Name: "Yok"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateMenuLinkage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m1 := dbtest.CreateMenuItem(t, f.db, "m1")
	m2 := dbtest.CreateMenuItem(t, f.db, "m2")

	d, err := f.svc.Create(ctx, admin, CreateInput{Name: "Lahmacun", MenuItem: MenuItem(m1.ID)})
	require.NoError(t, err)
	assert.Equal(t, []uint{m1.ID}, f.linkedMenuItems(t, d.Recipe.ID))

	// başka bir menü öğesi doğrudan bu tarife işaret etse bile güncelleme tekilleştirir
	require.NoError(t, f.db.Model(&models.MenuItem{}).Where("id = ?", m2.ID).Update("recipe_id", d.Recipe.ID).Error)
	got, err := f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{Name: "Lahmacun", MenuItem: MenuItem(m2.ID)})
	require.NoError(t, err)
	assert.Equal(t, []uint{m2.ID}, f.linkedMenuItems(t, d.Recipe.ID))
	require.NotNil(t, got.MenuItemID)
	assert.Equal(t, m2.ID, *got.MenuItemID)

	// hedef verilmezse bağlantı kaldırılır
	got, err = f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{Name: "Lahmacun"})
	require.NoError(t, err)
	assert.Empty(t, f.linkedMenuItems(t, d.Recipe.ID))
	assert.Nil(t, got.MenuItemID)
}

func TestAtMostOneMenuItemPerRecipe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items := []models.MenuItem{
		dbtest.CreateMenuItem(t, f.db, "a"),
		dbtest.CreateMenuItem(t, f.db, "b"),
		dbtest.CreateMenuItem(t, f.db, "c"),
	}

	r1, err := f.svc.Create(ctx, admin, CreateInput{Name: "Bir", MenuItem: MenuItem(items[0].ID)})
	require.NoError(t, err)
	r2, err := f.svc.Create(ctx, admin, CreateInput{Name: "İki", MenuItem: MenuItem(items[1].ID)})
	require.NoError(t, err)

	steps := []func() error{
		func() error {
			_, err := f.svc.Update(ctx, admin, r1.Recipe.ID, UpdateInput{Name: "Bir", MenuItem: MenuItem(items[2].ID)})
			return err
		},
		func() error {
			// r2'nin menü öğesi r1'e geçer
			_, err := f.svc.Update(ctx, admin, r1.Recipe.ID, UpdateInput{Name: "Bir", MenuItem: MenuItem(items[1].ID)})
			return err
		},
		func() error {
			_, err := f.svc.Duplicate(ctx, admin, r1.Recipe.ID)
			return err
		},
		func() error {
			_, err := f.svc.Update(ctx, admin, r2.Recipe.ID, UpdateInput{Name: "İki", MenuItem: MenuItem(items[0].ID)})
			return err
		},
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		var recipeIDs []uint
		require.NoError(t, f.db.Unscoped().Model(&models.Recipe{}).Pluck("id", &recipeIDs).Error)
		for _, id := range recipeIDs {
			assert.LessOrEqual(t, len(f.linkedMenuItems(t, id)), 1, "step %d recipe %d", i, id)
		}
	}
}

func TestDuplicateTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	menu := dbtest.CreateMenuItem(t, f.db, "baklava-menu")
	prep := 45

	src, err := f.svc.Create(ctx, admin, CreateInput{
		Name:            "Baklava",
		PreparationTime: &prep,
		Ingredients:     []IngredientLine{line(f.ing[0].ID, "1"), line(f.ing[1].ID, "0.75")},
		MenuItem:        MenuItem(menu.ID),
	})
	require.NoError(t, err)

	first, err := f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.NoError(t, err)
	second, err := f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.NoError(t, err)

	assert.Equal(t, "baklava-copy", first.Recipe.Slug)
	assert.Equal(t, "baklava-copy-1", second.Recipe.Slug)
	assert.Equal(t, "Baklava copy", first.Recipe.Name)
	assert.Equal(t, "Baklava copy 1", second.Recipe.Name)
	assert.Nil(t, first.MenuItemID)
	assert.Nil(t, second.MenuItemID)
	assert.Equal(t, []uint{menu.ID}, f.linkedMenuItems(t, src.Recipe.ID))

	want := f.lines(t, src.Recipe.ID)
	assert.Equal(t, want, f.lines(t, first.Recipe.ID))
	assert.Equal(t, want, f.lines(t, second.Recipe.ID))
	require.NotNil(t, second.Recipe.PreparationTime)
	assert.Equal(t, 45, *second.Recipe.PreparationTime)

	// kopyanın satırları bağımsızdır
	_, err = f.svc.Update(ctx, admin, first.Recipe.ID, UpdateInput{Name: first.Recipe.Name, Ingredients: []IngredientLine{}})
	require.NoError(t, err)
	assert.Equal(t, want, f.lines(t, src.Recipe.ID))
}

func TestCreateWithDuplicateNameConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	src, err := f.svc.Create(ctx, admin, CreateInput{Name: "Baklava"})
	require.NoError(t, err)
	dup, err := f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, admin, CreateInput{Name: dup.Recipe.Name})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Where("name = ?", dup.Recipe.Name).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// kopyanın kopyası da adıyla slug'ı eşleşen bir kayıt üretir
	again, err := f.svc.Duplicate(ctx, admin, dup.Recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Baklava copy copy", again.Recipe.Name)
	assert.Equal(t, "baklava-copy-copy", again.Recipe.Slug)
}

// takeNextRecipeSlug bir sonraki tarif insert'inden hemen önce, aynı
// transaction içinde aynı slug'la başka bir tarif ekler.
func takeNextRecipeSlug(t *testing.T, db *gorm.DB) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:take_recipe_slug", func(tx *gorm.DB) {
		r, ok := tx.Statement.Dest.(*models.Recipe)
		if fired || !ok {
			return
		}
		fired = true
		other := models.Recipe{Name: "Rakip", Slug: r.Slug, ServingSize: 1}
		if err := tx.Session(&gorm.Session{NewDB: true}).Omit(clause.Associations).Create(&other).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func TestDuplicateSlugRaceIsRetryable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	src, err := f.svc.Create(ctx, admin, CreateInput{
		Name:        "Revani",
		Ingredients: []IngredientLine{line(f.ing[0].ID, "1"), line(f.ing[1].ID, "2")},
	})
	require.NoError(t, err)

	takeNextRecipeSlug(t, f.db)

	_, err = f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.True(t, apperr.IsRetryable(err))

	var recipes, lines int64
	require.NoError(t, f.db.Unscoped().Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, f.db.Unscoped().Model(&models.RecipeIngredient{}).Count(&lines).Error)
	assert.EqualValues(t, 1, recipes)
	assert.EqualValues(t, 2, lines)

	// çakışma geçtikten sonra tekrar denemek başarılı olur
	dup, err := f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "revani-copy", dup.Recipe.Slug)
}

func TestDuplicateSkipsSoftDeletedSlugs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	src, err := f.svc.Create(ctx, admin, CreateInput{Name: "Ayran"})
	require.NoError(t, err)
	first, err := f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(ctx, admin, first.Recipe.ID))

	second, err := f.svc.Duplicate(ctx, admin, src.Recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "ayran-copy-1", second.Recipe.Slug)

	_, err = f.svc.Duplicate(ctx, admin, first.Recipe.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSoftThenHardDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	menu := dbtest.CreateMenuItem(t, f.db, "cacik-menu")

	d, err := f.svc.Create(ctx, admin, CreateInput{
		Name:        "Cacık",
		Ingredients: []IngredientLine{line(f.ing[3].ID, "1")},
		MenuItem:    MenuItem(menu.ID),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDelete(ctx, admin, d.Recipe.ID))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.svc.Get(ctx, d.Recipe.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// soft delete satırlara ve bağlantıya dokunmaz
	assert.Len(t, f.lines(t, d.Recipe.ID), 1)
	assert.Equal(t, []uint{menu.ID}, f.linkedMenuItems(t, d.Recipe.ID))

	// aynı isimle yeni tarif açılabilir
	_, err = f.svc.Create(ctx, admin, CreateInput{Name: "Cacık"})
	require.NoError(t, err)

	require.NoError(t, f.svc.HardDelete(ctx, admin, d.Recipe.ID))

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&models.Recipe{}).Where("id = ?", d.Recipe.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.lines(t, d.Recipe.ID))

	var item models.MenuItem
	require.NoError(t, f.db.First(&item, menu.ID).Error)
	assert.Nil(t, item.RecipeID, "hard delete must clear the menu link")

	err = f.svc.HardDelete(ctx, admin, d.Recipe.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEstimatedCostPropagation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	imports := []models.IngredientTransaction{
		{IngredientID: f.ing[0].ID, Type: models.TransactionImport, Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(20), CreatedByID: 1},
		{IngredientID: f.ing[1].ID, Type: models.TransactionImport, Quantity: decimal.NewFromInt(4), Price: decimal.NewFromInt(50), CreatedByID: 1},
	}
	require.NoError(t, f.db.Create(&imports).Error)

	serving := 4
	d, err := f.svc.Create(ctx, admin, CreateInput{
		Name:        "Revani",
		ServingSize: &serving,
		Ingredients: []IngredientLine{line(f.ing[0].ID, "0.5"), line(f.ing[1].ID, "0.2")},
	})
	require.NoError(t, err)
	// 0.5*20 + 0.2*50 = 20
	require.True(t, d.Recipe.EstimatedCost.Valid)
	assert.True(t, d.Recipe.EstimatedCost.Decimal.Equal(decimal.NewFromInt(20)), "cost = %s", d.Recipe.EstimatedCost.Decimal)
	assert.True(t, d.CostPerServing.Decimal.Equal(decimal.NewFromInt(5)))

	manual := decimal.RequireFromString("33.50")
	got, err := f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{Name: "Revani", EstimatedCost: &manual})
	require.NoError(t, err)
	assert.True(t, got.Recipe.EstimatedCost.Decimal.Equal(manual))

	// fiyatı bilinmeyen malzeme maliyeti boş bırakır
	got, err = f.svc.Update(ctx, admin, d.Recipe.ID, UpdateInput{
		Name:        "Revani",
		Ingredients: []IngredientLine{line(f.ing[0].ID, "1"), line(f.ing[2].ID, "2")},
	})
	require.NoError(t, err)
	assert.False(t, got.Recipe.EstimatedCost.Valid)
}

func TestMenuItemRefUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    *uint
		wantErr bool
	}{
		{`null`, nil, false},
		{`"none"`, nil, false},
		{`"NONE"`, nil, false},
		{`""`, nil, false},
		{`12`, ptr(12), false},
		{`"12"`, ptr(12), false},
		{`0`, nil, true},
		{`1.5`, nil, true},
		{`"abc"`, nil, true},
		{`true`, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var body struct {
				Ref MenuItemRef `json:"menu_item_id"`
			}
			err := json.Unmarshal([]byte(`{"menu_item_id":`+tc.in+`}`), &body)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, body.Ref.ID)
		})
	}
}

func ptr(v uint) *uint { return &v }
