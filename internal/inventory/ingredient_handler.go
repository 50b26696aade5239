package inventory

import (
	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type IngredientResponse struct {
	ID   uint                  `json:"id"`
	Name string                `json:"name"`
	Code string                `json:"code"`
	Unit models.IngredientUnit `json:"unit"`
	Slug string                `json:"slug"`
}

type StockResponse struct {
	IngredientResponse
	Stock  decimal.Decimal `json:"stock"`
	Status StockStatus     `json:"status"`
}

type CreateIngredientRequest struct {
	Name string                `json:"name"`
	Code string                `json:"code"` // Opsiyonel
	Unit models.IngredientUnit `json:"unit"`
}

type UpdateIngredientRequest struct {
	Name *string                `json:"name"`
	Code *string                `json:"code"`
	Unit *models.IngredientUnit `json:"unit"`
}

type RecordTransactionRequest struct {
	Type     models.IngredientTransactionType `json:"type"`
	Quantity decimal.Decimal                  `json:"quantity"`
	Price    decimal.Decimal                  `json:"price"`
	Notes    string                           `json:"notes"`
}

func toIngredientResponse(ing models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: ing.ID, Name: ing.Name, Code: ing.Code, Unit: ing.Unit, Slug: ing.Slug}
}

// GET /api/ingredients/stock
func ListStockHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lines, err := l.ListStock(c.UserContext())
		if err != nil {
			return apperr.ToFiber(err)
		}

		res := make([]StockResponse, 0, len(lines))
		for _, line := range lines {
			res = append(res, StockResponse{
				IngredientResponse: toIngredientResponse(line.Ingredient),
				Stock:              line.Stock,
				Status:             line.Status,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/ingredients/:id/stock
func GetStockHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme ID")
		}

		stock, err := l.CurrentStock(c.UserContext(), uint(id))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{
			"ingredient_id": id,
			"stock":         stock,
			"status":        l.Status(stock),
		})
	}
}

// POST /api/admin/ingredients
func CreateIngredientHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body CreateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		ing, err := l.CreateIngredient(c.UserContext(), actor, CreateIngredientInput{
			Name: body.Name,
			Code: body.Code,
			Unit: body.Unit,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":    true,
			"ingredient": toIngredientResponse(*ing),
		})
	}
}

// PUT /api/admin/ingredients/:id
func UpdateIngredientHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme ID")
		}

		var body UpdateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		ing, err := l.UpdateIngredient(c.UserContext(), actor, uint(id), UpdateIngredientInput{
			Name: body.Name,
			Code: body.Code,
			Unit: body.Unit,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"ingredient": toIngredientResponse(*ing),
		})
	}
}

// DELETE /api/admin/ingredients/:id
func DeleteIngredientHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme ID")
		}

		if err := l.DeleteIngredient(c.UserContext(), actor, uint(id)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// POST /api/admin/ingredients/:id/transactions
func RecordTransactionHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme ID")
		}

		var body RecordTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		entry, err := l.RecordTransaction(c.UserContext(), actor, RecordTransactionInput{
			IngredientID: uint(id),
			Type:         body.Type,
			Quantity:     body.Quantity,
			Price:        body.Price,
			Notes:        body.Notes,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":     true,
			"transaction": entry,
		})
	}
}
