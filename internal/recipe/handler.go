package recipe

import (
	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RecipeRequest struct {
	Name            string           `json:"name"`
	Description     *string          `json:"description"`
	Instructions    *string          `json:"instructions"`
	EstimatedCost   *decimal.Decimal `json:"estimated_cost"`
	PreparationTime *int             `json:"preparation_time"`
	ServingSize     *int             `json:"serving_size"`
	Ingredients     []IngredientLine `json:"ingredients"`
	MenuItemID      MenuItemRef      `json:"menu_item_id"`
}

type RecipeIngredientResponse struct {
	IngredientID uint                  `json:"ingredient_id"`
	Name         string                `json:"name"`
	Unit         models.IngredientUnit `json:"unit"`
	Quantity     decimal.Decimal       `json:"quantity"`
}

type RecipeResponse struct {
	ID              uint                       `json:"id"`
	Name            string                     `json:"name"`
	Slug            string                     `json:"slug"`
	Description     string                     `json:"description"`
	Instructions    string                     `json:"instructions"`
	EstimatedCost   decimal.NullDecimal        `json:"estimated_cost"`
	CostPerServing  decimal.NullDecimal        `json:"cost_per_serving"`
	PreparationTime *int                       `json:"preparation_time"`
	ServingSize     int                        `json:"serving_size"`
	MenuItemID      *uint                      `json:"menu_item_id"`
	Ingredients     []RecipeIngredientResponse `json:"ingredients"`
	CreatedAt       string                     `json:"created_at"`
	UpdatedAt       string                     `json:"updated_at"`
}

func toResponse(d Detail) RecipeResponse {
	r := d.Recipe
	lines := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		item := RecipeIngredientResponse{IngredientID: line.IngredientID, Quantity: line.Quantity}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.Unit = line.Ingredient.Unit
		}
		lines = append(lines, item)
	}
	return RecipeResponse{
		ID:              r.ID,
		Name:            r.Name,
		Slug:            r.Slug,
		Description:     r.Description,
		Instructions:    r.Instructions,
		EstimatedCost:   r.EstimatedCost,
		CostPerServing:  d.CostPerServing,
		PreparationTime: r.PreparationTime,
		ServingSize:     r.ServingSize,
		MenuItemID:      d.MenuItemID,
		Ingredients:     lines,
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz tarif ID")
	}
	return uint(id), nil
}

// GET /api/recipes
func ListRecipesHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := s.List(c.UserContext())
		if err != nil {
			return apperr.ToFiber(err)
		}
		res := make([]RecipeResponse, 0, len(list))
		for _, d := range list {
			res = append(res, toResponse(d))
		}
		return c.JSON(res)
	}
}

// GET /api/recipes/:id
func GetRecipeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		d, err := s.Get(c.UserContext(), id)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toResponse(*d))
	}
}

// POST /api/admin/recipes
func CreateRecipeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		in := CreateInput{
			Name:            body.Name,
			EstimatedCost:   body.EstimatedCost,
			PreparationTime: body.PreparationTime,
			ServingSize:     body.ServingSize,
			Ingredients:     body.Ingredients,
			MenuItem:        body.MenuItemID,
		}
		if body.Description != nil {
			in.Description = *body.Description
		}
		if body.Instructions != nil {
			in.Instructions = *body.Instructions
		}

		d, err := s.Create(c.UserContext(), actor, in)
		if err != nil {
			return apperr.ToFiber(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"id":      d.Recipe.ID,
			"recipe":  toResponse(*d),
		})
	}
}

// PUT /api/admin/recipes/:id
func UpdateRecipeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		d, err := s.Update(c.UserContext(), actor, id, UpdateInput{
			Name:            body.Name,
			Description:     body.Description,
			Instructions:    body.Instructions,
			EstimatedCost:   body.EstimatedCost,
			PreparationTime: body.PreparationTime,
			ServingSize:     body.ServingSize,
			Ingredients:     body.Ingredients,
			MenuItem:        body.MenuItemID,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"recipe":  toResponse(*d),
		})
	}
}

// POST /api/admin/recipes/:id/duplicate
func DuplicateRecipeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		d, err := s.Duplicate(c.UserContext(), actor, id)
		if err != nil {
			if apperr.IsRetryable(err) {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return apperr.ToFiber(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"id":      d.Recipe.ID,
			"recipe":  toResponse(*d),
		})
	}
}

// DELETE /api/admin/recipes/:id
func DeleteRecipeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := s.SoftDelete(c.UserContext(), actor, id); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// DELETE /api/admin/recipes/:id/hard
func HardDeleteRecipeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := s.HardDelete(c.UserContext(), actor, id); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
