package menu

import (
	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateMenuItemRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	Status      models.MenuItemStatus `json:"status"`
}

type UpdateMenuItemRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Price       *decimal.Decimal       `json:"price"`
	IsActive    *bool                  `json:"is_active"`
	Status      *models.MenuItemStatus `json:"status"`
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz menü öğesi ID")
	}
	return uint(id), nil
}

// GET /api/menu-items
func ListMenuItemsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := s.List(c.UserContext())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(items)
	}
}

// POST /api/admin/menu-items
func CreateMenuItemHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body CreateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		item, err := s.Create(c.UserContext(), actor, CreateInput{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			Status:      body.Status,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "menu_item": item})
	}
}

// PUT /api/admin/menu-items/:id
func UpdateMenuItemHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		item, err := s.Update(c.UserContext(), actor, id, UpdateInput{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			IsActive:    body.IsActive,
			Status:      body.Status,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"success": true, "menu_item": item})
	}
}

// POST /api/admin/menu-items/:id/duplicate
func DuplicateMenuItemHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		item, err := s.Duplicate(c.UserContext(), actor, id)
		if err != nil {
			if apperr.IsRetryable(err) {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "menu_item": item})
	}
}

// DELETE /api/admin/menu-items/:id
func DeleteMenuItemHandler(s *Service) fiber.Handler {
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
