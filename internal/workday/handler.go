package workday

import (
	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type UpdateSettingsRequest struct {
	Days []DaySetting `json:"days"`
}

// GET /api/working-days
func ListHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := s.List(c.UserContext())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(rows)
	}
}

// PUT /api/admin/working-days
func UpdateSettingsHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		rows, err := s.UpdateSettings(c.UserContext(), actor, body.Days)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"days":    rows,
		})
	}
}
