package auth

import (
	"restoran-admin/internal/apperr"
	"restoran-admin/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Actor isteği yapan kullanıcı. Her yazma işlemine açıkça geçirilir.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func (a Actor) RequireAdmin() error {
	if a.UserID == 0 || a.Role != models.RoleAdmin {
		return apperr.Forbidden("Bu işlem için yetkiniz yok")
	}
	return nil
}

// ActorFrom JWTMiddleware'in yerleştirdiği bilgilerden Actor üretir.
func ActorFrom(c *fiber.Ctx) (Actor, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return Actor{}, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return Actor{}, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}
	return Actor{UserID: userID, Role: role}, nil
}
