package employee

import (
	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	UserID     *uint               `json:"user_id"`
	FullName   string              `json:"full_name"`
	Position   string              `json:"position"`
	SalaryType models.SalaryType   `json:"salary_type"`
	BaseSalary decimal.NullDecimal `json:"base_salary"`
	HourlyRate decimal.NullDecimal `json:"hourly_rate"`
}

type SalaryRequest struct {
	SalaryType models.SalaryType   `json:"salary_type"`
	BaseSalary decimal.NullDecimal `json:"base_salary"`
	HourlyRate decimal.NullDecimal `json:"hourly_rate"`
}

// GET /api/employees?active=true
func ListEmployeesHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employees, err := s.List(c.UserContext(), c.QueryBool("active", false))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(employees)
	}
}

// POST /api/admin/employees
func CreateEmployeeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		emp, err := s.Create(c.UserContext(), actor, CreateInput{
			UserID:     body.UserID,
			FullName:   body.FullName,
			Position:   body.Position,
			SalaryType: body.SalaryType,
			BaseSalary: body.BaseSalary,
			HourlyRate: body.HourlyRate,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"employee": emp,
		})
	}
}

// PUT /api/admin/employees/:id/salary
func UpdateSalaryHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz çalışan ID")
		}

		var body SalaryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		emp, err := s.UpdateSalary(c.UserContext(), actor, uint(id), SalaryInput{
			SalaryType: body.SalaryType,
			BaseSalary: body.BaseSalary,
			HourlyRate: body.HourlyRate,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"employee": emp,
		})
	}
}
