package attendance

import (
	"time"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TimeKeepingRequest: çalışan employee_ref ile ya da eski istemciler için
// employee_id (profil) / user_id alanlarından biriyle gönderilir.
type TimeKeepingRequest struct {
	EmployeeRef   *EmployeeRef    `json:"employee_ref"`
	EmployeeID    *uint           `json:"employee_id"`
	UserID        *uint           `json:"user_id"`
	ShiftID       uint            `json:"shift_id"`
	WorkDate      string          `json:"work_date"` // YYYY-MM-DD
	CheckIn       time.Time       `json:"check_in"`
	CheckOut      *time.Time      `json:"check_out"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

func (r TimeKeepingRequest) employeeRef() (EmployeeRef, error) {
	set := 0
	var ref EmployeeRef
	if r.EmployeeRef != nil {
		ref = *r.EmployeeRef
		set++
	}
	if r.EmployeeID != nil {
		ref = ByProfileID(*r.EmployeeID)
		set++
	}
	if r.UserID != nil {
		ref = ByUserID(*r.UserID)
		set++
	}
	if set != 1 {
		return EmployeeRef{}, fiber.NewError(fiber.StatusBadRequest, "employee_ref, employee_id veya user_id alanlarından yalnızca biri gönderilmeli")
	}
	return ref, nil
}

type ShiftRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// POST /api/admin/time-keepings
func CreateTimeKeepingHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body TimeKeepingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		ref, err := body.employeeRef()
		if err != nil {
			return err
		}
		workDate, err := time.Parse("2006-01-02", body.WorkDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz tarih formatı (YYYY-MM-DD)")
		}

		entry, err := s.CreateTimeKeeping(c.UserContext(), actor, CreateTimeKeepingInput{
			Employee:      ref,
			ShiftID:       body.ShiftID,
			WorkDate:      workDate,
			CheckIn:       body.CheckIn,
			CheckOut:      body.CheckOut,
			OvertimeHours: body.OvertimeHours,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":      true,
			"time_keeping": entry,
		})
	}
}

// GET /api/time-keepings/summary?year=2024&month=6
func MonthlySummaryHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		year := c.QueryInt("year", now.Year())
		month := c.QueryInt("month", int(now.Month()))

		res, err := s.MonthlySummary(c.UserContext(), year, time.Month(month))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{
			"year":      year,
			"month":     month,
			"employees": res,
		})
	}
}

// GET /api/shifts
func ListShiftsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shifts, err := s.ListShifts(c.UserContext())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(shifts)
	}
}

// POST /api/admin/shifts
func CreateShiftHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body ShiftRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		shift, err := s.CreateShift(c.UserContext(), actor, CreateShiftInput{
			Name:      body.Name,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"shift":   shift,
		})
	}
}
