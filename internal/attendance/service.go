package attendance

import (
	"context"
	"errors"
	"time"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/models"
	"restoran-admin/internal/workday"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var maxOvertime = decimal.NewFromInt(24)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateTimeKeepingInput struct {
	Employee      EmployeeRef
	ShiftID       uint
	WorkDate      time.Time
	CheckIn       time.Time
	CheckOut      *time.Time
	OvertimeHours decimal.Decimal
}

// dateOnly saat bilgisini atıp UTC gece yarısına çeker.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) CreateTimeKeeping(ctx context.Context, actor auth.Actor, in CreateTimeKeepingInput) (*models.TimeKeeping, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if in.ShiftID == 0 {
		return nil, apperr.Validation("Vardiya zorunlu")
	}
	if in.WorkDate.IsZero() {
		return nil, apperr.Validation("Çalışma tarihi zorunlu")
	}
	if in.CheckIn.IsZero() {
		return nil, apperr.Validation("Giriş saati zorunlu")
	}
	if in.OvertimeHours.IsNegative() {
		return nil, apperr.Validation("Fazla mesai negatif olamaz")
	}
	if in.OvertimeHours.GreaterThan(maxOvertime) {
		return nil, apperr.Validation("Fazla mesai 24 saati geçemez")
	}

	workDate := dateOnly(in.WorkDate)
	regular := ComputeHours(in.CheckIn, in.CheckOut)

	var entry models.TimeKeeping
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emp, err := resolveEmployee(tx, in.Employee)
		if err != nil {
			return err
		}

		var shift models.Shift
		if err := tx.First(&shift, in.ShiftID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Vardiya bulunamadı")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.TimeKeeping{}).
			Where("employee_id = ? AND shift_id = ? AND work_date = ?", emp.ID, shift.ID, workDate).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("Bu çalışan için %s tarihli vardiya kaydı zaten var", workDate.Format("2006-01-02"))
		}

		rate := oneHour
		dayCfg, err := workday.ForDate(tx, workDate)
		if err != nil {
			return err
		}
		if dayCfg != nil {
			rate = dayCfg.OvertimeRate
		}

		entry = models.TimeKeeping{
			EmployeeID:    emp.ID,
			ShiftID:       shift.ID,
			WorkDate:      workDate,
			CheckIn:       in.CheckIn,
			CheckOut:      in.CheckOut,
			RegularHours:  regular,
			OvertimeHours: in.OvertimeHours,
			TotalHours:    regular.Add(in.OvertimeHours),
			OvertimeRate:  rate,
			CreatedByID:   actor.UserID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "time_keeping",
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: "Puantaj girildi: " + emp.FullName + " " + workDate.Format("2006-01-02"),
			After:       entry,
		})
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Infow("puantaj kaydı oluşturuldu",
		"time_keeping_id", entry.ID,
		"employee_id", entry.EmployeeID,
		"total_hours", entry.TotalHours.String(),
	)
	return &entry, nil
}

type EmployeeHours struct {
	EmployeeID     uint                `json:"employee_id"`
	FullName       string              `json:"full_name"`
	SalaryType     models.SalaryType   `json:"salary_type"`
	UsesHours      bool                `json:"uses_hours"`
	UsesBaseSalary bool                `json:"uses_base_salary"`
	Entries        int64               `json:"entries"`
	RegularHours   decimal.Decimal     `json:"regular_hours"`
	OvertimeHours  decimal.Decimal     `json:"overtime_hours"`
	TotalHours     decimal.Decimal     `json:"total_hours"`
	EstimatedPay   decimal.NullDecimal `json:"estimated_pay"`
}

type summaryRow struct {
	EmployeeID       uint
	Entries          int64
	Regular          decimal.Decimal
	Overtime         decimal.Decimal
	Total            decimal.Decimal
	WeightedOvertime decimal.Decimal
}

// MonthlySummary ay içindeki puantajları çalışan bazında toplar. Tahmini
// ücret, saatlik ücretlilerde fazla mesai her kaydın kendi çarpanıyla
// ağırlıklandırılarak hesaplanır.
func (s *Service) MonthlySummary(ctx context.Context, year int, month time.Month) ([]EmployeeHours, error) {
	if month < time.January || month > time.December {
		return nil, apperr.Validation("Geçersiz ay")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	db := s.db.WithContext(ctx)

	var rows []summaryRow
	err := db.Model(&models.TimeKeeping{}).
		Select(`employee_id,
			COUNT(*) AS entries,
			COALESCE(SUM(regular_hours), 0) AS regular,
			COALESCE(SUM(overtime_hours), 0) AS overtime,
			COALESCE(SUM(total_hours), 0) AS total,
			COALESCE(SUM(overtime_hours * overtime_rate), 0) AS weighted_overtime`).
		Where("work_date >= ? AND work_date < ?", from, to).
		Group("employee_id").
		Order("employee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(rows) == 0 {
		return []EmployeeHours{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.EmployeeID)
	}
	var employees []models.Employee
	if err := db.Where("id IN ?", ids).Find(&employees).Error; err != nil {
		return nil, apperr.Store(err)
	}
	byID := make(map[uint]models.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	res := make([]EmployeeHours, 0, len(rows))
	for _, r := range rows {
		emp := byID[r.EmployeeID]
		res = append(res, EmployeeHours{
			EmployeeID:     r.EmployeeID,
			FullName:       emp.FullName,
			SalaryType:     emp.SalaryType,
			UsesHours:      emp.SalaryType.UsesHours(),
			UsesBaseSalary: emp.SalaryType.UsesBaseSalary(),
			Entries:        r.Entries,
			RegularHours:   r.Regular,
			OvertimeHours:  r.Overtime,
			TotalHours:     r.Total,
			EstimatedPay:   estimatePay(emp, r),
		})
	}
	return res, nil
}

func estimatePay(emp models.Employee, r summaryRow) decimal.NullDecimal {
	pay := decimal.Zero
	if emp.SalaryType.UsesBaseSalary() {
		if !emp.BaseSalary.Valid {
			return decimal.NullDecimal{}
		}
		pay = pay.Add(emp.BaseSalary.Decimal)
	}
	if emp.SalaryType.UsesHours() {
		if !emp.HourlyRate.Valid {
			return decimal.NullDecimal{}
		}
		hours := r.Regular.Add(r.WeightedOvertime)
		pay = pay.Add(hours.Mul(emp.HourlyRate.Decimal))
	}
	return decimal.NewNullDecimal(pay.Round(2))
}
