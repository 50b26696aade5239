package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeKeeping: vardiya başına bir puantaj kaydı. Saat alanları hesaplanır ve
// raporlama için saklanır.
type TimeKeeping struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	EmployeeID    uint            `gorm:"not null;uniqueIndex:idx_time_keeping_instance" json:"employee_id"`
	Employee      *Employee       `json:"employee,omitempty"`
	ShiftID       uint            `gorm:"index;not null;uniqueIndex:idx_time_keeping_instance" json:"shift_id"`
	Shift         *Shift          `json:"shift,omitempty"`
	WorkDate      time.Time       `gorm:"type:date;index;not null;uniqueIndex:idx_time_keeping_instance" json:"work_date"`
	CheckIn       time.Time       `gorm:"not null" json:"check_in"`
	CheckOut      *time.Time      `json:"check_out"`
	RegularHours  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"regular_hours"`
	OvertimeHours decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"overtime_hours"`
	TotalHours    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"total_hours"`
	OvertimeRate  decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"overtime_rate"` // kayıt anındaki çarpan
	CreatedByID   uint            `gorm:"index;not null" json:"created_by_id"`
	CreatedAt     time.Time       `json:"created_at"`
}
