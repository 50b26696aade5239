package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalaryType string

const (
	SalaryHourly  SalaryType = "HOURLY"
	SalaryMonthly SalaryType = "MONTHLY"
	SalaryMixed   SalaryType = "MIXED"
)

// UsesHours: puantaj saatleri maaş hesabına girer mi
func (s SalaryType) UsesHours() bool {
	return s == SalaryHourly || s == SalaryMixed
}

// UsesBaseSalary: sabit aylık maaş var mı
func (s SalaryType) UsesBaseSalary() bool {
	return s == SalaryMonthly || s == SalaryMixed
}

func (s SalaryType) Valid() bool {
	return s == SalaryHourly || s == SalaryMonthly || s == SalaryMixed
}

type Employee struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	UserID     *uint               `gorm:"uniqueIndex" json:"user_id"`
	User       *User               `json:"user,omitempty"`
	FullName   string              `gorm:"size:150;not null" json:"full_name"`
	Position   string              `gorm:"size:100" json:"position"`
	SalaryType SalaryType          `gorm:"size:10;not null" json:"salary_type"`
	BaseSalary decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"base_salary"`
	HourlyRate decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"hourly_rate"`
	IsActive   bool                `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type Shift struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"` // "09:00"
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
