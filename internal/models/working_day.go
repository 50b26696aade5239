package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Weekdays pazartesiden başlayan sabit sıra.
var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func DayOfWeekOf(t time.Time) DayOfWeek {
	// time.Sunday == 0
	return Weekdays[(int(t.Weekday())+6)%7]
}

func (d DayOfWeek) Valid() bool {
	for _, w := range Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

type WorkingDayConfig struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DayOfWeek     DayOfWeek       `gorm:"size:10;uniqueIndex;not null" json:"day_of_week"`
	IsWorkingDay  bool            `gorm:"not null" json:"is_working_day"`
	StartTime     *string         `gorm:"size:5" json:"start_time"`
	EndTime       *string         `gorm:"size:5" json:"end_time"`
	StandardHours decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"standard_hours"`
	OvertimeRate  decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"overtime_rate"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
