package employee

import (
	"context"
	"testing"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/database/dbtest"
	"restoran-admin/internal/logger"
	"restoran-admin/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = auth.Actor{UserID: 1, Role: models.RoleAdmin}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var none = decimal.NullDecimal{}

func TestValidateSalary(t *testing.T) {
	tests := []struct {
		name         string
		typ          models.SalaryType
		base, hourly decimal.NullDecimal
		ok           bool
	}{
		{"hourly with rate", models.SalaryHourly, none, amount("120"), true},
		{"hourly without rate", models.SalaryHourly, amount("30000"), none, false},
		{"monthly with base", models.SalaryMonthly, amount("30000"), none, true},
		{"monthly without base", models.SalaryMonthly, none, amount("120"), false},
		{"mixed with both", models.SalaryMixed, amount("20000"), amount("80"), true},
		{"mixed without hourly", models.SalaryMixed, amount("20000"), none, false},
		{"mixed without base", models.SalaryMixed, none, amount("80"), false},
		{"zero rate", models.SalaryHourly, none, amount("0"), false},
		{"negative base", models.SalaryMonthly, amount("-1"), none, false},
		{"unknown type", "WEEKLY", amount("1"), amount("1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSalary(tt.typ, tt.base, tt.hourly)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestSalaryTypeFlags(t *testing.T) {
	assert.True(t, models.SalaryHourly.UsesHours())
	assert.False(t, models.SalaryHourly.UsesBaseSalary())
	assert.False(t, models.SalaryMonthly.UsesHours())
	assert.True(t, models.SalaryMonthly.UsesBaseSalary())
	assert.True(t, models.SalaryMixed.UsesHours())
	assert.True(t, models.SalaryMixed.UsesBaseSalary())
}

func TestCreateAndUpdateSalary(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db, logger.Nop())
	ctx := context.Background()

	user := models.User{Name: "Mehmet", Email: "mehmet@example.com", PasswordHash: "x", Role: models.RoleStaff}
	require.NoError(t, db.Create(&user).Error)

	emp, err := svc.Create(ctx, admin, CreateInput{
		UserID:     &user.ID,
		FullName:   "  Mehmet Kaya ",
		SalaryType: models.SalaryMonthly,
		BaseSalary: amount("30000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mehmet Kaya", emp.FullName)
	assert.True(t, emp.IsActive)

	_, err = svc.Create(ctx, admin, CreateInput{
		UserID:     &user.ID,
		FullName:   "İkinci Profil",
		SalaryType: models.SalaryHourly,
		HourlyRate: amount("100"),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	missing := uint(999)
	_, err = svc.Create(ctx, admin, CreateInput{
		UserID:     &missing,
		FullName:   "Hayalet",
		SalaryType: models.SalaryHourly,
		HourlyRate: amount("100"),
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// MIXED'e geçişte saatlik ücret de istenir
	_, err = svc.UpdateSalary(ctx, admin, emp.ID, SalaryInput{SalaryType: models.SalaryMixed, BaseSalary: amount("30000")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	updated, err := svc.UpdateSalary(ctx, admin, emp.ID, SalaryInput{
		SalaryType: models.SalaryMixed,
		BaseSalary: amount("20000"),
		HourlyRate: amount("90"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SalaryMixed, updated.SalaryType)

	var stored models.Employee
	require.NoError(t, db.First(&stored, emp.ID).Error)
	require.True(t, stored.HourlyRate.Valid)
	assert.True(t, decimal.NewFromInt(90).Equal(stored.HourlyRate.Decimal))

	_, err = svc.UpdateSalary(ctx, admin, 999, SalaryInput{SalaryType: models.SalaryHourly, HourlyRate: amount("1")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Create(ctx, auth.Actor{UserID: 2, Role: models.RoleStaff}, CreateInput{FullName: "X", SalaryType: models.SalaryHourly, HourlyRate: amount("1")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	employees, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestUnusedSalaryFieldIsCleared(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db, logger.Nop())
	ctx := context.Background()

	emp, err := svc.Create(ctx, admin, CreateInput{
		FullName:   "Zeynep Demir",
		SalaryType: models.SalaryHourly,
		BaseSalary: amount("25000"),
		HourlyRate: amount("110"),
	})
	require.NoError(t, err)
	assert.False(t, emp.BaseSalary.Valid)
	assert.True(t, emp.HourlyRate.Valid)

	_, err = svc.UpdateSalary(ctx, admin, emp.ID, SalaryInput{
		SalaryType: models.SalaryMonthly,
		BaseSalary: amount("32000"),
		HourlyRate: amount("110"),
	})
	require.NoError(t, err)

	var stored models.Employee
	require.NoError(t, db.First(&stored, emp.ID).Error)
	assert.Equal(t, models.SalaryMonthly, stored.SalaryType)
	require.True(t, stored.BaseSalary.Valid)
	assert.True(t, decimal.NewFromInt(32000).Equal(stored.BaseSalary.Decimal))
	assert.False(t, stored.HourlyRate.Valid)
}
