package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeHours(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		out := in.Add(d)
		return &out
	}

	tests := []struct {
		name string
		out  *time.Time
		want string
	}{
		{"no checkout", nil, "0"},
		{"checkout before checkin", at(-time.Hour), "0"},
		{"checkout equals checkin", at(0), "0"},
		{"exact hours", at(8 * time.Hour), "8"},
		{"one minute over", at(7*time.Hour + time.Minute), "7.5"},
		{"ten minutes over", at(7*time.Hour + 10*time.Minute), "7.5"},
		{"thirty minutes over", at(7*time.Hour + 30*time.Minute), "7.5"},
		{"thirty one minutes over", at(7*time.Hour + 31*time.Minute), "8"},
		{"forty minutes over", at(7*time.Hour + 40*time.Minute), "8"},
		{"seconds are floored", at(7*time.Hour + 30*time.Minute + 59*time.Second), "7.5"},
		{"under an hour", at(20 * time.Minute), "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHours(in, tt.out)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}
