// Package attendance puantaj kayıtlarını ve saat hesaplarını yönetir.
package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	halfHour = decimal.RequireFromString("0.5")
	oneHour  = decimal.NewFromInt(1)
)

// ComputeHours giriş-çıkış arasındaki süreyi yarım saatlik dilimlere
// yuvarlar: artık dakika yoksa tam saat, 1-30 dakika +0.5, 31-59 dakika +1.
// Çıkış yoksa ya da girişten önce/aynı andaysa 0 döner.
func ComputeHours(checkIn time.Time, checkOut *time.Time) decimal.Decimal {
	if checkOut == nil || !checkOut.After(checkIn) {
		return decimal.Zero
	}

	minutes := int64(checkOut.Sub(checkIn) / time.Minute)
	hours := decimal.NewFromInt(minutes / 60)

	switch rem := minutes % 60; {
	case rem == 0:
		return hours
	case rem <= 30:
		return hours.Add(halfHour)
	default:
		return hours.Add(oneHour)
	}
}
