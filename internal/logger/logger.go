package logger

import (
	"go.uber.org/zap"
)

// New production ortamında JSON, diğer ortamlarda okunabilir konsol çıktısı üretir.
func New(env string) *zap.SugaredLogger {
	if env == "production" {
		return zap.Must(zap.NewProduction()).Sugar()
	}
	return zap.Must(zap.NewDevelopment()).Sugar()
}

// Nop testler ve logger verilmeyen servisler için.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
