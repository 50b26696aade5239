package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=restoran port=5432 sslmode=disable"

type Config struct {
	AppEnv      string
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Stok durumu: stok <= eşik ise LOW_STOCK
	LowStockThreshold decimal.Decimal
	// false ise stoğu eksiye düşüren CONSUME hareketi reddedilir
	AllowNegativeStock bool
	// Gönderilen standardHours ile sunucu hesabı arasındaki kabul edilebilir fark
	StandardHoursTolerance decimal.Decimal
}

// LoadEnvFile .env dosyasını (varsa) ortam değişkenlerine yükler.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// AppEnv logger kurulmadan önce ortam bilgisini okumak için.
func AppEnv() string {
	return getEnv("APP_ENV", "development")
}

func Load(log *zap.SugaredLogger) *Config {
	cfg := &Config{
		AppEnv:                 AppEnv(),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:            getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		CORSOrigins:            getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LowStockThreshold:      getDecimal(log, "LOW_STOCK_THRESHOLD", decimal.NewFromInt(5)),
		AllowNegativeStock:     getBool(log, "ALLOW_NEGATIVE_STOCK", false),
		StandardHoursTolerance: getDecimal(log, "STANDARD_HOURS_TOLERANCE", decimal.NewFromFloat(0.01)),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Warn("DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Warn("CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(log *zap.SugaredLogger, key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnw("geçersiz bool değeri, varsayılan kullanılıyor", "key", key, "value", v)
		return def
	}
	return b
}

func getDecimal(log *zap.SugaredLogger, key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		log.Warnw("geçersiz sayısal değer, varsayılan kullanılıyor", "key", key, "value", v)
		return def
	}
	return d
}
