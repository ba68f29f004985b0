package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию сервера и расчетов
type Config struct {
	Port           int
	MaxPrincipal   float64
	MaxRate        float64
	MaxYears       int
	MaxHorizon     int
	DefaultHorizon int

	DataDir              string
	CorrectionRatesCSV   string
	DepreciationRatesCSV string
	MinUsedLife          int
	ResidualValue        float64

	RedisAddr      string
	DatabasePath   string
	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	OTELEndpoint    string
	OTELServiceName string
	OTELInsecure    bool
	OTELSampleRatio float64
	LogLevel        string
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл, если он существует (игнорируем ошибку)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvInt("PORT", 8000),
		MaxPrincipal:   getEnvFloat("MAX_PRINCIPAL", 1e11),
		MaxRate:        getEnvFloat("MAX_RATE", 100),
		MaxYears:       getEnvInt("MAX_YEARS", 50),
		MaxHorizon:     getEnvInt("MAX_HORIZON", 100),
		DefaultHorizon: getEnvInt("DEFAULT_HORIZON", 40),

		DataDir:              getEnvString("DATA_DIR", "data"),
		CorrectionRatesCSV:   getEnvString("CORRECTION_RATES_CSV", "data/building_correction_rates.csv"),
		DepreciationRatesCSV: getEnvString("DEPRECIATION_RATES_CSV", "data/depreciation_rates_jpn.csv"),
		MinUsedLife:          getEnvInt("MIN_USED_LIFE", 2),
		ResidualValue:        getEnvFloat("RESIDUAL_VALUE", 1),

		RedisAddr:      getEnvString("REDIS_ADDR", ""),
		DatabasePath:   getEnvString("DATABASE_PATH", ""),
		CacheTTL:       getEnvDuration("CACHE_TTL", 15*time.Minute),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 30),

		OTELEndpoint:    getEnvString("OTEL_ENDPOINT", ""),
		OTELServiceName: getEnvString("OTEL_SERVICE_NAME", "mcp-realty-server"),
		OTELInsecure:    getEnvString("OTEL_INSECURE", "false") == "true",
		OTELSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		LogLevel:        getEnvString("LOG_LEVEL", "INFO"),
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Horizon возвращает горизонт расчета: запрошенный или значение по умолчанию
func (c *Config) Horizon(requested int) int {
	if requested > 0 {
		return requested
	}
	return c.DefaultHorizon
}
