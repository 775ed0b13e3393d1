package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port string

	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       string
	DBSSLMode    string
	DBMaxRetries int
	AutoMigrate  bool

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	Location            *time.Location
	AnnualLeaveTypeName string
	MaxLeaveSpanDays    int
	HolidayCacheTTL     time.Duration
	OutboxPollInterval  time.Duration

	OTLPEndpoint string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
}

// DSN is the libpq-style connection string used by gorm and migrate.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// Load reads .env when present, then the process environment. Environment
// variables win over .env, which wins over the defaults below.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "go_leave")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("ANNUAL_LEAVE_TYPE_NAME", "Annual Leave")
	v.SetDefault("MAX_LEAVE_SPAN_DAYS", 366)
	v.SetDefault("HOLIDAY_CACHE_TTL", "1h")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "3s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.AutomaticEnv()

	cfg := &Config{
		Port:                v.GetString("PORT"),
		DBHost:              v.GetString("DB_HOST"),
		DBUser:              v.GetString("DB_USER"),
		DBPassword:          v.GetString("DB_PASSWORD"),
		DBName:              v.GetString("DB_NAME"),
		DBPort:              v.GetString("DB_PORT"),
		DBSSLMode:           v.GetString("DB_SSLMODE"),
		DBMaxRetries:        v.GetInt("DB_MAX_RETRIES"),
		AutoMigrate:         v.GetBool("AUTO_MIGRATE"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		KafkaBroker:         v.GetString("KAFKA_BROKER"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		AnnualLeaveTypeName: strings.TrimSpace(v.GetString("ANNUAL_LEAVE_TYPE_NAME")),
		MaxLeaveSpanDays:    v.GetInt("MAX_LEAVE_SPAN_DAYS"),
		OTLPEndpoint:        v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPS:        v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:      v.GetInt("RATE_LIMIT_BURST"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.HolidayCacheTTL, err = parseDuration(v, "HOLIDAY_CACHE_TTL"); err != nil {
		return nil, err
	}
	if cfg.OutboxPollInterval, err = parseDuration(v, "OUTBOX_POLL_INTERVAL"); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		zap.L().Warn("JWT_SECRET is not set, every authenticated request will be rejected")
	}
	if cfg.AnnualLeaveTypeName == "" {
		return nil, fmt.Errorf("ANNUAL_LEAVE_TYPE_NAME must not be empty")
	}
	if cfg.MaxLeaveSpanDays < 1 {
		return nil, fmt.Errorf("MAX_LEAVE_SPAN_DAYS must be positive")
	}
	if cfg.DBMaxRetries < 1 {
		cfg.DBMaxRetries = 1
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
