package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                string
	Port               string
	GinMode            string
	DBDriver           string
	DatabaseDSN        string
	RedisURL           string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	OTPTTL             time.Duration
	AllowedOrigins     []string
	SentimentURL       string
	RateLimitPerMinute int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8082"),
		GinMode:      os.Getenv("GIN_MODE"),
		DBDriver:     getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:  getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=smarthotel port=5432 sslmode=disable"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SentimentURL: os.Getenv("SENTIMENT_URL"),
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	rpm := getEnv("RATE_LIMIT_PER_MINUTE", "60")
	if cfg.RateLimitPerMinute, err = strconv.Atoi(rpm); err != nil || cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", rpm)
	}

	origins := []string{"http://localhost:3000"}
	if allowed := os.Getenv("ALLOWED_ORIGINS"); allowed != "" {
		for _, o := range strings.Split(allowed, ",") {
			if o = strings.TrimSpace(strings.TrimSuffix(o, "/")); o != "" {
				origins = append(origins, o)
			}
		}
	}
	cfg.AllowedOrigins = origins

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "smarthotel-dev-secret"
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, val)
	}
	return d, nil
}
