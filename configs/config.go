package configs

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port string `env:"PORT, default=3004"`
	Env  string `env:"GO_ENV, default=development"`

	// StorageDriver selects the stores: "postgres" or "memory".
	StorageDriver string `env:"STORAGE_DRIVER, default=postgres"`

	DBHost     string `env:"DB_HOST, default=localhost"`
	DBPort     int    `env:"DB_PORT, default=5432"`
	DBUser     string `env:"DB_USER, default=postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME, default=tasktracker"`
	DBSSLMode  string `env:"DB_SSLMODE, default=disable"`

	RedisHost     string `env:"REDIS_HOST, default=localhost"`
	RedisPort     int    `env:"REDIS_PORT, default=6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB, default=0"`

	SessionSecret string        `env:"SESSION_SECRET, required"`
	SessionTTL    time.Duration `env:"SESSION_TTL, default=24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE, default=false"`

	LogDir string `env:"LOG_DIR, default=logs"`

	// The admin account is seeded only when AdminEmail is set.
	AdminUsername string `env:"ADMIN_USERNAME, default=admin"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// RateLimitMax is requests per minute per client IP; 0 disables the limiter.
	RateLimitMax     int    `env:"RATE_LIMIT_MAX, default=100"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS, default=*"`
}

func LoadConfig() (Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment only")
		}
	}

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.StorageDriver != "postgres" && cfg.StorageDriver != "memory" {
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.AdminEmail != "" && len(cfg.AdminPassword) < 6 {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD must be at least 6 characters when ADMIN_EMAIL is set")
	}
	return cfg, nil
}
