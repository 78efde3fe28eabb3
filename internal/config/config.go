package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload" // load .env before reading the environment
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the application configuration.
type Config struct {
	Env            string   `env:"APP_ENV" env-default:"development"`
	ServerPort     int      `env:"PORT" env-default:"3000"`
	LogLevel       string   `env:"LOG_LEVEL" env-default:"info"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	PasswordHasher string   `env:"PASSWORD_HASHER" env-default:"bcrypt"`

	Database DatabaseConfig
	Email    EmailConfig
	Reset    ResetConfig
	Redis    RedisConfig
}

// DatabaseConfig selects the SQL backend. Path is used by sqlite, URL by postgres and mysql.
type DatabaseConfig struct {
	Type string `env:"DB_TYPE" env-default:"sqlite"`
	Path string `env:"DATABASE_PATH" env-default:"./taskhub.db"`
	URL  string `env:"DATABASE_URL"`
}

// EmailConfig configures the outbound mail transport.
type EmailConfig struct {
	Provider  string `env:"EMAIL_PROVIDER" env-default:"log"` // log, smtp or ses
	From      string `env:"EMAIL_FROM"`
	SMTPHost  string `env:"SMTP_HOST"`
	SMTPPort  int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUser  string `env:"SMTP_USER"`
	SMTPPass  string `env:"SMTP_PASS"`
	AWSRegion string `env:"AWS_REGION" env-default:"us-east-1"`
}

// ResetConfig configures the password recovery flow.
type ResetConfig struct {
	URL           string        `env:"RESET_URL" env-default:"http://localhost:5173/reset_confirm.html"`
	TokenTTL      time.Duration `env:"RESET_TOKEN_TTL" env-default:"1h"`
	SweepSchedule string        `env:"RESET_SWEEP_SCHEDULE" env-default:"@every 15m"`
}

// RedisConfig configures the rate limiter. An empty Addr disables it. TrustProxy keys
// clients by X-Forwarded-For and must only be set behind a reverse proxy.
type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" env-default:"0"`
	RateLimit  int           `env:"RATE_LIMIT_REQUESTS" env-default:"10"`
	RateWindow time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m"`
	TrustProxy bool          `env:"TRUST_PROXY" env-default:"false"`
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
