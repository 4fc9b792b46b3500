package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	APIBaseURL      string        `env:"API_BASE_URL" envDefault:"http://localhost:5000"`
	APITimeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	CartPolicy      string        `env:"CART_POLICY" envDefault:"reject"`
	BreakerEnabled  bool          `env:"BREAKER_ENABLED" envDefault:"true"`

	RedisAddr     string   `env:"REDIS_ADDR"`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	JournalPath   string   `env:"JOURNAL_PATH" envDefault:"checkout-journal.db"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaGroupID  string   `env:"KAFKA_GROUP_ID"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	OTelEndpoint   string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file (files names it explicitly; otherwise
// ./.env) and then parses the environment. Variables already set win over
// the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
