package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config gom toàn bộ cấu hình của ứng dụng
type Config struct {
	Port     string
	Database DatabaseConfig
	Auth     AuthConfig
	MQTTURL  string
}

// DatabaseConfig describes the storage backend.
type DatabaseConfig struct {
	Driver string // "pgx" or "sqlite3"
	URL    string
}

// AuthConfig holds token and credential settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// LoadENV nạp file .env (nếu có) vào biến môi trường
func LoadENV() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads the .env file and the environment into a Config.
func Load() (*Config, error) {
	if err := LoadENV(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DATABASE_DRIVER", "pgx")),
			URL:    getEnv("DATABASE_URL", os.Getenv("POSTGRESQL_URI")),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		MQTTURL: os.Getenv("MQTT_URL"),
	}

	var err error
	if cfg.Auth.TokenTTL, err = getEnvDuration("TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.BcryptCost, err = getEnvInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}

	if cfg.Database.Driver != "pgx" && cfg.Database.Driver != "sqlite3" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want pgx or sqlite3)", cfg.Database.Driver)
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("you must set your 'DATABASE_URL' environmental variable")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("you must set your 'JWT_SECRET' environmental variable")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cfg, nil
}

// String masks the secret and the database credentials.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, TokenTTL: %s, MQTT: %t, Auth: ***}",
		c.Port, c.Database.Driver, c.Auth.TokenTTL, c.MQTTURL != "")
}

func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
