package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

type Config struct {
	AppPort    string `mapstructure:"APP_PORT"`
	AuthIssuer string `mapstructure:"AUTH_ISSUER"`

	// Мастер-секрет оператора: из него выводятся ключ свода и секрет
	// подписи токенов. Без него сервис не стартует.
	AdminSecret string `mapstructure:"ADMIN_SECRET"`
	// Пароль дефолтной учётки при синтезе; пусто — берётся мастер-секрет
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	// JSON-список учёток на случай отсутствия data/users.json
	AdminUsersSeed string `mapstructure:"ADMIN_USERS_SEED"`

	// --- GitHub (система записи) ---
	GitHubToken  string `mapstructure:"GITHUB_TOKEN"`
	GitHubOwner  string `mapstructure:"GITHUB_OWNER"`
	GitHubRepo   string `mapstructure:"GITHUB_REPO"`
	GitHubBranch string `mapstructure:"GITHUB_BRANCH"`

	// --- Redis (опциональный кеш) ---
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- S3 (опциональное медиа-хранилище) ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`
	MediaURL    string `mapstructure:"MEDIA_BASE_URL"`
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  GitHubOwner: %s\n", c.GitHubOwner))
	sb.WriteString(fmt.Sprintf("  GitHubRepo: %s\n", c.GitHubRepo))
	sb.WriteString(fmt.Sprintf("  GitHubBranch: %s\n", c.GitHubBranch))

	// секреты маскируем
	sb.WriteString("  AdminSecret: " + masked(c.AdminSecret) + "\n")
	sb.WriteString("  AdminPassword: " + masked(c.AdminPassword) + "\n")
	sb.WriteString("  GitHubToken: " + masked(c.GitHubToken) + "\n")

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString("  RedisPassword: " + masked(c.RedisPassword) + "\n")

	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	sb.WriteString("  S3AccessKey: " + masked(c.S3AccessKey) + "\n")
	sb.WriteString("  S3SecretKey: " + masked(c.S3SecretKey) + "\n")
	sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
	sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))
	sb.WriteString(fmt.Sprintf("  MediaURL: %s\n", c.MediaURL))

	return sb.String()
}

func masked(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT", "AUTH_ISSUER",
		"ADMIN_SECRET", "ADMIN_PASSWORD", "ADMIN_USERS_SEED",
		"GITHUB_TOKEN", "GITHUB_OWNER", "GITHUB_REPO", "GITHUB_BRANCH",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE", "MEDIA_BASE_URL",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.AppPort == "" {
		cfg.AppPort = ":8080"
	}
	if cfg.AuthIssuer == "" {
		cfg.AuthIssuer = "shreeadvaya-admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = cfg.AdminSecret
	}
	return &cfg, nil
}

// Validate — предусловия деплоя; их отсутствие фатально, не ретраится
func (c *Config) Validate() error {
	if c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required: %w", domain.ErrConfig)
	}
	if c.GitHubToken == "" || c.GitHubOwner == "" || c.GitHubRepo == "" {
		return fmt.Errorf("GITHUB_TOKEN/GITHUB_OWNER/GITHUB_REPO are required: %w", domain.ErrConfig)
	}
	return nil
}

// HasRedis/HasS3 — опциональные подсистемы включаются наличием адреса
func (c *Config) HasRedis() bool { return c.RedisAddr != "" }
func (c *Config) HasS3() bool    { return c.S3Endpoint != "" && c.S3Bucket != "" }
