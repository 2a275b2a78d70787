package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     slog.Level

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	AdminUserIDs    []string
	AdminPolicyFile string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	RewardReconcileInterval time.Duration
	RewardReconcileWindow   time.Duration
}

const (
	defaultServerPort              = 8080
	defaultRateLimitRPS            = 5
	defaultRateLimitBurst          = 10
	defaultRewardReconcileInterval = 10 * time.Minute
	defaultRewardReconcileWindow   = 72 * time.Hour
)

// AdminFile is the YAML document referenced by ADMIN_POLICY_FILE.
type AdminFile struct {
	Admins []string `yaml:"admins"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getenv("DATABASE_URL"),
		JWTSecretKey:      getenv("JWT_SECRET_KEY"),
		R2AccountID:       getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		AdminPolicyFile:   getenv("ADMIN_POLICY_FILE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intFromEnv(getenv, "SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", lvl, err)
		}
	}

	cfg.AdminUserIDs = splitList(getenv("ADMIN_USER_IDS"))
	cfg.CORSAllowedOrigins = splitList(getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	cfg.RateLimitRPS = defaultRateLimitRPS
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", v)
		}
		cfg.RateLimitRPS = rps
	}
	if cfg.RateLimitBurst, err = intFromEnv(getenv, "RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}

	if cfg.RewardReconcileInterval, err = durationFromEnv(getenv, "REWARD_RECONCILE_INTERVAL", defaultRewardReconcileInterval); err != nil {
		return nil, err
	}
	if cfg.RewardReconcileWindow, err = durationFromEnv(getenv, "REWARD_RECONCILE_WINDOW", defaultRewardReconcileWindow); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAdminFile reads the admin allowlist file. A missing path yields an empty list.
func LoadAdminFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin policy file %s: %w", path, err)
	}
	var doc AdminFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse admin policy file %s: %w", path, err)
	}
	admins := make([]string, 0, len(doc.Admins))
	for _, id := range doc.Admins {
		if id = strings.TrimSpace(id); id != "" {
			admins = append(admins, id)
		}
	}
	return admins, nil
}

func intFromEnv(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func durationFromEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
