package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Values come from defaults, then an
// optional YAML file named by HRFORMS_CONFIG, then environment variables.
type Config struct {
	MongoURI      string        `yaml:"mongoUri"`
	MongoDatabase string        `yaml:"mongoDatabase"`
	RedisAddr     string        `yaml:"redisAddr"`
	HTTPPort      string        `yaml:"httpPort"`
	JWTSecret     string        `yaml:"jwtSecret"`
	DraftTTL      time.Duration `yaml:"draftTtl"`
	LogLevel      string        `yaml:"logLevel"`
	LogFormat     string        `yaml:"logFormat"` // console or json
	CORSOrigins   string        `yaml:"corsOrigins"`
	// TenantKeys maps a company to the key that must be presented to mint
	// tokens for it. A company without a key cannot obtain tokens.
	TenantKeys map[string]string `yaml:"tenantKeys"`
}

func Default() *Config {
	return &Config{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "hrforms",
		RedisAddr:     "localhost:6379",
		HTTPPort:      "8080",
		JWTSecret:     "change-me",
		DraftTTL:      24 * time.Hour,
		LogLevel:      "info",
		LogFormat:     "console",
		CORSOrigins:   "*",
		TenantKeys:    map[string]string{},
	}
}

func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("HRFORMS_CONFIG"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.RedisAddr = trimRedisScheme(cfg.RedisAddr)
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.RedisAddr = trimRedisScheme(getEnv("REDIS_URI", cfg.RedisAddr))
	cfg.HTTPPort = getEnv("PORT", cfg.HTTPPort)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)

	if v := os.Getenv("DRAFT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: DRAFT_TTL: %w", err)
		}
		cfg.DraftTTL = ttl
	}
	if v := os.Getenv("TENANT_KEYS"); v != "" {
		keys, err := parseTenantKeys(v)
		if err != nil {
			return err
		}
		cfg.TenantKeys = keys
	}
	return nil
}

// parseTenantKeys reads "company:key,company:key".
func parseTenantKeys(v string) (map[string]string, error) {
	keys := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		company, key, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || company == "" || key == "" {
			return nil, fmt.Errorf("config: TENANT_KEYS: bad entry %q", pair)
		}
		keys[company] = key
	}
	return keys, nil
}

func trimRedisScheme(addr string) string {
	return strings.TrimPrefix(addr, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
