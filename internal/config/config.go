package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration, loaded from a yaml file
// selected by APP_ENV with env-var overrides for secrets.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"` // debug | release
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Governance GovernanceThresholds `yaml:"governance"`

	Delivery DeliveryConfig `yaml:"delivery"`

	Generator GeneratorConfig `yaml:"generator"`
}

// GovernanceThresholds are the static approval cutoffs used when no
// approval rule matches, plus the validity floor applied by the scorer.
// Injected at construction; nothing reads these as globals.
type GovernanceThresholds struct {
	AutoApproveSafety  float64  `yaml:"auto_approve_safety"`
	AutoApproveOverall float64  `yaml:"auto_approve_overall"`
	MinSafetyScore     float64  `yaml:"min_safety_score"`
	MinOverallScore    float64  `yaml:"min_overall_score"`
	BlockedIssueTerms  []string `yaml:"blocked_issue_terms"`
}

// DeliveryConfig controls the cache optimizer.
type DeliveryConfig struct {
	MinCompressSize int    `yaml:"min_compress_size"`
	CacheControl    string `yaml:"cache_control"`
	CDNBaseURL      string `yaml:"cdn_base_url"`
}

// GeneratorConfig controls the upstream generator retry policy.
type GeneratorConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BackoffBase time.Duration `yaml:"backoff_base"`
	BackoffCap  time.Duration `yaml:"backoff_cap"`
}

// UnmarshalYAML accepts Go duration strings ("1s", "500ms") for the
// backoff fields. Omitted fields keep their current values.
func (g *GeneratorConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxAttempts int    `yaml:"max_attempts"`
		BackoffBase string `yaml:"backoff_base"`
		BackoffCap  string `yaml:"backoff_cap"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxAttempts > 0 {
		g.MaxAttempts = raw.MaxAttempts
	}
	if raw.BackoffBase != "" {
		d, err := time.ParseDuration(raw.BackoffBase)
		if err != nil {
			return fmt.Errorf("generator.backoff_base: %w", err)
		}
		g.BackoffBase = d
	}
	if raw.BackoffCap != "" {
		d, err := time.ParseDuration(raw.BackoffCap)
		if err != nil {
			return fmt.Errorf("generator.backoff_cap: %w", err)
		}
		g.BackoffCap = d
	}
	return nil
}

// Load reads the yaml config file and applies env-var overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaults returns a Config pre-filled with the documented defaults so a
// partial yaml file still yields a runnable server.
func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.Mode = "debug"
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 3306
	cfg.Database.User = "content"
	cfg.Database.Name = "content_engine"
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 6379
	cfg.Redis.PoolSize = 10
	cfg.Governance = GovernanceThresholds{
		AutoApproveSafety:  0.95,
		AutoApproveOverall: 0.9,
		MinSafetyScore:     0.6,
		MinOverallScore:    0.4,
		BlockedIssueTerms:  []string{"prohibited", "inappropriate", "emergency", "urgent"},
	}
	cfg.Delivery = DeliveryConfig{
		MinCompressSize: 1024,
		CacheControl:    "public, max-age=86400, stale-while-revalidate=3600, stale-if-error=604800",
	}
	cfg.Generator = GeneratorConfig{
		MaxAttempts: 3,
		BackoffBase: 1 * time.Second,
		BackoffCap:  10 * time.Second,
	}
	return cfg
}

// applyEnvOverrides lets deploy environments override secrets and ports
// without editing the yaml file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

// DSN returns the MySQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}
