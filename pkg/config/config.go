package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Controls struct {
		LagDays         int    `yaml:"lag_days"`
		MinContributors int    `yaml:"min_contributors"`
		ClientIDEnv     string `yaml:"client_id_env"`
	} `yaml:"controls"`
	Executor struct {
		Type    string        `yaml:"type"` // remote or clickhouse
		BaseURL string        `yaml:"base_url"`
		AppID   string        `yaml:"app_id"`
		APIKey  string        `yaml:"api_key"`
		Table   string        `yaml:"table"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"executor"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Audit struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic"`
		Compression string   `yaml:"compression"`
	} `yaml:"audit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets and endpoints
// with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TRADEGATE_API_BASE_URL"); v != "" {
		c.Executor.BaseURL = v
	}
	if v := os.Getenv("TRADEGATE_APP_ID"); v != "" {
		c.Executor.AppID = v
	}
	if v := os.Getenv("TRADEGATE_API_KEY"); v != "" {
		c.Executor.APIKey = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("AUDIT_BROKERS"); v != "" {
		c.Audit.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Controls.LagDays == 0 {
		c.Controls.LagDays = 30
	}
	if c.Controls.MinContributors == 0 {
		c.Controls.MinContributors = 5
	}
	if c.Controls.ClientIDEnv == "" {
		c.Controls.ClientIDEnv = "TRADEGATE_CLIENT_ID"
	}
	if c.Executor.Table == "" {
		c.Executor.Table = "trade_records"
	}
	if c.Executor.Timeout == 0 {
		c.Executor.Timeout = 30 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Executor.Type != "remote" && c.Executor.Type != "clickhouse" {
		return fmt.Errorf("executor.type must be 'remote' or 'clickhouse', got '%s'", c.Executor.Type)
	}
	if c.Executor.Type == "remote" {
		if c.Executor.BaseURL == "" {
			return fmt.Errorf("executor.base_url is required for remote executor")
		}
		if c.Executor.AppID == "" {
			return fmt.Errorf("executor.app_id is required for remote executor")
		}
	}
	if c.Executor.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required for clickhouse executor")
	}
	if c.Controls.LagDays < 0 {
		return fmt.Errorf("controls.lag_days must be non-negative")
	}
	if c.Controls.MinContributors < 1 {
		return fmt.Errorf("controls.min_contributors must be at least 1")
	}
	if c.Audit.Enabled && len(c.Audit.Brokers) == 0 {
		return fmt.Errorf("audit.brokers cannot be empty when audit is enabled")
	}
	return nil
}
