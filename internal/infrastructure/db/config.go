package db

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the overall application configuration.
type AppConfig struct {
	Database  Config        `yaml:"database"`
	Cache     CacheSection  `yaml:"cache"`
	Batch     BatchSection  `yaml:"batch"`
	Valuation TablesSection `yaml:"valuation"`
	Monitor   HTTPSection   `yaml:"monitor"`
}

// CacheSection holds the read-side cache configuration.
type CacheSection struct {
	Redis struct {
		Addr              string `yaml:"addr"`
		DB                int    `yaml:"db"`
		DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
	} `yaml:"redis"`
}

// BatchSection tunes the enrichment batch runner.
type BatchSection struct {
	Workers       int           `yaml:"workers"`
	ItemTimeout   time.Duration `yaml:"item_timeout"`
	WriteRPS      float64       `yaml:"write_rps"`
	WriteBurst    int           `yaml:"write_burst"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
}

// UnmarshalYAML accepts Go duration strings ("10s", "250ms") for the timeout
// fields; yaml.v3 cannot decode those into time.Duration on its own.
func (b *BatchSection) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		Workers       int     `yaml:"workers"`
		ItemTimeout   string  `yaml:"item_timeout"`
		WriteRPS      float64 `yaml:"write_rps"`
		WriteBurst    int     `yaml:"write_burst"`
		RetryAttempts int     `yaml:"retry_attempts"`
		RetryBackoff  string  `yaml:"retry_backoff"`
	}

	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}

	b.Workers = r.Workers
	b.WriteRPS = r.WriteRPS
	b.WriteBurst = r.WriteBurst
	b.RetryAttempts = r.RetryAttempts

	var err error
	if b.ItemTimeout, err = parseDuration(r.ItemTimeout); err != nil {
		return fmt.Errorf("batch.item_timeout: %w", err)
	}
	if b.RetryBackoff, err = parseDuration(r.RetryBackoff); err != nil {
		return fmt.Errorf("batch.retry_backoff: %w", err)
	}
	return nil
}

// TablesSection points at an optional knowledge-table override file.
type TablesSection struct {
	TablesPath string `yaml:"tables_path"`
}

// HTTPSection holds the monitor server bind address.
type HTTPSection struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoadAppConfig loads application configuration from a YAML file with
// environment variable overrides and defaults for anything unset.
func LoadAppConfig(configPath string) (*AppConfig, error) {
	var config AppConfig

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}

			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	applyEnvOverrides(&config.Database)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Cache.Redis.Addr = addr
	}

	// Defaults
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = 10
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = 5
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if config.Database.ConnMaxIdleTime == 0 {
		config.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if config.Database.QueryTimeout == 0 {
		config.Database.QueryTimeout = 30 * time.Second
	}
	if config.Cache.Redis.DefaultTTLSeconds == 0 {
		config.Cache.Redis.DefaultTTLSeconds = 300
	}
	if config.Batch.Workers == 0 {
		config.Batch.Workers = 4
	}
	if config.Batch.ItemTimeout == 0 {
		config.Batch.ItemTimeout = 10 * time.Second
	}
	if config.Batch.WriteRPS == 0 {
		config.Batch.WriteRPS = 25
	}
	if config.Batch.WriteBurst == 0 {
		config.Batch.WriteBurst = 5
	}
	if config.Batch.RetryAttempts == 0 {
		config.Batch.RetryAttempts = 3
	}
	if config.Batch.RetryBackoff == 0 {
		config.Batch.RetryBackoff = 250 * time.Millisecond
	}
	if config.Monitor.Host == "" {
		config.Monitor.Host = "127.0.0.1"
	}
	if config.Monitor.Port == 0 {
		config.Monitor.Port = 8080
	}

	return &config, nil
}

// UnmarshalYAML accepts Go duration strings for the pool timeout fields.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
		QueryTimeout    string `yaml:"query_timeout"`
		Enabled         bool   `yaml:"enabled"`
	}

	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}

	c.DSN = r.DSN
	c.MaxOpenConns = r.MaxOpenConns
	c.MaxIdleConns = r.MaxIdleConns
	c.Enabled = r.Enabled

	var err error
	if c.ConnMaxLifetime, err = parseDuration(r.ConnMaxLifetime); err != nil {
		return fmt.Errorf("database.conn_max_lifetime: %w", err)
	}
	if c.ConnMaxIdleTime, err = parseDuration(r.ConnMaxIdleTime); err != nil {
		return fmt.Errorf("database.conn_max_idle_time: %w", err)
	}
	if c.QueryTimeout, err = parseDuration(r.QueryTimeout); err != nil {
		return fmt.Errorf("database.query_timeout: %w", err)
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// applyEnvOverrides applies environment variable overrides to database config
func applyEnvOverrides(config *Config) {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		config.DSN = dsn
	}

	if enabled := os.Getenv("PG_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			config.Enabled = val
		}
	}

	if maxOpen := os.Getenv("PG_MAX_OPEN_CONNS"); maxOpen != "" {
		if val, err := strconv.Atoi(maxOpen); err == nil {
			config.MaxOpenConns = val
		}
	}

	if maxIdle := os.Getenv("PG_MAX_IDLE_CONNS"); maxIdle != "" {
		if val, err := strconv.Atoi(maxIdle); err == nil {
			config.MaxIdleConns = val
		}
	}

	if maxLifetime := os.Getenv("PG_CONN_MAX_LIFETIME"); maxLifetime != "" {
		if val, err := time.ParseDuration(maxLifetime); err == nil {
			config.ConnMaxLifetime = val
		}
	}

	if maxIdleTime := os.Getenv("PG_CONN_MAX_IDLE_TIME"); maxIdleTime != "" {
		if val, err := time.ParseDuration(maxIdleTime); err == nil {
			config.ConnMaxIdleTime = val
		}
	}

	if queryTimeout := os.Getenv("PG_QUERY_TIMEOUT"); queryTimeout != "" {
		if val, err := time.ParseDuration(queryTimeout); err == nil {
			config.QueryTimeout = val
		}
	}
}

// Validate validates the application configuration.
func (c *AppConfig) Validate() error {
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required when database is enabled")
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be positive")
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("max_idle_conns cannot be negative")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot exceed max_open_conns")
	}

	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be positive")
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive")
	}

	if c.Batch.WriteRPS <= 0 {
		return fmt.Errorf("write_rps must be positive")
	}

	return nil
}
