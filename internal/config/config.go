package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Table     TableConfig
	Inventory InventoryConfig
	Log       LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// ServerConfig holds HTTP and session settings.
type ServerConfig struct {
	Listen        string
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	CSRF          bool
}

// TableConfig holds data table defaults.
type TableConfig struct {
	PageSize  int           `mapstructure:"page_size"`
	PageSizes []int         `mapstructure:"page_sizes"`
	ViewTTL   time.Duration `mapstructure:"view_ttl"`
}

// InventoryConfig holds inventory rules.
type InventoryConfig struct {
	LowStockThreshold int  `mapstructure:"low_stock_threshold"`
	SeedSample        bool `mapstructure:"seed_sample"`
	Currency          string
}

// LogConfig selects logrus level and formatter.
type LogConfig struct {
	Level  string
	Format string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "gexx")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(dataDir(), "gexx.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.session_ttl", 24*time.Hour)
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.csrf", true)
	v.SetDefault("table.page_size", 10)
	v.SetDefault("table.page_sizes", []int{10, 20, 30, 40, 50})
	v.SetDefault("table.view_ttl", 30*time.Minute)
	v.SetDefault("inventory.low_stock_threshold", 15)
	v.SetDefault("inventory.seed_sample", true)
	v.SetDefault("inventory.currency", "USD")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from file and env. Env var overrides use prefix GEXX_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("GEXX_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "gexx"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GEXX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.Validate()
}

// Validate rejects settings the application cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("config: database.path is required")
	}
	if c.Table.PageSize <= 0 {
		return fmt.Errorf("config: table.page_size must be positive, got %d", c.Table.PageSize)
	}
	for _, n := range c.Table.PageSizes {
		if n <= 0 {
			return fmt.Errorf("config: table.page_sizes must be positive, got %d", n)
		}
	}
	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("config: inventory.low_stock_threshold must not be negative")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The session secret is never written; it belongs in the environment or the secrets store.
func Save(cfg Config) error {
	path := os.Getenv("GEXX_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "gexx", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("server.listen", cfg.Server.Listen)
	v.Set("server.session_ttl", cfg.Server.SessionTTL.String())
	v.Set("server.secure_cookies", cfg.Server.SecureCookies)
	v.Set("server.csrf", cfg.Server.CSRF)
	v.Set("table.page_size", cfg.Table.PageSize)
	v.Set("table.page_sizes", cfg.Table.PageSizes)
	v.Set("table.view_ttl", cfg.Table.ViewTTL.String())
	v.Set("inventory.low_stock_threshold", cfg.Inventory.LowStockThreshold)
	v.Set("inventory.seed_sample", cfg.Inventory.SeedSample)
	v.Set("inventory.currency", cfg.Inventory.Currency)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
