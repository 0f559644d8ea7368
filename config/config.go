// Package config loads domports settings from defaults, an optional YAML
// file and DOMPORTS_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DOMPORTS_LOGGER_LEVEL.
const EnvPrefix = "DOMPORTS"

// Config is the complete application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Page    PageConfig    `mapstructure:"page" yaml:"page"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Script  ScriptConfig  `mapstructure:"script" yaml:"script"`
}

// LoggerConfig configures the zap logger and its optional rotated file.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	// LogPorts writes every command and emission to the logger.
	LogPorts bool `mapstructure:"log_ports" yaml:"log_ports"`
}

// PageConfig describes the document commands act on.
type PageConfig struct {
	// BaseURL is the document URL for pages loaded from disk. Empty uses
	// the page's file URL.
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	ViewportWidth  float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
	// Layout reflows the page before geometry is reported.
	Layout bool `mapstructure:"layout" yaml:"layout"`
}

// NetworkConfig configures page loading and image preloading.
type NetworkConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent    string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxRedirects int           `mapstructure:"max_redirects" yaml:"max_redirects"`
	Preload      bool          `mapstructure:"preload" yaml:"preload"`
	RateLimit    float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst        int           `mapstructure:"burst" yaml:"burst"`
	CacheSize    int           `mapstructure:"cache_size" yaml:"cache_size"`
}

// ScriptConfig configures the JavaScript application.
type ScriptConfig struct {
	// Timeout bounds how long the event loop is drained.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Global is the name the application handle is bound to.
	Global string `mapstructure:"global" yaml:"global"`
	// PageScripts runs the page's own <script> elements before the
	// application scripts.
	PageScripts bool `mapstructure:"page_scripts" yaml:"page_scripts"`
}

// SetDefaults registers default values for every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "domports")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.log_ports", false)

	v.SetDefault("page.base_url", "")
	v.SetDefault("page.viewport_width", 1024)
	v.SetDefault("page.viewport_height", 768)
	v.SetDefault("page.layout", true)

	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.user_agent", "domports/1.0")
	v.SetDefault("network.max_redirects", 10)
	v.SetDefault("network.preload", true)
	v.SetDefault("network.rate_limit", 8)
	v.SetDefault("network.burst", 4)
	v.SetDefault("network.cache_size", 256)

	v.SetDefault("script.timeout", "5s")
	v.SetDefault("script.global", "app")
	v.SetDefault("script.page_scripts", false)
}

// NewDefaultConfig returns the configuration built from defaults alone.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("failed to load default config: %v", err))
	}
	return cfg
}

// BindEnv makes v read DOMPORTS_ variables, with dots in keys replaced
// by underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads the YAML config file at path into v. An empty path looks
// for config.yaml in the working directory and in ~/.domports, and a
// missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.domports")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config, expands ~ in file paths and validates
// the result. Defaults must already be registered on v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Logger.LogFile != "" {
		expanded, err := homedir.Expand(cfg.Logger.LogFile)
		if err != nil {
			return nil, fmt.Errorf("expand logger.log_file: %w", err)
		}
		cfg.Logger.LogFile = expanded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Page.ViewportWidth <= 0 || c.Page.ViewportHeight <= 0 {
		return fmt.Errorf("page viewport must be positive")
	}
	if c.Network.Timeout <= 0 {
		return fmt.Errorf("network.timeout must be positive")
	}
	if c.Network.MaxRedirects < 0 {
		return fmt.Errorf("network.max_redirects must not be negative")
	}
	if c.Network.CacheSize <= 0 {
		return fmt.Errorf("network.cache_size must be a positive integer")
	}
	if c.Script.Timeout <= 0 {
		return fmt.Errorf("script.timeout must be positive")
	}
	if c.Script.Global == "" {
		return fmt.Errorf("script.global must not be empty")
	}
	return nil
}
