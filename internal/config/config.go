// Package config loads application settings from config.yaml, SLEEPR_* environment variables
// and an optional .env file. User data such as bedtime and reminders lives in the store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/validation"
)

type PaywallConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"gte=1"`
}

type NotifierConfig struct {
	// Sender is "tray" or "stdout".
	Sender string `mapstructure:"sender" yaml:"sender" validate:"oneof=tray stdout"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Timezone            string         `mapstructure:"timezone" yaml:"timezone" validate:"timezone"`
	DebounceMs          int            `mapstructure:"debounce_ms" yaml:"debounce_ms" validate:"gte=0"`
	GraceSeconds        int            `mapstructure:"grace_seconds" yaml:"grace_seconds" validate:"gte=0"`
	StalenessSec        int            `mapstructure:"staleness_sec" yaml:"staleness_sec" validate:"gte=0"`
	Recurrence          string         `mapstructure:"recurrence" yaml:"recurrence" validate:"oneof=daily once"`
	DispatchIntervalSec int            `mapstructure:"dispatch_interval_sec" yaml:"dispatch_interval_sec" validate:"gte=1"`
	Paywall             PaywallConfig  `mapstructure:"paywall" yaml:"paywall"`
	Notifier            NotifierConfig `mapstructure:"notifier" yaml:"notifier"`
}

func (c *AppConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c *AppConfig) GraceWindow() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}

func (c *AppConfig) Staleness() time.Duration {
	return time.Duration(c.StalenessSec) * time.Second
}

func (c *AppConfig) DispatchInterval() time.Duration {
	return time.Duration(c.DispatchIntervalSec) * time.Second
}

func (c *AppConfig) PaywallTimeout() time.Duration {
	return time.Duration(c.Paywall.TimeoutSec) * time.Second
}

// DefaultConfigPath returns ~/.config/sleepr/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", constants.ConfigFileName)
	}
	return filepath.Join(home, ".config", constants.AppName, constants.ConfigFileName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timezone", "Local")
	v.SetDefault("debounce_ms", constants.DefaultDebounce.Milliseconds())
	v.SetDefault("grace_seconds", int(constants.DefaultGraceWindow.Seconds()))
	v.SetDefault("staleness_sec", int(constants.DefaultStaleness.Seconds()))
	v.SetDefault("recurrence", "daily")
	v.SetDefault("dispatch_interval_sec", int(constants.DefaultDispatchInterval.Seconds()))
	v.SetDefault("paywall.base_url", "")
	v.SetDefault("paywall.timeout_sec", int(constants.DefaultPaywallTimeout.Seconds()))
	v.SetDefault("notifier.sender", "tray")
}

// Load reads configuration from path. A missing file is not an error; defaults and
// environment variables still apply. A .env file in the working directory is loaded first.
func Load(path string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("timezone", cfg.Timezone)
	v.Set("debounce_ms", cfg.DebounceMs)
	v.Set("grace_seconds", cfg.GraceSeconds)
	v.Set("staleness_sec", cfg.StalenessSec)
	v.Set("recurrence", cfg.Recurrence)
	v.Set("dispatch_interval_sec", cfg.DispatchIntervalSec)
	v.Set("paywall.base_url", cfg.Paywall.BaseURL)
	v.Set("paywall.timeout_sec", cfg.Paywall.TimeoutSec)
	v.Set("notifier.sender", cfg.Notifier.Sender)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
