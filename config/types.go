package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Default values applied by SetDefaults.
const (
	DefaultEndpoint      = "https://apibase.vercel.app/api/route"
	DefaultTimeout       = 30 * time.Second
	DefaultRatePerSecond = 4.0
	DefaultBurst         = 2
	DefaultPageSize      = 50
	DefaultThreshold     = 20
	DefaultSort          = "alpha-asc"
	DefaultQuiescence    = 5 * time.Second
	DefaultUtilityPath   = "libs/SteamUtility"
	DefaultSteamPidFile  = "~/.steam/steam.pid"
)

// Config is the root of idler.yml / idler.toml.
type Config struct {
	// SteamID is the 64-bit Steam account id whose library is fetched.
	SteamID string `yaml:"steam_id,omitempty" toml:"steam_id,omitempty"`

	API       APIConfig       `yaml:"api,omitempty" toml:"api,omitempty"`
	Library   LibraryConfig   `yaml:"library,omitempty" toml:"library,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty" toml:"telemetry,omitempty"`
	Helper    HelperConfig    `yaml:"helper,omitempty" toml:"helper,omitempty"`

	// Extensions holds every top-level section that is not part of the core
	// schema (for example "logging"). Decode with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"-" toml:"-"`
}

// APIConfig configures the remote aggregation endpoint.
type APIConfig struct {
	Endpoint      string        `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	RatePerSecond float64       `yaml:"rate_per_second,omitempty" toml:"rate_per_second,omitempty"`
	Burst         int           `yaml:"burst,omitempty" toml:"burst,omitempty"`
}

// LibraryConfig configures view derivation and paging.
type LibraryConfig struct {
	PageSize    int    `yaml:"page_size,omitempty" toml:"page_size,omitempty"`
	Threshold   int    `yaml:"threshold,omitempty" toml:"threshold,omitempty"`
	DefaultSort string `yaml:"default_sort,omitempty" toml:"default_sort,omitempty"`
}

// TelemetryConfig configures the usage statistics aggregator.
type TelemetryConfig struct {
	// Enabled defaults to true when unset.
	Enabled    *bool         `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Quiescence time.Duration `yaml:"quiescence,omitempty" toml:"quiescence,omitempty"`
}

// IsEnabled reports whether telemetry reporting is on.
func (t TelemetryConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// HelperConfig locates the native helper and the Steam client.
type HelperConfig struct {
	// UtilityPath is resolved relative to the directory of the running
	// executable unless absolute.
	UtilityPath string `yaml:"utility_path,omitempty" toml:"utility_path,omitempty"`
	// SteamPidFile is the PID file the Steam client writes while running.
	SteamPidFile string `yaml:"steam_pid_file,omitempty" toml:"steam_pid_file,omitempty"`
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.API.Endpoint == "" {
		c.API.Endpoint = DefaultEndpoint
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.API.RatePerSecond == 0 {
		c.API.RatePerSecond = DefaultRatePerSecond
	}
	if c.API.Burst == 0 {
		c.API.Burst = DefaultBurst
	}
	if c.Library.PageSize == 0 {
		c.Library.PageSize = DefaultPageSize
	}
	if c.Library.Threshold == 0 {
		c.Library.Threshold = DefaultThreshold
	}
	if c.Library.DefaultSort == "" {
		c.Library.DefaultSort = DefaultSort
	}
	if c.Telemetry.Quiescence == 0 {
		c.Telemetry.Quiescence = DefaultQuiescence
	}
	if c.Helper.UtilityPath == "" {
		c.Helper.UtilityPath = DefaultUtilityPath
	}
	if c.Helper.SteamPidFile == "" {
		c.Helper.SteamPidFile = DefaultSteamPidFile
	}
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// UnmarshalExtension decodes a custom top-level section into target, which must
// be a pointer. A missing section leaves target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
