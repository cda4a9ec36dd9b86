package config

import (
	"fmt"
	"net/url"

	"github.com/grovetools/idler/errors"
)

// Validate checks if the configuration is valid. It expects SetDefaults to
// have run.
func (c *Config) Validate() error {
	if err := validateEndpoint(c.API.Endpoint); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid api.endpoint").
			WithDetail("endpoint", c.API.Endpoint)
	}
	if c.API.Timeout < 0 {
		return errors.ConfigInvalid("api.timeout cannot be negative")
	}
	if c.API.RatePerSecond < 0 {
		return errors.ConfigInvalid("api.rate_per_second cannot be negative")
	}
	if c.API.Burst < 0 {
		return errors.ConfigInvalid("api.burst cannot be negative")
	}

	if c.Library.PageSize < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("library.page_size must be at least 1, got %d", c.Library.PageSize))
	}
	if c.Library.Threshold < 0 {
		return errors.ConfigInvalid("library.threshold cannot be negative")
	}

	if c.Telemetry.Quiescence <= 0 {
		return errors.ConfigInvalid("telemetry.quiescence must be positive")
	}

	if c.SteamID != "" {
		for _, r := range c.SteamID {
			if r < '0' || r > '9' {
				return errors.ConfigInvalid("steam_id must be numeric").
					WithDetail("steam_id", c.SteamID)
			}
		}
	}

	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
