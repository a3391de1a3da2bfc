/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the poller configuration from ZWIFT_-prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carverauto/ridelink/pkg/logger"
)

// EnvPrefix is prepended to every recognized environment variable.
const EnvPrefix = "ZWIFT_"

var ErrMissingRequired = errors.New("missing required configuration")

// Config is the full configuration surface of the poller process.
type Config struct {
	// Zwift account identity.
	Username string `json:"username"`
	Password string `json:"password"`
	PlayerID int64  `json:"player_id"`

	// Home Assistant webhook sink.
	HAURL       string `json:"ha_url"`
	HAWebhookID string `json:"ha_webhook_id"`
	HAToken     string `json:"ha_token"`

	// Poll intervals in seconds.
	ProfileInterval    int `json:"profile_interval"`
	ActivitiesInterval int `json:"activities_interval"`
	WorldInterval      int `json:"world_interval"`

	// Seconds before expiry at which tokens are considered stale.
	TokenRefreshMargin int `json:"token_refresh_margin"`

	RelayHosts []string `json:"relay_hosts"`
	TokenFile  string   `json:"token_file"`
	LogLevel   string   `json:"log_level"`

	Logging *logger.Config `json:"logging,omitempty"`
}

// Default returns a config pre-populated with every optional default.
func Default() *Config {
	return &Config{
		HAURL:              "http://homeassistant:8123",
		ProfileInterval:    300,
		ActivitiesInterval: 300,
		WorldInterval:      30,
		TokenRefreshMargin: 60,
		RelayHosts: []string{
			"us-or-rly101.zwift.com",
			"us-or-rly102.zwift.com",
			"eu-west-rly101.zwift.com",
			"eu-west-rly102.zwift.com",
		},
		TokenFile: "/data/tokens.json",
		LogLevel:  "info",
	}
}

// Load reads the configuration from the environment on top of the defaults
// and validates it.
func Load(log logger.Logger) (*Config, error) {
	cfg := Default()

	loader := NewEnvConfigLoader(log, EnvPrefix)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges. The returned error for
// missing identity fields enumerates the full recognized variable set so an
// operator can fix a deployment from the log alone.
func (c *Config) Validate() error {
	var missing []string

	if c.Username == "" {
		missing = append(missing, EnvPrefix+"USERNAME")
	}

	if c.Password == "" {
		missing = append(missing, EnvPrefix+"PASSWORD")
	}

	if c.PlayerID == 0 {
		missing = append(missing, EnvPrefix+"PLAYER_ID")
	}

	if c.HAWebhookID == "" {
		missing = append(missing, EnvPrefix+"HA_WEBHOOK_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s\n%s", ErrMissingRequired, strings.Join(missing, ", "), usage())
	}

	if c.ProfileInterval <= 0 || c.ActivitiesInterval <= 0 || c.WorldInterval <= 0 {
		return fmt.Errorf("%w: poll intervals must be positive integer seconds", ErrMissingRequired)
	}

	if len(c.RelayHosts) == 0 {
		return fmt.Errorf("%w: at least one relay host is required", ErrMissingRequired)
	}

	return nil
}

func usage() string {
	return `Required environment variables:
  ZWIFT_USERNAME              Zwift account email
  ZWIFT_PASSWORD              Zwift account password
  ZWIFT_PLAYER_ID             Zwift player ID
  ZWIFT_HA_WEBHOOK_ID         Home Assistant webhook ID
Optional environment variables:
  ZWIFT_HA_URL                Home Assistant URL (default: http://homeassistant:8123)
  ZWIFT_HA_TOKEN              Home Assistant long-lived access token
  ZWIFT_PROFILE_INTERVAL      Profile poll interval in seconds (default: 300)
  ZWIFT_ACTIVITIES_INTERVAL   Activities poll interval in seconds (default: 300)
  ZWIFT_WORLD_INTERVAL        World poll interval while riding (default: 30)
  ZWIFT_TOKEN_REFRESH_MARGIN  Seconds before expiry to refresh tokens (default: 60)
  ZWIFT_RELAY_HOSTS           Comma-separated relay host candidates
  ZWIFT_TOKEN_FILE            Path to store OAuth tokens (default: /data/tokens.json)
  ZWIFT_LOG_LEVEL             Logging level (default: info)`
}
