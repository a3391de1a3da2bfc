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

package config

import (
	"testing"

	"github.com/carverauto/ridelink/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("ZWIFT_USERNAME", "rider@example.com")
	t.Setenv("ZWIFT_PASSWORD", "hunter2")
	t.Setenv("ZWIFT_PLAYER_ID", "12345")
	t.Setenv("ZWIFT_HA_WEBHOOK_ID", "zwift_hook")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "rider@example.com", cfg.Username)
	assert.Equal(t, int64(12345), cfg.PlayerID)
	assert.Equal(t, "http://homeassistant:8123", cfg.HAURL)
	assert.Equal(t, 300, cfg.ProfileInterval)
	assert.Equal(t, 300, cfg.ActivitiesInterval)
	assert.Equal(t, 30, cfg.WorldInterval)
	assert.Equal(t, 60, cfg.TokenRefreshMargin)
	assert.Equal(t, "/data/tokens.json", cfg.TokenFile)
	assert.Len(t, cfg.RelayHosts, 4)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ZWIFT_WORLD_INTERVAL", "10")
	t.Setenv("ZWIFT_RELAY_HOSTS", "relay-a.example.com, relay-b.example.com")
	t.Setenv("ZWIFT_TOKEN_FILE", "/tmp/tokens.json")
	t.Setenv("ZWIFT_LOG_LEVEL", "debug")

	cfg, err := Load(logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.WorldInterval)
	assert.Equal(t, []string{"relay-a.example.com", "relay-b.example.com"}, cfg.RelayHosts)
	assert.Equal(t, "/tmp/tokens.json", cfg.TokenFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("ZWIFT_USERNAME", "")
	t.Setenv("ZWIFT_PASSWORD", "")
	t.Setenv("ZWIFT_PLAYER_ID", "")
	t.Setenv("ZWIFT_HA_WEBHOOK_ID", "")

	_, err := Load(logger.NewTestLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequired)

	// The failure message enumerates every recognized variable.
	assert.Contains(t, err.Error(), "ZWIFT_USERNAME")
	assert.Contains(t, err.Error(), "ZWIFT_RELAY_HOSTS")
	assert.Contains(t, err.Error(), "ZWIFT_LOG_LEVEL")
}

func TestLoadRejectsBadInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ZWIFT_PROFILE_INTERVAL", "-5")

	_, err := Load(logger.NewTestLogger())
	require.Error(t, err)
}

func TestLoadRejectsMalformedInt(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ZWIFT_PLAYER_ID", "not-a-number")

	_, err := Load(logger.NewTestLogger())
	require.Error(t, err)
}
