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

// Package api is the HTTP client for the Zwift relay API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/carverauto/ridelink/pkg/logger"
)

const (
	lightTimeout = 10 * time.Second
	dataTimeout  = 30 * time.Second

	// Consecutive fetch failures against the cached relay host before the
	// cache is invalidated and the next poll cycle re-probes.
	reprobeThreshold = 3

	userAgent = "ZwiftMobileLink/5.0 (HA)"
)

// playerStateAccepts is the ordered list of content-negotiation attempts
// for the binary player state endpoint. Relays disagree on which Accept
// header they honor, so each is tried independently.
var playerStateAccepts = []string{
	"application/octet-stream",
	"application/x-protobuf",
	"application/vnd.google.protobuf",
	"*/*",
}

// Payload is a fetched JSON document kept generic so that the change
// detection digest covers every field the service returns.
type Payload = map[string]interface{}

// Config carries the client construction parameters.
type Config struct {
	RelayHosts []string
	PlayerID   int64
}

// Client fetches profile, activities and live player state from the relay
// API. The first probed host that answers is cached as the active host;
// sustained fetch failures invalidate the cache so the scheduler re-probes.
type Client struct {
	config      Config
	lightClient *http.Client
	dataClient  *http.Client
	logger      logger.Logger

	mu            sync.Mutex
	activeHost    string
	fetchFailures int
}

// NewClient creates an API client over the candidate relay host list.
func NewClient(config Config, log logger.Logger) *Client {
	return &Client{
		config:      config,
		lightClient: &http.Client{Timeout: lightTimeout},
		dataClient:  &http.Client{Timeout: dataTimeout},
		logger:      log,
	}
}

// ActiveHost returns the cached relay host, or "" when a probe is needed.
func (c *Client) ActiveHost() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.activeHost
}

// ProbeRelayHosts iterates the candidate list in order and caches the
// first host that answers an authenticated profile request with 200.
func (c *Client) ProbeRelayHosts(ctx context.Context, token string) (string, error) {
	for _, host := range c.config.RelayHosts {
		url := fmt.Sprintf("https://%s/api/profiles/%d", host, c.config.PlayerID)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return "", err
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.lightClient.Do(req)
		if err != nil {
			c.logger.Debug().Str("host", host).Err(err).Msg("Relay host probe failed")
			continue
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			c.logger.Info().Str("host", host).Msg("Found working relay host")

			c.mu.Lock()
			c.activeHost = host
			c.fetchFailures = 0
			c.mu.Unlock()

			return host, nil
		}

		c.logger.Debug().Str("host", host).Int("status", resp.StatusCode).Msg("Relay host probe rejected")
	}

	c.logger.Warn().Msg("No working relay host found")

	return "", ErrNoRelayHost
}

// GetProfile fetches the player profile document.
func (c *Client) GetProfile(ctx context.Context, token string) (Payload, error) {
	url := c.apiURL(fmt.Sprintf("/api/profiles/%d", c.config.PlayerID))

	var profile Payload
	if err := c.getJSON(ctx, url, token, &profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// GetActivities fetches a page of the player's activity history.
func (c *Client) GetActivities(ctx context.Context, token string, start, limit int) ([]Payload, error) {
	url := c.apiURL(fmt.Sprintf("/api/profiles/%d/activities?start=%d&limit=%d",
		c.config.PlayerID, start, limit))

	var activities []Payload
	if err := c.getJSON(ctx, url, token, &activities); err != nil {
		return nil, err
	}

	if activities == nil {
		activities = []Payload{}
	}

	return activities, nil
}

// GetPlayerState fetches the raw binary player state from the world relay,
// walking the ordered Accept header list until one attempt succeeds.
func (c *Client) GetPlayerState(ctx context.Context, token string, worldID int64) ([]byte, error) {
	url := c.apiURL(fmt.Sprintf("/relay/worlds/%d/players/%d", worldID, c.config.PlayerID))

	for _, accept := range playerStateAccepts {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", accept)
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.lightClient.Do(req)
		if err != nil {
			c.logger.Debug().Str("accept", accept).Err(err).Msg("World state attempt failed")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			c.logger.Debug().Str("accept", accept).Int("status", resp.StatusCode).
				Msg("World state attempt rejected")

			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			c.logger.Debug().Str("accept", accept).Err(err).Msg("World state read failed")
			continue
		}

		c.recordFetch(true)

		return body, nil
	}

	c.recordFetch(false)

	return nil, ErrWorldStateUnavailable
}

// apiURL builds a request URL against the active relay host, falling back
// to the first candidate while no probe has succeeded.
func (c *Client) apiURL(path string) string {
	c.mu.Lock()
	host := c.activeHost
	c.mu.Unlock()

	if host == "" {
		host = c.config.RelayHosts[0]
	}

	return "https://" + host + path
}

func (c *Client) getJSON(ctx context.Context, url, token string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.dataClient.Do(req)
	if err != nil {
		c.recordFetch(false)

		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.recordFetch(false)

		return fmt.Errorf("%w: %d - %s", errUnexpectedStatusCode, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		c.recordFetch(false)

		return err
	}

	c.recordFetch(true)

	return nil
}

// recordFetch tracks consecutive fetch failures. Hitting the threshold
// drops the cached relay host so the scheduler probes again instead of
// hammering a dead relay until restart.
func (c *Client) recordFetch(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ok {
		c.fetchFailures = 0
		return
	}

	c.fetchFailures++

	if c.fetchFailures >= reprobeThreshold && c.activeHost != "" {
		c.logger.Warn().Str("host", c.activeHost).Int("failures", c.fetchFailures).
			Msg("Invalidating relay host after sustained fetch failures")

		c.activeHost = ""
		c.fetchFailures = 0
	}
}
