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

// Package webhook sends change events to a Home Assistant webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/ridelink/pkg/logger"
	"github.com/carverauto/ridelink/pkg/telemetry"
)

// Event types recognized by the downstream automation.
const (
	EventStatusUpdate     = "zwift_status_update"
	EventProfileUpdate    = "zwift_profile_update"
	EventActivitiesUpdate = "zwift_activities_update"
	EventWorldUpdate      = "zwift_world_update"
)

const sendTimeout = 30 * time.Second

var errWebhookRejected = errors.New("webhook rejected")

// Client posts events to a single Home Assistant webhook. Delivery is
// at-most-once per logical change: a failed send is reported to the caller
// and never retried here.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a webhook client for the given Home Assistant base URL
// and webhook ID. The token is optional and enables authenticated webhooks.
func NewClient(baseURL, webhookID, token string, log logger.Logger) *Client {
	return &Client{
		url:        strings.TrimRight(baseURL, "/") + "/api/webhook/" + webhookID,
		token:      token,
		httpClient: &http.Client{Timeout: sendTimeout},
		logger:     log,
	}
}

// URL returns the full webhook endpoint.
func (c *Client) URL() string {
	return c.url
}

// Send posts one event envelope: {"event_type": ..., "data": ...}.
func (c *Client) Send(ctx context.Context, eventType string, data interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"event_type": eventType,
		"data":       data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Msg("Webhook send failed")

		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("event_type", eventType).
			Str("body", string(body)).
			Msg("Webhook rejected")

		return fmt.Errorf("%w: %d", errWebhookRejected, resp.StatusCode)
	}

	c.logger.Debug().Str("event_type", eventType).Msg("Webhook sent")

	return nil
}

// SendStatus reports the online/offline transition. worldID is nil when
// going offline.
func (c *Client) SendStatus(ctx context.Context, online bool, worldID *int64) error {
	return c.Send(ctx, EventStatusUpdate, map[string]interface{}{
		"online":   online,
		"world_id": worldID,
	})
}

// SendProfile forwards the full profile payload.
func (c *Client) SendProfile(ctx context.Context, profile map[string]interface{}) error {
	return c.Send(ctx, EventProfileUpdate, profile)
}

// SendActivities forwards the activity history page.
func (c *Client) SendActivities(ctx context.Context, activities []map[string]interface{}) error {
	return c.Send(ctx, EventActivitiesUpdate, activities)
}

// SendWorld forwards one live telemetry sample.
func (c *Client) SendWorld(ctx context.Context, record *telemetry.Record) error {
	return c.Send(ctx, EventWorldUpdate, record)
}
