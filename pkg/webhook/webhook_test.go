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

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carverauto/ridelink/pkg/logger"
	"github.com/carverauto/ridelink/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLConstruction(t *testing.T) {
	c := NewClient("http://homeassistant:8123/", "hook-id", "", logger.NewTestLogger())
	assert.Equal(t, "http://homeassistant:8123/api/webhook/hook-id", c.URL())
}

func TestSendEnvelope(t *testing.T) {
	var got map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/webhook/hook-id", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer ha-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hook-id", "ha-token", logger.NewTestLogger())

	err := c.Send(context.Background(), EventProfileUpdate, map[string]interface{}{"riding": true})
	require.NoError(t, err)

	assert.Equal(t, EventProfileUpdate, got["event_type"])
	data, ok := got["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["riding"])
}

func TestSendOmitsEmptyAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hook-id", "", logger.NewTestLogger())
	require.NoError(t, c.Send(context.Background(), EventStatusUpdate, nil))
}

func TestSendFailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hook-id", "", logger.NewTestLogger())
	assert.Error(t, c.Send(context.Background(), EventProfileUpdate, nil))
}

func TestSendStatus(t *testing.T) {
	var got map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hook-id", "", logger.NewTestLogger())

	worldID := int64(9)
	require.NoError(t, c.SendStatus(context.Background(), true, &worldID))

	data := got["data"].(map[string]interface{})
	assert.Equal(t, true, data["online"])
	assert.Equal(t, float64(9), data["world_id"])

	require.NoError(t, c.SendStatus(context.Background(), false, nil))

	data = got["data"].(map[string]interface{})
	assert.Equal(t, false, data["online"])
	assert.Nil(t, data["world_id"])
}

func TestSendWorld(t *testing.T) {
	var got map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hook-id", "", logger.NewTestLogger())

	ps := &telemetry.PlayerState{Speed: 1_000_000, Heartrate: 150}
	require.NoError(t, c.SendWorld(context.Background(), ps.Record()))

	assert.Equal(t, EventWorldUpdate, got["event_type"])
	data := got["data"].(map[string]interface{})
	assert.Equal(t, 1.0, data["speed_mps"])
	assert.Equal(t, float64(150), data["heartrate"])
}
