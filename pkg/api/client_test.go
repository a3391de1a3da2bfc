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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carverauto/ridelink/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at a TLS test server so the https URLs the
// client builds resolve to the handler.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		RelayHosts: []string{srv.Listener.Addr().String()},
		PlayerID:   12345,
	}, logger.NewTestLogger())

	c.lightClient = srv.Client()
	c.dataClient = srv.Client()

	return c, srv
}

func TestProbeRelayHosts(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profiles/12345", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))

	host, err := c.ProbeRelayHosts(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, srv.Listener.Addr().String(), host)
	assert.Equal(t, host, c.ActiveHost())
}

func TestProbeRelayHostsAllFail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.ProbeRelayHosts(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNoRelayHost)
	assert.Empty(t, c.ActiveHost())
}

func TestGetProfile(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profiles/12345", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     12345,
			"riding": true,
		})
	}))

	profile, err := c.GetProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, true, profile["riding"])
}

func TestGetActivities(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profiles/12345/activities", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "name": "Morning Ride"},
		})
	}))

	activities, err := c.GetActivities(context.Background(), "tok", 0, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Morning Ride", activities[0]["name"])
}

func TestGetActivitiesEmptyListNotNil(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))

	activities, err := c.GetActivities(context.Background(), "tok", 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, activities)
	assert.Empty(t, activities)
}

func TestGetPlayerStateAcceptNegotiation(t *testing.T) {
	var accepts []string

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		accepts = append(accepts, accept)

		// Only the second content type is honored by this relay.
		if accept != "application/x-protobuf" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}

		_, _ = w.Write([]byte{0x30, 0x01})
	}))

	body, err := c.GetPlayerState(context.Background(), "tok", 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x01}, body)
	assert.Equal(t, []string{"application/octet-stream", "application/x-protobuf"}, accepts)
}

func TestGetPlayerStateAllAcceptsFail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
	}))

	_, err := c.GetPlayerState(context.Background(), "tok", 1)
	assert.ErrorIs(t, err, ErrWorldStateUnavailable)
}

func TestSustainedFailuresInvalidateActiveHost(t *testing.T) {
	healthy := true

	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if healthy {
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.ProbeRelayHosts(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, srv.Listener.Addr().String(), c.ActiveHost())

	healthy = false

	for i := 0; i < reprobeThreshold; i++ {
		_, err = c.GetProfile(context.Background(), "tok")
		require.Error(t, err)
	}

	assert.Empty(t, c.ActiveHost(), "cached host dropped after sustained failures")
}

func TestSuccessResetsFailureCounter(t *testing.T) {
	failing := false

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if failing {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	}))

	_, err := c.ProbeRelayHosts(context.Background(), "tok")
	require.NoError(t, err)

	failing = true
	for i := 0; i < reprobeThreshold-1; i++ {
		_, _ = c.GetProfile(context.Background(), "tok")
	}

	failing = false
	_, err = c.GetProfile(context.Background(), "tok")
	require.NoError(t, err)

	failing = true
	for i := 0; i < reprobeThreshold-1; i++ {
		_, _ = c.GetProfile(context.Background(), "tok")
	}

	assert.NotEmpty(t, c.ActiveHost(), "counter was reset by the successful fetch")
}

func TestWorldName(t *testing.T) {
	assert.Equal(t, "watopia", WorldName(1))
	assert.Equal(t, "makuri-islands", WorldName(9))
	assert.Equal(t, "world-42", WorldName(42))
}
