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

package poller

import (
	"context"

	"github.com/carverauto/ridelink/pkg/telemetry"
)

// TokenSource produces a currently valid access token on demand.
type TokenSource interface {
	EnsureValidToken(ctx context.Context) (string, error)
}

// API is the slice of the relay API the scheduler needs.
type API interface {
	ProbeRelayHosts(ctx context.Context, token string) (string, error)
	ActiveHost() string
	GetProfile(ctx context.Context, token string) (map[string]interface{}, error)
	GetActivities(ctx context.Context, token string, start, limit int) ([]map[string]interface{}, error)
	GetPlayerState(ctx context.Context, token string, worldID int64) ([]byte, error)
}

// Sink receives change events. A send error means the event was dropped;
// the scheduler does not retry until the next natural change.
type Sink interface {
	SendStatus(ctx context.Context, online bool, worldID *int64) error
	SendProfile(ctx context.Context, profile map[string]interface{}) error
	SendActivities(ctx context.Context, activities []map[string]interface{}) error
	SendWorld(ctx context.Context, record *telemetry.Record) error
}
