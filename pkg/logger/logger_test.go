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

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "nil config uses defaults",
			config: nil,
		},
		{
			name:   "explicit level",
			config: &Config{Level: "debug", Output: "stderr"},
		},
		{
			name:   "debug flag overrides level",
			config: &Config{Level: "error", Debug: true},
		},
		{
			name:    "invalid level",
			config:  &Config{Level: "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(context.Background(), tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewComponent(t *testing.T) {
	log, err := NewComponent(context.Background(), "poller", &Config{Level: "info"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewOTelWriterValidation(t *testing.T) {
	_, err := NewOTelWriter(context.Background(), OTelConfig{})
	assert.ErrorIs(t, err, ErrOTelLoggingDisabled)

	_, err = NewOTelWriter(context.Background(), OTelConfig{Enabled: true})
	assert.ErrorIs(t, err, ErrOTelEndpointRequired)
}

func TestTestLoggerDiscards(t *testing.T) {
	log := NewTestLogger()

	// Must not panic and must accept the full event chain.
	log.Info().Str("k", "v").Msg("discarded")
	log.Error().Int("n", 1).Msg("discarded")
}
