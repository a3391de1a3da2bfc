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

// Package auth manages the OAuth2 token lifecycle for the Zwift API.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/ridelink/pkg/logger"
)

const (
	// DefaultAuthURL is the Zwift OAuth2 token endpoint.
	DefaultAuthURL = "https://secure.zwift.com/auth/realms/zwift/tokens/access/codes"

	clientID     = "Zwift_Mobile_Link"
	grantTimeout = 10 * time.Second

	// Expiry values above this threshold are milliseconds, not seconds.
	millisecondThreshold = 1_000_000

	// Seconds shaved off every computed expiry to avoid boundary races.
	expirySafetyDeduction = 5
)

// ManagerConfig carries the construction parameters for a Manager.
type ManagerConfig struct {
	Username string
	Password string

	// MarginSeconds is how long before expiry a token is treated as stale.
	MarginSeconds int

	// AuthURL overrides the token endpoint; empty means DefaultAuthURL.
	AuthURL string
}

// Manager produces a currently valid access token on demand, transparently
// refreshing or re-authenticating and persisting every successful grant.
// It is safe for concurrent use: the mutex spans the whole
// check-grant-persist sequence, so concurrent callers coalesce onto a
// single grant rather than racing refreshes.
type Manager struct {
	config     ManagerConfig
	store      *FileStore
	httpClient *http.Client
	authURL    string
	logger     logger.Logger

	mu   sync.Mutex
	cred Credential

	now func() time.Time
}

// NewManager creates a Manager and loads any previously persisted
// credential from the store. A load failure is logged and treated as an
// absent credential.
func NewManager(config ManagerConfig, store *FileStore, log logger.Logger) *Manager {
	m := &Manager{
		config:     config,
		store:      store,
		httpClient: &http.Client{Timeout: grantTimeout},
		authURL:    config.AuthURL,
		logger:     log,
		now:        time.Now,
	}

	if m.authURL == "" {
		m.authURL = DefaultAuthURL
	}

	cred, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load stored tokens, will re-authenticate")
	} else if cred.AccessToken != "" {
		log.Info().Msg("Loaded stored tokens")
	}

	m.cred = cred

	return m
}

// EnsureValidToken returns an access token usable for at least the
// configured margin, trying in order: the stored token as-is, a
// refresh-token grant, a password grant. Every strategy failing returns
// ErrAuthFailed; network errors and bad responses never surface directly.
func (m *Manager) EnsureValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	margin := int64(m.config.MarginSeconds)
	now := m.now()

	if m.cred.AccessValid(now, margin) {
		return m.cred.AccessToken, nil
	}

	if m.cred.RefreshValid(now, margin) {
		if err := m.refreshGrant(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Token refresh failed")
		} else {
			return m.cred.AccessToken, nil
		}
	}

	if err := m.passwordGrant(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Password grant failed")

		return "", ErrAuthFailed
	}

	return m.cred.AccessToken, nil
}

// AccessToken returns the current access token without validation.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cred.AccessToken
}

func (m *Manager) refreshGrant(ctx context.Context) error {
	m.logger.Info().Msg("Refreshing access token")

	form := url.Values{
		"client_id":     {clientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {m.cred.RefreshToken},
	}

	return m.grant(ctx, form)
}

func (m *Manager) passwordGrant(ctx context.Context) error {
	m.logger.Info().Msg("Authenticating with password grant")

	form := url.Values{
		"client_id":  {clientID},
		"grant_type": {"password"},
		"username":   {m.config.Username},
		"password":   {m.config.Password},
	}

	return m.grant(ctx, form)
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

func (m *Manager) grant(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.authURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return err
	}

	if tok.AccessToken == "" {
		return errEmptyAccessToken
	}

	m.storeGrant(&tok)

	return nil
}

// storeGrant replaces the whole credential record and persists it before
// the grant returns, so a crash right after authentication keeps the
// credential.
func (m *Manager) storeGrant(tok *tokenResponse) {
	now := m.now().Unix()

	m.cred = Credential{
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		AccessExpiry:  now + normalizeExpiresIn(tok.ExpiresIn) - expirySafetyDeduction,
		RefreshExpiry: now + normalizeExpiresIn(tok.RefreshExpiresIn) - expirySafetyDeduction,
	}

	if err := m.store.Save(m.cred); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist tokens")
	} else {
		m.logger.Debug().Msg("Saved tokens")
	}
}

// normalizeExpiresIn converts a reported lifetime to seconds. The service
// inconsistently reports some lifetimes in milliseconds.
func normalizeExpiresIn(v int64) int64 {
	if v > millisecondThreshold {
		return v / 1000
	}

	return v
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d - %s", errUnexpectedStatusCode, e.code, e.body)
}

func (e *statusError) Unwrap() error { return errUnexpectedStatusCode }
