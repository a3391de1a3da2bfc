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

package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credential is the persisted OAuth2 token pair. Expiries are absolute Unix
// seconds. The record is overwritten as a whole on every successful grant
// and never deleted.
type Credential struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	AccessExpiry  int64  `json:"access_expiry"`
	RefreshExpiry int64  `json:"refresh_expiry"`
}

// AccessValid reports whether the access token can still be used at now,
// keeping margin seconds of safety before the recorded expiry. An empty
// token is never valid regardless of expiry.
func (c *Credential) AccessValid(now time.Time, margin int64) bool {
	return c.AccessToken != "" && now.Unix() < c.AccessExpiry-margin
}

// RefreshValid reports whether the refresh token is still usable at now.
func (c *Credential) RefreshValid(now time.Time, margin int64) bool {
	return c.RefreshToken != "" && now.Unix() < c.RefreshExpiry-margin
}

// FileStore persists the credential record as a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored credential. A missing file is not an error and
// returns a zero credential, which forces re-authentication on first use.
func (s *FileStore) Load() (Credential, error) {
	var cred Credential

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cred, nil
		}

		return cred, fmt.Errorf("failed to read token file: %w", err)
	}

	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to parse token file: %w", err)
	}

	return cred, nil
}

// Save writes the credential atomically: the record is marshaled to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-write cannot leave a truncated token file behind.
func (s *FileStore) Save(cred Credential) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write token file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}
