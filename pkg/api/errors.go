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

import "errors"

var (
	// ErrNoRelayHost means every candidate relay host failed the probe.
	ErrNoRelayHost = errors.New("no working relay host found")

	// ErrWorldStateUnavailable means every content-negotiation attempt for
	// the binary player state failed.
	ErrWorldStateUnavailable = errors.New("world state fetch failed for all accept types")

	errUnexpectedStatusCode = errors.New("unexpected status code")
)
