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

import "errors"

var (
	// ErrAuthFailed means no usable credential could be obtained this cycle.
	// Callers skip the current poll cycle and retry on the next tick.
	ErrAuthFailed = errors.New("authentication failed")

	errUnexpectedStatusCode = errors.New("unexpected status code")
	errEmptyAccessToken     = errors.New("grant response carried an empty access token")
)
