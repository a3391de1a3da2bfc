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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// fingerprintLength is the number of hex characters kept from the digest.
// The empty string stays reserved as the "never polled" sentinel.
const fingerprintLength = 16

// Fingerprint computes a change-detection digest over a payload. The
// payload is canonically re-marshaled (encoding/json emits object keys in
// sorted order), so the digest is independent of the field order the
// service happened to return. Not a security hash.
func Fingerprint(payload interface{}) string {
	serialized, err := json.Marshal(payload)
	if err != nil {
		// Payloads come from decoded JSON or plain structs and always
		// marshal; fall back to the formatted value if one ever does not.
		serialized = []byte(fmt.Sprintf("%v", payload))
	}

	sum := sha256.Sum256(serialized)

	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
