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

import "fmt"

// worldNames maps Zwift world IDs to course names.
var worldNames = map[int64]string{
	1:  "watopia",
	2:  "richmond",
	3:  "london",
	4:  "new-york",
	5:  "innsbruck",
	6:  "bologna",
	7:  "yorkshire",
	8:  "crit-city",
	9:  "makuri-islands",
	10: "france",
	11: "paris",
	13: "scotland",
}

// WorldName returns the course name for a world ID, or "world-N" for
// unknown IDs.
func WorldName(worldID int64) string {
	if name, ok := worldNames[worldID]; ok {
		return name
	}

	return fmt.Sprintf("world-%d", worldID)
}
