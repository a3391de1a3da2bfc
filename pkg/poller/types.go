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
	"sync"
	"time"
)

const (
	defaultIdleCheckInterval  = 60 * time.Second
	defaultActivitiesPageSize = 10
	defaultWorldID            = 1
)

// Config carries the scheduler's timing parameters.
type Config struct {
	// PollerID identifies this process in logs; a UUID is generated when
	// empty.
	PollerID string

	ProfileInterval    time.Duration
	ActivitiesInterval time.Duration
	WorldInterval      time.Duration

	// IdleCheckInterval is how often the world loop re-checks the riding
	// flag while the rider is offline. Defaults to one minute.
	IdleCheckInterval time.Duration

	// ActivitiesPageSize is the activity history page fetched per cycle.
	ActivitiesPageSize int
}

// state tracks per-category fingerprints and the riding status. Loops run
// as preemptive goroutines, so every access goes through the mutex.
type state struct {
	mu sync.Mutex

	profileFingerprint    string
	activitiesFingerprint string
	worldFingerprint      string

	isActive        bool
	activeContextID int64
}

func (s *state) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isActive
}

func (s *state) contextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeContextID
}

// setActivity records the riding flag and world from a profile payload and
// reports the previous flag so the caller can detect the edge.
func (s *state) setActivity(active bool, worldID int64) (wasActive bool, contextID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive = s.isActive
	s.isActive = active

	if worldID != 0 {
		s.activeContextID = worldID
	}

	return wasActive, s.activeContextID
}
