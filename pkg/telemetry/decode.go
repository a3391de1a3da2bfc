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

// Package telemetry decodes the binary player state emitted by the world
// relay and converts its fixed-point wire values into engineering units.
package telemetry

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedPayload indicates the binary buffer is not a valid player
// state message. Callers treat it as a failed fetch for the cycle.
var ErrMalformedPayload = errors.New("malformed player state payload")

// Protobuf field numbers of the relay's PlayerState message.
const (
	fieldID              = 1
	fieldWorldTime       = 2
	fieldDistance        = 3
	fieldRoadTime        = 4
	fieldLaps            = 5
	fieldSpeed           = 6
	fieldRoadPosition    = 8
	fieldCadenceUHz      = 9
	fieldHeartrate       = 11
	fieldPower           = 12
	fieldHeading         = 13
	fieldLean            = 14
	fieldClimbing        = 15
	fieldTime            = 16
	fieldProgress        = 21
	fieldCustomizationID = 22
	fieldJustWatching    = 23
	fieldCalories        = 24
	fieldX               = 25
	fieldAltitude        = 26
	fieldY               = 27
	fieldWatchingRiderID = 28
	fieldGroupID         = 29
	fieldSport           = 31
)

// PlayerState holds the raw wire values of one decoded player state
// message, before unit conversion.
type PlayerState struct {
	ID              int64
	WorldTime       int64
	Distance        int64
	RoadTime        int64
	Laps            int64
	Speed           int64
	RoadPosition    int64
	CadenceUHz      int64
	Heartrate       int64
	Power           int64
	Heading         int64
	Lean            int64
	Climbing        int64
	Time            int64
	Progress        int64
	CustomizationID int64
	JustWatching    int64
	Calories        int64
	X               int64
	Altitude        int64
	Y               int64
	WatchingRiderID int64
	GroupID         int64
	Sport           int64
}

// Decode parses a protobuf-encoded player state buffer. Unknown fields and
// unexpected wire types are skipped; a structurally invalid buffer returns
// ErrMalformedPayload.
func Decode(buf []byte) (*PlayerState, error) {
	var ps PlayerState

	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
		}

		buf = buf[n:]

		target := ps.fieldTarget(num)
		if target == nil || typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}

			buf = buf[n:]

			continue
		}

		v, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
		}

		*target = int64(v)
		buf = buf[n:]
	}

	return &ps, nil
}

// fieldTarget maps a field number to the struct member it fills, or nil
// for unknown fields.
func (ps *PlayerState) fieldTarget(num protowire.Number) *int64 {
	switch num {
	case fieldID:
		return &ps.ID
	case fieldWorldTime:
		return &ps.WorldTime
	case fieldDistance:
		return &ps.Distance
	case fieldRoadTime:
		return &ps.RoadTime
	case fieldLaps:
		return &ps.Laps
	case fieldSpeed:
		return &ps.Speed
	case fieldRoadPosition:
		return &ps.RoadPosition
	case fieldCadenceUHz:
		return &ps.CadenceUHz
	case fieldHeartrate:
		return &ps.Heartrate
	case fieldPower:
		return &ps.Power
	case fieldHeading:
		return &ps.Heading
	case fieldLean:
		return &ps.Lean
	case fieldClimbing:
		return &ps.Climbing
	case fieldTime:
		return &ps.Time
	case fieldProgress:
		return &ps.Progress
	case fieldCustomizationID:
		return &ps.CustomizationID
	case fieldJustWatching:
		return &ps.JustWatching
	case fieldCalories:
		return &ps.Calories
	case fieldX:
		return &ps.X
	case fieldAltitude:
		return &ps.Altitude
	case fieldY:
		return &ps.Y
	case fieldWatchingRiderID:
		return &ps.WatchingRiderID
	case fieldGroupID:
		return &ps.GroupID
	case fieldSport:
		return &ps.Sport
	default:
		return nil
	}
}
