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

package telemetry

import "math"

// Fixed-point divisors and unit conversion factors of the wire format.
const (
	speedDivisor    = 1_000_000.0
	cadenceDivisor  = 1_000_000.0
	gradientDivisor = 10_000.0
	altitudeOffset  = 9_000.0

	metersPerSecondToKMH = 3.6
	metersPerSecondToMPH = 2.23694
	metersToFeet         = 3.28084
	metersToMiles        = 0.000621371
)

// Record is one player state sample in engineering units. It is immutable
// once produced; the JSON field names are the sink's wire contract.
type Record struct {
	ID              int64   `json:"id"`
	DistanceMeters  float64 `json:"distance_m"`
	DistanceMiles   float64 `json:"distance_mi"`
	SpeedMPS        float64 `json:"speed_mps"`
	SpeedKMH        float64 `json:"speed_kmh"`
	SpeedMPH        float64 `json:"speed_mph"`
	Heartrate       int64   `json:"heartrate"`
	Power           int64   `json:"power"`
	Cadence         int64   `json:"cadence"`
	AltitudeMeters  float64 `json:"altitude_m"`
	AltitudeFeet    float64 `json:"altitude_ft"`
	WorldTime       int64   `json:"world_time"`
	JustWatching    int64   `json:"just_watching"`
	Calories        int64   `json:"calories"`
	Climbing        int64   `json:"climbing"`
	Gradient        float64 `json:"gradient"`
	CustomizationID int64   `json:"customization_id"`
	GroupID         int64   `json:"group_id"`
	Heading         int64   `json:"heading"`
	Laps            int64   `json:"laps"`
	Lean            int64   `json:"lean"`
	Progress        int64   `json:"progress"`
	RoadPosition    int64   `json:"road_position"`
	RoadTime        int64   `json:"road_time"`
	Sport           int64   `json:"sport"`
	Time            int64   `json:"time"`
	WatchingRiderID int64   `json:"watching_rider_id"`
	X               int64   `json:"x"`
	Y               int64   `json:"y"`
}

// Record converts the raw wire values into display units.
func (ps *PlayerState) Record() *Record {
	speedMPS := float64(ps.Speed) / speedDivisor
	altitudeM := (float64(ps.Altitude) - altitudeOffset) / 2.0
	distanceM := float64(ps.Distance)

	// Explicit zero branch: a falsy climbing field yields exactly 0.0,
	// never -0.0 from the division below.
	gradient := 0.0
	if ps.Climbing != 0 {
		gradient = round(float64(ps.Climbing)/gradientDivisor, 1)
	}

	return &Record{
		ID:              ps.ID,
		DistanceMeters:  distanceM,
		DistanceMiles:   round(distanceM*metersToMiles, 2),
		SpeedMPS:        round(speedMPS, 2),
		SpeedKMH:        round(speedMPS*metersPerSecondToKMH, 1),
		SpeedMPH:        round(speedMPS*metersPerSecondToMPH, 2),
		Heartrate:       ps.Heartrate,
		Power:           ps.Power,
		Cadence:         int64(float64(ps.CadenceUHz) * 60 / cadenceDivisor),
		AltitudeMeters:  round(altitudeM, 1),
		AltitudeFeet:    round(altitudeM*metersToFeet, 0),
		WorldTime:       ps.WorldTime,
		JustWatching:    ps.JustWatching,
		Calories:        ps.Calories,
		Climbing:        ps.Climbing,
		Gradient:        gradient,
		CustomizationID: ps.CustomizationID,
		GroupID:         ps.GroupID,
		Heading:         ps.Heading,
		Laps:            ps.Laps,
		Lean:            ps.Lean,
		Progress:        ps.Progress,
		RoadPosition:    ps.RoadPosition,
		RoadTime:        ps.RoadTime,
		Sport:           ps.Sport,
		Time:            ps.Time,
		WatchingRiderID: ps.WatchingRiderID,
		X:               ps.X,
		Y:               ps.Y,
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))

	return math.Round(v*p) / p
}
