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

// Package poller schedules the session polling loops. Profile and activity
// history poll at fixed cadences; the player-state loop switches between a
// fast cadence while the rider is online and a slow idle check otherwise.
// Each category dispatches to the sink only when its payload fingerprint
// changes.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/carverauto/ridelink/pkg/api"
	"github.com/carverauto/ridelink/pkg/logger"
	"github.com/carverauto/ridelink/pkg/telemetry"
)

// ErrStartupAuth is returned by Start when no usable token could be
// obtained, meaning the supplied credentials are wrong or the auth service
// is unreachable.
var ErrStartupAuth = errors.New("initial authentication failed")

// Poller drives the polling loops against the session API and forwards
// changed payloads to the sink.
type Poller struct {
	config Config
	tokens TokenSource
	api    API
	sink   Sink
	clock  Clock
	logger logger.Logger

	state state

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a Poller. A nil clock selects the wall clock.
func New(config Config, tokens TokenSource, api API, sink Sink, clock Clock, log logger.Logger) *Poller {
	if config.PollerID == "" {
		config.PollerID = uuid.New().String()
	}

	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = defaultIdleCheckInterval
	}

	if config.ActivitiesPageSize <= 0 {
		config.ActivitiesPageSize = defaultActivitiesPageSize
	}

	if clock == nil {
		clock = realClock{}
	}

	p := &Poller{
		config: config,
		tokens: tokens,
		api:    api,
		sink:   sink,
		clock:  clock,
		logger: log,
		done:   make(chan struct{}),
	}
	p.state.activeContextID = defaultWorldID

	return p
}

// Start obtains an initial token, probes the relay hosts, performs one
// forced poll of the slow categories and launches the polling loops. It
// returns once the loops are running; a failed initial authentication
// aborts startup.
func (p *Poller) Start(ctx context.Context) error {
	token, err := p.tokens.EnsureValidToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartupAuth, err)
	}

	host, err := p.api.ProbeRelayHosts(ctx, token)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Relay probe failed, continuing with configured host order")
	} else {
		p.logger.Info().Str("relay_host", host).Msg("Relay host selected")
	}

	runCtx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	// Slow categories send their first snapshot immediately so the sink
	// has data before the first tick.
	p.pollProfile(runCtx)
	p.pollActivities(runCtx)

	p.wg.Add(3)

	go p.profileLoop(runCtx)
	go p.activitiesLoop(runCtx)
	go p.worldLoop(runCtx)

	p.logger.Info().
		Str("poller_id", p.config.PollerID).
		Dur("profile_interval", p.config.ProfileInterval).
		Dur("activities_interval", p.config.ActivitiesInterval).
		Dur("world_interval", p.config.WorldInterval).
		Msg("Poller started")

	return nil
}

// Stop cancels the loops and waits for them to drain, bounded by the
// context deadline.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	go func() {
		p.wg.Wait()
		p.closeOnce.Do(func() { close(p.done) })
	}()

	select {
	case <-p.done:
		p.logger.Info().Msg("Poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) profileLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := p.clock.Ticker(p.config.ProfileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.pollProfile(ctx)
		}
	}
}

func (p *Poller) activitiesLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := p.clock.Ticker(p.config.ActivitiesInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.pollActivities(ctx)
		}
	}
}

// worldLoop alternates between the fast in-session cadence and the idle
// check cadence. The riding flag is re-read after each wait, so a rider
// who comes online mid-sleep is picked up on the next wake rather than
// immediately.
func (p *Poller) worldLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		delay := p.config.IdleCheckInterval
		if p.state.active() {
			delay = p.config.WorldInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(delay):
			if p.state.active() {
				p.pollWorld(ctx)
			}
		}
	}
}

// pollProfile fetches the rider profile, updates the riding status and
// world, and forwards the profile when it changed. Status edges dispatch
// unconditionally so the sink never misses an online/offline transition,
// even when the profile itself is otherwise identical.
func (p *Poller) pollProfile(ctx context.Context) {
	token, err := p.tokens.EnsureValidToken(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Token refresh failed, skipping profile cycle")
		return
	}

	p.maybeProbe(ctx, token)

	profile, err := p.api.GetProfile(ctx, token)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Profile fetch failed, keeping previous state")
		return
	}

	active, worldID := ridingStatus(profile)
	wasActive, contextID := p.state.setActivity(active, worldID)

	if active != wasActive {
		var statusWorld *int64

		if active {
			statusWorld = &contextID
		}

		if err := p.sink.SendStatus(ctx, active, statusWorld); err != nil {
			p.logger.Warn().Err(err).Bool("online", active).Msg("Status dispatch failed")
		} else {
			p.logger.Info().
				Bool("online", active).
				Int64("world_id", contextID).
				Str("world", api.WorldName(contextID)).
				Msg("Riding status changed")
		}
	}

	fp := Fingerprint(profile)

	p.state.mu.Lock()
	changed := fp != p.state.profileFingerprint
	if changed {
		p.state.profileFingerprint = fp
	}
	p.state.mu.Unlock()

	if !changed {
		return
	}

	if err := p.sink.SendProfile(ctx, profile); err != nil {
		p.logger.Warn().Err(err).Msg("Profile dispatch failed")
		return
	}

	p.logger.Debug().Str("fingerprint", fp).Msg("Profile update dispatched")
}

func (p *Poller) pollActivities(ctx context.Context) {
	token, err := p.tokens.EnsureValidToken(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Token refresh failed, skipping activities cycle")
		return
	}

	p.maybeProbe(ctx, token)

	activities, err := p.api.GetActivities(ctx, token, 0, p.config.ActivitiesPageSize)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Activities fetch failed, keeping previous state")
		return
	}

	fp := Fingerprint(activities)

	p.state.mu.Lock()
	changed := fp != p.state.activitiesFingerprint
	if changed {
		p.state.activitiesFingerprint = fp
	}
	p.state.mu.Unlock()

	if !changed {
		return
	}

	if err := p.sink.SendActivities(ctx, activities); err != nil {
		p.logger.Warn().Err(err).Msg("Activities dispatch failed")
		return
	}

	p.logger.Debug().Str("fingerprint", fp).Int("count", len(activities)).Msg("Activities update dispatched")
}

func (p *Poller) pollWorld(ctx context.Context) {
	token, err := p.tokens.EnsureValidToken(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Token refresh failed, skipping world cycle")
		return
	}

	p.maybeProbe(ctx, token)

	raw, err := p.api.GetPlayerState(ctx, token, p.state.contextID())
	if err != nil {
		p.logger.Warn().Err(err).Msg("Player state fetch failed, keeping previous state")
		return
	}

	ps, err := telemetry.Decode(raw)
	if err != nil {
		p.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Player state decode failed, skipping cycle")
		return
	}

	record := ps.Record()

	fp := Fingerprint(record)

	p.state.mu.Lock()
	changed := fp != p.state.worldFingerprint
	if changed {
		p.state.worldFingerprint = fp
	}
	p.state.mu.Unlock()

	if !changed {
		return
	}

	if err := p.sink.SendWorld(ctx, record); err != nil {
		p.logger.Warn().Err(err).Msg("World dispatch failed")
		return
	}

	p.logger.Debug().Str("fingerprint", fp).Int64("rider_id", record.ID).Msg("World update dispatched")
}

// maybeProbe re-runs relay selection when sustained fetch failures cleared
// the cached host. Best effort; fetches fall back to the configured host
// order when no probe has succeeded.
func (p *Poller) maybeProbe(ctx context.Context, token string) {
	if p.api.ActiveHost() != "" {
		return
	}

	if _, err := p.api.ProbeRelayHosts(ctx, token); err != nil {
		p.logger.Debug().Err(err).Msg("Relay re-probe failed")
	}
}

// ridingStatus extracts the riding flag and current world from a profile
// payload. Zwift reports the flag as "riding" and the world as "worldId";
// a missing or null world leaves the previous world in place.
func ridingStatus(profile map[string]interface{}) (active bool, worldID int64) {
	if v, ok := profile["riding"].(bool); ok {
		active = v
	}

	switch v := profile["worldId"].(type) {
	case float64:
		worldID = int64(v)
	case int64:
		worldID = v
	}

	return active, worldID
}
