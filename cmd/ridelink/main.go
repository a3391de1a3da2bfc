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

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/ridelink/pkg/api"
	"github.com/carverauto/ridelink/pkg/auth"
	"github.com/carverauto/ridelink/pkg/config"
	"github.com/carverauto/ridelink/pkg/lifecycle"
	"github.com/carverauto/ridelink/pkg/logger"
	"github.com/carverauto/ridelink/pkg/poller"
	"github.com/carverauto/ridelink/pkg/webhook"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	bootstrapLogger, err := lifecycle.CreateLogger(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLogger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  cfg.LogLevel,
			Output: "stdout",
		}
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "ridelink", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tokens := auth.NewManager(auth.ManagerConfig{
		Username:      cfg.Username,
		Password:      cfg.Password,
		MarginSeconds: cfg.TokenRefreshMargin,
	}, auth.NewFileStore(cfg.TokenFile), mainLogger)

	relay := api.NewClient(api.Config{
		RelayHosts: cfg.RelayHosts,
		PlayerID:   cfg.PlayerID,
	}, mainLogger)

	sink := webhook.NewClient(cfg.HAURL, cfg.HAWebhookID, cfg.HAToken, mainLogger)

	svc := poller.New(poller.Config{
		ProfileInterval:    time.Duration(cfg.ProfileInterval) * time.Second,
		ActivitiesInterval: time.Duration(cfg.ActivitiesInterval) * time.Second,
		WorldInterval:      time.Duration(cfg.WorldInterval) * time.Second,
	}, tokens, relay, sink, nil, mainLogger)

	return lifecycle.Run(ctx, &lifecycle.Options{
		ServiceName: "ridelink",
		Service:     svc,
	}, mainLogger)
}
