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

// Package lifecycle runs long-lived services with signal-driven shutdown.
package lifecycle

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/ridelink/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a long-running component with explicit start and stop phases.
// Start must return once the service is running; Stop must release its
// resources before the context expires.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Options configures Run.
type Options struct {
	ServiceName     string
	Service         Service
	ShutdownTimeout time.Duration
}

// Run starts the service and blocks until the context is canceled or a
// SIGINT/SIGTERM arrives, then stops it with a bounded grace period.
func Run(ctx context.Context, opts *Options, log logger.Logger) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := opts.Service.Start(sigCtx); err != nil {
		return fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)
	}

	log.Info().Str("service", opts.ServiceName).Msg("Service started")

	<-sigCtx.Done()

	log.Info().Str("service", opts.ServiceName).Msg("Shutdown signal received")

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := opts.Service.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop %s: %w", opts.ServiceName, err)
	}

	log.Info().Str("service", opts.ServiceName).Msg("Service stopped")

	return nil
}
