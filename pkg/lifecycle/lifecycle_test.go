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

package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/ridelink/pkg/logger"
)

var errBoom = errors.New("boom")

type fakeService struct {
	startErr error
	stopErr  error

	started atomic.Int32
	stopped atomic.Int32

	onStart func()
}

func (f *fakeService) Start(_ context.Context) error {
	f.started.Add(1)

	if f.onStart != nil {
		f.onStart()
	}

	return f.startErr
}

func (f *fakeService) Stop(_ context.Context) error {
	f.stopped.Add(1)
	return f.stopErr
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &fakeService{onStart: cancel}

	err := Run(ctx, &Options{ServiceName: "test", Service: svc}, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, int32(1), svc.started.Load())
	assert.Equal(t, int32(1), svc.stopped.Load())
}

func TestRunPropagatesStartError(t *testing.T) {
	svc := &fakeService{startErr: errBoom}

	err := Run(context.Background(), &Options{ServiceName: "test", Service: svc}, logger.NewTestLogger())
	require.Error(t, err)

	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, svc.stopped.Load(), "a service that never started is not stopped")
}

func TestRunPropagatesStopError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &fakeService{stopErr: errBoom, onStart: cancel}

	err := Run(ctx, &Options{ServiceName: "test", Service: svc}, logger.NewTestLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}
