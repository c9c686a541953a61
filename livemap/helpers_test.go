// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func testConfig(clock *fakeClock) Config {
	cfg := DefaultConfig()
	cfg.Now = clock.Now

	return cfg
}

// stubGeocoder answers reverse lookups with a fixed name or error and
// records the coordinates it was asked about.
type stubGeocoder struct {
	name  string
	err   error
	calls [][2]float64
}

func (g *stubGeocoder) Reverse(_ context.Context, lat, lon float64, _ int) (string, error) {
	g.calls = append(g.calls, [2]float64{lat, lon})

	return g.name, g.err
}

// failingBackend fails every operation.
type failingBackend struct{}

var errBackendDown = errors.New("connection refused")

func (failingBackend) Put(context.Context, string, []byte, time.Time) error {
	return errBackendDown
}

func (failingBackend) Get(context.Context, string, time.Time) (*Entry, error) {
	return nil, errBackendDown
}

func (failingBackend) List(context.Context, time.Time) (*Page, error) {
	return nil, errBackendDown
}
