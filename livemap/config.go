// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"time"

	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/spatial"
)

const (
	// DefaultTTL is how long a published location stays on the map.
	DefaultTTL = 30 * 24 * time.Hour

	// DefaultListLimit caps the entries a backend returns from a single list.
	DefaultListLimit = 1000

	// DefaultGeocodeTimeout bounds a single enrichment call.
	DefaultGeocodeTimeout = 5 * time.Second

	// DefaultStoreTimeout bounds a single store call.
	DefaultStoreTimeout = 10 * time.Second
)

// Config carries the settings shared by the store, the ingestion pipeline
// and the query service. It is passed by value to constructors.
type Config struct {
	// TTL applies to every record; there is no per-record override.
	TTL time.Duration

	// Precision is the number of decimals kept on coordinates.
	Precision int

	// ReverseZoom is the granularity requested when naming a location.
	ReverseZoom int

	// GeocodeTimeout bounds each enrichment call.
	GeocodeTimeout time.Duration

	// StoreTimeout bounds each backend call.
	StoreTimeout time.Duration

	// Now is the clock. time.Now when nil.
	Now func() time.Time
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		TTL:            DefaultTTL,
		Precision:      spatial.DefaultPrecision,
		ReverseZoom:    geocode.DefaultZoom,
		GeocodeTimeout: DefaultGeocodeTimeout,
		StoreTimeout:   DefaultStoreTimeout,
		Now:            time.Now,
	}
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}

	return c.Now().UTC()
}
