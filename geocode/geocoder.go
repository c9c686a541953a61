// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns free text into coordinates and coordinates into
// place names using an external provider.
package geocode

import "context"

// DefaultZoom asks reverse lookups for a city-level name, which is as much
// detail as the rounded coordinates can honestly support.
const DefaultZoom = 8

// Place is a forward geocoding candidate.
type Place struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
}

// Geocoder is implemented by every provider. A single attempt is made per
// call; retrying is left to callers.
type Geocoder interface {
	// Name identifies the provider in logs.
	Name() string

	// Search returns the candidates for a free text query. An empty slice
	// means nothing matched and is not an error.
	Search(ctx context.Context, query string) ([]Place, error)

	// Reverse returns the display name for a coordinate. zoom selects the
	// granularity of the name (country=3 ... city=10 ... building=18).
	Reverse(ctx context.Context, latitude, longitude float64, zoom int) (string, error)
}
