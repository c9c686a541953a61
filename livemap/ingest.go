// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"log"

	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/spatial"
)

// ReverseGeocoder names a coordinate. geocode.Geocoder satisfies it.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, latitude, longitude float64, zoom int) (string, error)
}

// Enrichment is the outcome of naming a location: either Enriched with a
// name, or Unenriched with the reason it could not be named.
type Enrichment struct {
	Name string
	Err  error
}

// Enriched reports whether a name was found.
func (e Enrichment) Enriched() bool {
	return e.Err == nil && e.Name != ""
}

// Ingester validates, rounds, names and stores submissions.
type Ingester struct {
	store    *Store
	geocoder ReverseGeocoder
	config   Config
}

// NewIngester creates an ingestion pipeline. geocoder may be nil, in which
// case records are stored without a location name.
func NewIngester(store *Store, geocoder ReverseGeocoder, config Config) *Ingester {
	return &Ingester{store: store, geocoder: geocoder, config: config}
}

// Submit stores a new location. It fails with a *ValidationError when the
// submission is rejected, or with an error matching ErrStoreUnavailable when
// it could not be written. Naming the location never makes it fail.
func (i *Ingester) Submit(ctx context.Context, sub Submission) (*Created, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	// The only rounding on the write path. Callers that already rounded are
	// rounded again so the grid holds whatever clients do.
	p := spatial.Point{Lat: *sub.Latitude, Lng: *sub.Longitude}.Rounded(i.config.Precision)

	enrichment := i.enrich(ctx, p)

	loc := &Location{
		Latitude:     p.Lat,
		Longitude:    p.Lng,
		LocationName: enrichment.Name,
		CreatedAt:    i.config.now(),
	}
	if sub.Name != nil {
		loc.Name = *sub.Name
	}

	_, ttl, err := i.store.Put(ctx, loc)
	if err != nil {
		return nil, err
	}

	log.Printf("📍 Stored location %s at %s (%s)", loc.ID, p, describe(enrichment))

	return &Created{Location: *loc, TTL: int64(ttl.Seconds())}, nil
}

// enrich asks the geocoder for a name using the rounded point only.
func (i *Ingester) enrich(ctx context.Context, p spatial.Point) Enrichment {
	if i.geocoder == nil {
		return Enrichment{}
	}

	if i.config.GeocodeTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, i.config.GeocodeTimeout)
		defer cancel()
	}

	name, err := i.geocoder.Reverse(ctx, p.Lat, p.Lng, i.config.ReverseZoom)
	if err != nil {
		log.Printf("⚠️  Reverse geocoding %s failed, storing without a name: %v", p, err)

		return Enrichment{Err: err}
	}

	return Enrichment{Name: name}
}

func describe(e Enrichment) string {
	switch {
	case e.Enriched():
		return e.Name
	case e.Err != nil && geocode.IsTimeoutError(e.Err):
		return "unnamed, geocoder timed out"
	default:
		return "unnamed"
	}
}
