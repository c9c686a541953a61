// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngester(geocoder ReverseGeocoder) (*Ingester, *MemoryBackend, *fakeClock) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	backend := NewMemoryBackend(0)

	return NewIngester(NewStore(backend, cfg), geocoder, cfg), backend, clock
}

func TestSubmitRoundsBeforeStoringAndGeocoding(t *testing.T) {
	geocoder := &stubGeocoder{name: "Greater London, England, United Kingdom"}
	ingester, backend, clock := newTestIngester(geocoder)

	created, err := ingester.Submit(context.Background(), NewSubmission("Han Solo", 51.5154, -0.1755))
	require.NoError(t, err)

	assert.Equal(t, 51.52, created.Latitude)
	assert.Equal(t, -0.18, created.Longitude)
	assert.Equal(t, "Han Solo", created.Name)
	assert.Equal(t, "Greater London, England, United Kingdom", created.LocationName)
	assert.Equal(t, int64(30*24*60*60), created.TTL)
	assert.True(t, created.CreatedAt.Equal(clock.Now()))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, backend.Len())

	// The geocoder only ever sees the rounded coordinate.
	require.Len(t, geocoder.calls, 1)
	assert.Equal(t, [2]float64{51.52, -0.18}, geocoder.calls[0])
}

func TestSubmitStoresRoundedValues(t *testing.T) {
	ingester, _, _ := newTestIngester(nil)

	created, err := ingester.Submit(context.Background(), NewSubmission("", 40.4168, -3.7038))
	require.NoError(t, err)

	got, ok, err := ingester.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 40.42, got.Latitude)
	assert.Equal(t, -3.7, got.Longitude)
}

func TestSubmitRejectsInvalid(t *testing.T) {
	name := "Leia"
	empty := ""
	lat, lng := 51.5, -0.1
	badLat, badLng := 91.0, 181.0
	nan := math.NaN()

	tests := []struct {
		name      string
		sub       Submission
		wantField string
	}{
		{"latitude out of range", Submission{Name: &name, Latitude: &badLat, Longitude: &lng}, "latitude"},
		{"longitude out of range", Submission{Latitude: &lat, Longitude: &badLng}, "longitude"},
		{"missing latitude", Submission{Longitude: &lng}, "latitude"},
		{"missing longitude", Submission{Latitude: &lat}, "longitude"},
		{"nan latitude", Submission{Latitude: &nan, Longitude: &lng}, "latitude"},
		{"empty name", Submission{Name: &empty, Latitude: &lat, Longitude: &lng}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocoder := &stubGeocoder{name: "Somewhere"}
			ingester, backend, _ := newTestIngester(geocoder)

			created, err := ingester.Submit(context.Background(), tt.sub)
			assert.Nil(t, created)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, 0, backend.Len(), "nothing is written")
			assert.Empty(t, geocoder.calls, "nothing is geocoded")
		})
	}
}

func TestSubmitKeepsWhitespaceName(t *testing.T) {
	ingester, _, _ := newTestIngester(nil)

	created, err := ingester.Submit(context.Background(), NewSubmission("  ", 51.5, -0.1))
	require.NoError(t, err)
	assert.Equal(t, "  ", created.Name)
}

func TestSubmitNearZeroIsPositiveZero(t *testing.T) {
	ingester, _, _ := newTestIngester(nil)

	created, err := ingester.Submit(context.Background(), NewSubmission("", 51.5, -0.004))
	require.NoError(t, err)
	assert.False(t, math.Signbit(created.Longitude))

	body, err := json.Marshal(created)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"longitude":0,`)
	assert.NotContains(t, string(body), `"longitude":-0`)

	fc := NewFeatureCollection([]LiveLocation{{Location: created.Location}})
	body, err = json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"coordinates":[0,51.5]`)
}

func TestSubmitAcceptsBoundaryValues(t *testing.T) {
	ingester, _, _ := newTestIngester(nil)

	created, err := ingester.Submit(context.Background(), NewSubmission("", -90, 180))
	require.NoError(t, err)
	assert.Equal(t, -90.0, created.Latitude)
	assert.Equal(t, 180.0, created.Longitude)
}

func TestSubmitSurvivesGeocoderFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"timeout", &geocode.GeocodingError{Type: geocode.ErrorTypeTimeout, Message: "deadline", Err: context.DeadlineExceeded}},
		{"rate limited", geocode.ClassifyHTTPError(429, "slow down")},
		{"not found", &geocode.GeocodingError{Type: geocode.ErrorTypeNotFound, Message: "Unable to geocode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingester, backend, _ := newTestIngester(&stubGeocoder{err: tt.err})

			created, err := ingester.Submit(context.Background(), NewSubmission("Chewie", 10.123, 20.456))
			require.NoError(t, err)
			assert.Empty(t, created.LocationName)
			assert.Equal(t, 1, backend.Len())

			entry, err := backend.Get(context.Background(), created.ID, time.Time{})
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(entry.Value, &raw))
			assert.NotContains(t, raw, "locationName")
		})
	}
}

func TestSubmitAnonymous(t *testing.T) {
	ingester, backend, _ := newTestIngester(&stubGeocoder{name: "Paris, France"})

	created, err := ingester.Submit(context.Background(), NewSubmission("", 48.8566, 2.3522))
	require.NoError(t, err)

	entry, err := backend.Get(context.Background(), created.ID, time.Time{})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(entry.Value, &raw))
	assert.NotContains(t, raw, "name")
	assert.Equal(t, "Paris, France", raw["locationName"])

	out, err := json.Marshal(created)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"name"`)
	assert.Contains(t, string(out), `"ttl":2592000`)
}

func TestSubmitStoreUnavailable(t *testing.T) {
	cfg := testConfig(newFakeClock())
	ingester := NewIngester(NewStore(failingBackend{}, cfg), nil, cfg)

	_, err := ingester.Submit(context.Background(), NewSubmission("", 1, 1))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestEnrichUsesTimeout(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	cfg.GeocodeTimeout = 10 * time.Millisecond

	ingester := NewIngester(NewStore(NewMemoryBackend(0), cfg), blockingGeocoder{}, cfg)

	enrichment := ingester.enrich(context.Background(), spatial.Point{Lat: 1, Lng: 2})
	assert.False(t, enrichment.Enriched())
	assert.ErrorIs(t, enrichment.Err, context.DeadlineExceeded)
	assert.Equal(t, "unnamed, geocoder timed out", describe(enrichment))
}

// blockingGeocoder waits for the context to end.
type blockingGeocoder struct{}

func (blockingGeocoder) Reverse(ctx context.Context, _, _ float64, _ int) (string, error) {
	<-ctx.Done()

	return "", ctx.Err()
}
