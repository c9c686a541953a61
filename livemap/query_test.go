// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/remotehack/livemap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLiveOldestFirst(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	store := NewStore(NewMemoryBackend(0), cfg)
	ingester := NewIngester(store, nil, cfg)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := ingester.Submit(ctx, NewSubmission(name, 1, 1))
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	listing, err := NewQuery(store).ListLive(ctx)
	require.NoError(t, err)

	names := []string{}
	for _, loc := range listing.Locations {
		names = append(names, loc.Name)
		require.NotNil(t, loc.ExpiresAt)
	}

	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestListLiveEmpty(t *testing.T) {
	store := NewStore(NewMemoryBackend(0), testConfig(newFakeClock()))

	listing, err := NewQuery(store).ListLive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listing.Locations)
	assert.False(t, listing.Truncated)

	// An empty listing is an empty array, never null.
	out, err := json.Marshal(listing.Locations)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestFeatureCollection(t *testing.T) {
	locations := []LiveLocation{
		{Location: Location{ID: "abc", Name: "Han Solo", Latitude: 51.51, Longitude: -0.17, LocationName: "Greater London"}},
		{Location: Location{ID: "def", Latitude: 40.42, Longitude: -3.7}},
	}

	got := NewFeatureCollection(locations)

	want := FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			{
				Type:       "Feature",
				Properties: FeatureProperties{ID: "abc", Name: "Han Solo", LocationName: "Greater London"},
				Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{-0.17, 51.51}},
			},
			{
				Type:       "Feature",
				Properties: FeatureProperties{ID: "def"},
				Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{-3.7, 40.42}},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewFeatureCollection() mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"id": "abc", "name": "Han Solo", "locationName": "Greater London"},
			 "geometry": {"type": "Point", "coordinates": [-0.17, 51.51]}},
			{"type": "Feature", "properties": {"id": "def"},
			 "geometry": {"type": "Point", "coordinates": [-3.7, 40.42]}}
		]
	}`, string(out))
}

func TestFeatureCollectionEmpty(t *testing.T) {
	out, err := json.Marshal(NewFeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "FeatureCollection", "features": []}`, string(out))
}

func TestCellCounts(t *testing.T) {
	cfg := testConfig(newFakeClock())
	store := NewStore(NewMemoryBackend(0), cfg)
	ingester := NewIngester(store, nil, cfg)
	ctx := context.Background()

	// Two submissions snap to the same grid point, one is far away.
	for _, p := range [][2]float64{{51.5154, -0.1755}, {51.5201, -0.1799}, {40.4168, -3.7038}} {
		_, err := ingester.Submit(ctx, NewSubmission("", p[0], p[1]))
		require.NoError(t, err)
	}

	counts, truncated, err := NewQuery(store).CellCounts(ctx, 5)
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, counts, 2)

	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)
	assert.Equal(t, 5, counts[0].Resolution)
	assert.InDelta(t, 51.52, counts[0].Center.Lat, 0.2)
	assert.InDelta(t, 40.42, counts[1].Center.Lat, 0.2)
	assert.NotEqual(t, counts[0].Cell, counts[1].Cell)
}

func TestCellCountsRejectsFineResolution(t *testing.T) {
	store := NewStore(NewMemoryBackend(0), testConfig(newFakeClock()))

	_, _, err := NewQuery(store).CellCounts(context.Background(), 12)
	assert.ErrorIs(t, err, spatial.ErrResolutionOutOfRange)

	_, _, err = NewQuery(store).CellCounts(context.Background(), -1)
	assert.ErrorIs(t, err, spatial.ErrResolutionOutOfRange)
}
