// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleMapsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "London", r.URL.Query().Get("address"))

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "London, UK",
				"geometry": {"location": {"lat": 51.5072178, "lng": -0.1275862}}
			}]
		}`))
	}))
	defer srv.Close()

	g := NewGoogleMapsGeocoder("test-key", srv.URL, srv.Client())

	places, err := g.Search(context.Background(), "London")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "London, UK", places[0].DisplayName)
	assert.InDelta(t, 51.5072178, places[0].Latitude, 1e-9)
}

func TestGoogleMapsZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	g := NewGoogleMapsGeocoder("k", srv.URL, srv.Client())

	places, err := g.Search(context.Background(), "qwertyuiop")
	require.NoError(t, err)
	assert.Empty(t, places)

	_, err = g.Reverse(context.Background(), 0, 0, DefaultZoom)
	assert.True(t, IsNotFound(err))
}

func TestGoogleMapsReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "51.520000,-0.180000", r.URL.Query().Get("latlng"))
		assert.Contains(t, r.URL.Query().Get("result_type"), "locality")

		_, _ = w.Write([]byte(`{"status": "OK", "results": [{"formatted_address": "London, UK"}]}`))
	}))
	defer srv.Close()

	g := NewGoogleMapsGeocoder("k", srv.URL, srv.Client())

	name, err := g.Reverse(context.Background(), 51.52, -0.18, DefaultZoom)
	require.NoError(t, err)
	assert.Equal(t, "London, UK", name)
}

func TestGoogleMapsStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "slow down"}`))
	}))
	defer srv.Close()

	g := NewGoogleMapsGeocoder("k", srv.URL, srv.Client())

	_, err := g.Search(context.Background(), "London")
	require.Error(t, err)
	assert.True(t, IsQuotaExceededError(err))
	assert.Contains(t, err.Error(), "slow down")
}

func TestGoogleResultType(t *testing.T) {
	assert.Equal(t, "country", googleResultType(3))
	assert.Equal(t, "administrative_area_level_1", googleResultType(5))
	assert.Contains(t, googleResultType(DefaultZoom), "locality")
	assert.Equal(t, "street_address|route", googleResultType(18))
}
