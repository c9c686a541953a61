// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNominatim(t *testing.T) {
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"display_name":"Madrid, Comunidad de Madrid, España"}`))
	}))
	defer srv.Close()

	var trace bytes.Buffer

	g, err := New(context.Background(), Options{
		NominatimURL: srv.URL,
		UserAgent:    "livemap/test (+https://example.org)",
		Timeout:      time.Second,
		Trace:        &trace,
	})
	require.NoError(t, err)
	assert.Equal(t, "nominatim", g.Name())

	name, err := g.Reverse(context.Background(), 40.42, -3.7, DefaultZoom)
	require.NoError(t, err)
	assert.Equal(t, "Madrid, Comunidad de Madrid, España", name)
	assert.Equal(t, "livemap/test (+https://example.org)", gotUA)
	assert.Contains(t, trace.String(), "> GET /reverse?")
}

func TestNewRequiresUserAgentForNominatim(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: ProviderNominatim})
	assert.ErrorContains(t, err, "user agent")
}

func TestNewGoogleWithKey(t *testing.T) {
	g, err := New(context.Background(), Options{Provider: ProviderGoogle, GoogleAPIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "google_maps", g.Name())
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "bing", UserAgent: "x"})
	assert.ErrorContains(t, err, `unknown geocoder "bing"`)
}
