// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/remotehack/livemap/utils/httputils"
)

// Providers.
const (
	ProviderNominatim = "nominatim"
	ProviderGoogle    = "google"
)

// GoogleKeyDisplayName is the API key looked up through Application Default
// Credentials when no key is given.
const GoogleKeyDisplayName = "Live Map Geocoding Key"

// Options select and configure a provider.
type Options struct {
	Provider     string
	NominatimURL string

	GoogleAPIKey  string
	GoogleProject string

	UserAgent string
	Timeout   time.Duration

	// Trace receives a dump of every provider call when set.
	Trace io.Writer
}

// New creates the geocoder selected by opts.
func New(ctx context.Context, opts Options) (Geocoder, error) {
	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
		Trace:     opts.Trace,
		TraceBody: opts.Trace != nil,
	})

	switch opts.Provider {
	case "", ProviderNominatim:
		if opts.UserAgent == "" {
			return nil, fmt.Errorf("%s requires an identifying user agent", ProviderNominatim)
		}

		log.Printf("📍 Geocoding: Nominatim (%s)", orDefault(opts.NominatimURL, NominatimBaseURL))

		return NewNominatimGeocoder(opts.NominatimURL, client), nil

	case ProviderGoogle:
		key := opts.GoogleAPIKey
		if key == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			key, err = APIKeyFromADC(ctx, GoogleKeyDisplayName, opts.GoogleProject)
			if err != nil {
				return nil, fmt.Errorf("retrieving Google Maps API key: %w", err)
			}

			log.Println("✅ Successfully retrieved Google Maps API Key via ADC")
		}

		log.Println("📍 Geocoding: Google Maps")

		return NewGoogleMapsGeocoder(key, "", client), nil

	default:
		return nil, fmt.Errorf("unknown geocoder %q, expected %s or %s", opts.Provider, ProviderNominatim, ProviderGoogle)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
