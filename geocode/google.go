// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GoogleMapsBaseURL is the Geocoding API endpoint.
const GoogleMapsBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder. An empty baseURL
// selects the public endpoint.
func NewGoogleMapsGeocoder(apiKey, baseURL string, httpClient *http.Client) *GoogleMapsGeocoder {
	if baseURL == "" {
		baseURL = GoogleMapsBaseURL
	}

	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, OVER_QUERY_LIMIT, REQUEST_DENIED, INVALID_REQUEST
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleMapsGeocoder) Name() string { return "google_maps" }

func (g *GoogleMapsGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("address", query)

	resp, err := g.call(ctx, params)
	if err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, Place{
			Latitude:    r.Geometry.Location.Lat,
			Longitude:   r.Geometry.Location.Lng,
			DisplayName: r.FormattedAddress,
		})
	}

	return places, nil
}

func (g *GoogleMapsGeocoder) Reverse(ctx context.Context, latitude, longitude float64, zoom int) (string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", latitude, longitude))
	params.Set("result_type", googleResultType(zoom))

	resp, err := g.call(ctx, params)
	if err != nil {
		return "", err
	}

	if len(resp.Results) == 0 {
		return "", &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results found for %f,%f", latitude, longitude),
		}
	}

	return resp.Results[0].FormattedAddress, nil
}

// googleResultType maps a Nominatim style zoom to the closest Google result type.
func googleResultType(zoom int) string {
	switch {
	case zoom <= 3:
		return "country"
	case zoom <= 5:
		return "administrative_area_level_1"
	case zoom <= 10:
		return "locality|postal_town|administrative_area_level_2"
	case zoom <= 14:
		return "sublocality|neighborhood"
	default:
		return "street_address|route"
	}
}

func (g *GoogleMapsGeocoder) call(ctx context.Context, params url.Values) (*googleMapsResponse, error) {
	params.Set("key", g.apiKey)

	var gmResp googleMapsResponse
	if err := getJSON(ctx, g.httpClient, g.baseURL+"?"+params.Encode(), &gmResp); err != nil {
		return nil, err
	}

	switch gmResp.Status {
	case "OK", "ZERO_RESULTS":
		return &gmResp, nil
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT", "REQUEST_DENIED":
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google maps status: " + gmResp.Status + statusDetail(gmResp.ErrorMessage)}
	case "INVALID_REQUEST":
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "google maps status: " + gmResp.Status + statusDetail(gmResp.ErrorMessage)}
	default:
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "google maps status: " + gmResp.Status + statusDetail(gmResp.ErrorMessage)}
	}
}

func statusDetail(msg string) string {
	if msg = strings.TrimSpace(msg); msg == "" {
		return ""
	}

	return " (" + msg + ")"
}
