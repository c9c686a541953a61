// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// NominatimBaseURL is the public OpenStreetMap instance.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the OpenStreetMap Nominatim API. The usage policy
// requires an identifying User-Agent, which the caller sets on httpClient.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim geocoder. An empty baseURL
// selects the public instance.
func NewNominatimGeocoder(baseURL string, httpClient *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}

	return &NominatimGeocoder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (g *NominatimGeocoder) Name() string { return "nominatim" }

func (g *NominatimGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")

	var results []nominatimPlace
	if err := getJSON(ctx, g.httpClient, g.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(results))

	for _, r := range results {
		p, err := r.place()
		if err != nil {
			return nil, err
		}

		places = append(places, p)
	}

	return places, nil
}

func (g *NominatimGeocoder) Reverse(ctx context.Context, latitude, longitude float64, zoom int) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("zoom", strconv.Itoa(zoom))
	params.Set("format", "jsonv2")

	var result nominatimPlace
	if err := getJSON(ctx, g.httpClient, g.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		return "", err
	}

	// Nominatim answers 200 with an error member when nothing is there (oceans).
	if result.Error != "" {
		return "", &GeocodingError{Type: ErrorTypeNotFound, Message: "nominatim: " + result.Error}
	}

	if result.DisplayName == "" {
		return "", &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "nominatim: missing display_name"}
	}

	return result.DisplayName, nil
}

func (r nominatimPlace) place() (Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Place{}, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "nominatim: invalid lat", Err: err}
	}

	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Place{}, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "nominatim: invalid lon", Err: err}
	}

	return Place{Latitude: lat, Longitude: lon, DisplayName: r.DisplayName}, nil
}

// getJSON performs a single GET and decodes a JSON body into out.
func getJSON(ctx context.Context, client *http.Client, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return ClassifyHTTPError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if IsTimeoutError(err) {
			return classifyTransportError(err)
		}

		return &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "decoding response", Err: err}
	}

	return nil
}
