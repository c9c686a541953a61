// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

// FeatureCollection is a GeoJSON feature collection of live locations.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON point feature.
type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   Geometry          `json:"geometry"`
}

// FeatureProperties are the public attributes of a location.
type FeatureProperties struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	LocationName string `json:"locationName,omitempty"`
}

// Geometry is a GeoJSON point. Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewFeatureCollection reprojects live locations into GeoJSON.
func NewFeatureCollection(locations []LiveLocation) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(locations)),
	}

	for _, loc := range locations {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Properties: FeatureProperties{
				ID:           loc.ID,
				Name:         loc.Name,
				LocationName: loc.LocationName,
			},
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{loc.Longitude, loc.Latitude},
			},
		})
	}

	return fc
}
