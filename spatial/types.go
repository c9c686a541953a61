// Copyright 2025 The Remote Hack Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the coordinate primitives shared by the live map:
// bounds checking, the privacy grid and H3 indexing.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

// DefaultPrecision is the number of decimal places kept for published
// coordinates. Two decimals is a grid of roughly 1.1 km.
const DefaultPrecision = 2

// MaxCellResolution is the finest H3 resolution exposed for aggregation.
// Resolution 8 cells are ~0.7 km², already finer than the rounding grid.
const MaxCellResolution = 8

var (
	// ErrLatitudeOutOfRange is returned when a latitude falls outside [-90, 90].
	ErrLatitudeOutOfRange = errors.New("latitude must be between -90 and 90")
	// ErrLongitudeOutOfRange is returned when a longitude falls outside [-180, 180].
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.Lat, p.Lng)
}

// Validate checks the point lies within the valid WGS84 ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w (got %v)", ErrLatitudeOutOfRange, p.Lat)
	}

	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w (got %v)", ErrLongitudeOutOfRange, p.Lng)
	}

	return nil
}

// Round rounds v to the given number of decimal places, halves away from
// zero. Never returns negative zero.
func Round(v float64, precision int) float64 {
	scale := math.Pow10(precision)

	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}

	return r
}

// Rounded returns the point snapped to the privacy grid.
func (p Point) Rounded(precision int) Point {
	return Point{
		Lat: Round(p.Lat, precision),
		Lng: Round(p.Lng, precision),
	}
}

// ErrResolutionOutOfRange is returned for H3 resolutions outside [0, MaxCellResolution].
var ErrResolutionOutOfRange = fmt.Errorf("h3 resolution must be between 0 and %d", MaxCellResolution)

// CheckResolution validates an H3 resolution for aggregation.
func CheckResolution(res int) error {
	if res < 0 || res > MaxCellResolution {
		return fmt.Errorf("%w (got %d)", ErrResolutionOutOfRange, res)
	}

	return nil
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (h3.Cell, error) {
	if err := CheckResolution(res); err != nil {
		return 0, err
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// CellCenter returns the centre point of an H3 cell.
func CellCenter(cell h3.Cell) (Point, error) {
	latLng, err := h3.CellToLatLng(cell)
	if err != nil {
		return Point{}, fmt.Errorf("locating h3 cell %s: %w", cell, err)
	}

	return Point{Lat: latLng.Lat, Lng: latLng.Lng}, nil
}
