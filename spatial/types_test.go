// Copyright 2025 The Remote Hack Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"positive up", 51.5154, 51.52},
		{"negative away from zero", -0.1755, -0.18},
		{"positive down", 51.5114, 51.51},
		{"negative down", -0.1723, -0.17},
		{"already rounded", 51.51, 51.51},
		{"zero", 0, 0},
		{"pole", 90, 90},
		{"antimeridian", -180, -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round(tt.in, DefaultPrecision), 1e-9)
		})
	}
}

func TestRoundNeverReturnsNegativeZero(t *testing.T) {
	for _, v := range []float64{-0.004, -0.0049, math.Copysign(0, -1)} {
		r := Round(v, DefaultPrecision)
		assert.Zero(t, r)
		assert.False(t, math.Signbit(r), "Round(%v) kept the sign", v)
	}

	assert.Equal(t, "(51.5, 0)", Point{Lat: 51.5, Lng: -0.004}.Rounded(DefaultPrecision).String())
}

func TestRoundIsIdempotentAndBounded(t *testing.T) {
	for lat := -90.0; lat <= 90.0; lat += 0.3217 {
		for lng := -180.0; lng <= 180.0; lng += 0.7919 {
			p := Point{Lat: lat, Lng: lng}
			once := p.Rounded(DefaultPrecision)
			twice := once.Rounded(DefaultPrecision)

			require.Equal(t, once, twice, "rounding %v twice", p)
			require.LessOrEqual(t, math.Abs(once.Lat-lat), 0.005+1e-9)
			require.LessOrEqual(t, math.Abs(once.Lng-lng), 0.005+1e-9)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		wantErr error
	}{
		{"valid", Point{Lat: 51.51, Lng: -0.17}, nil},
		{"lat too high", Point{Lat: 91, Lng: 0}, ErrLatitudeOutOfRange},
		{"lat too low", Point{Lat: -90.01, Lng: 0}, ErrLatitudeOutOfRange},
		{"lng too high", Point{Lat: 0, Lng: 180.5}, ErrLongitudeOutOfRange},
		{"lng too low", Point{Lat: 0, Lng: -181}, ErrLongitudeOutOfRange},
		{"nan", Point{Lat: math.NaN(), Lng: 0}, ErrLatitudeOutOfRange},
		{"edges", Point{Lat: -90, Lng: 180}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCell(t *testing.T) {
	a := Point{Lat: 51.52, Lng: -0.18}

	cell, err := a.Cell(4)
	require.NoError(t, err)

	center, err := CellCenter(cell)
	require.NoError(t, err)
	assert.InDelta(t, a.Lat, center.Lat, 0.5)
	assert.InDelta(t, a.Lng, center.Lng, 0.5)

	again, err := center.Cell(4)
	require.NoError(t, err)
	assert.Equal(t, cell, again, "a cell contains its own centre")

	_, err = a.Cell(MaxCellResolution + 1)
	assert.ErrorIs(t, err, ErrResolutionOutOfRange)
}
