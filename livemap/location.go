// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

// Package livemap stores approximate participant locations for a limited time
// and serves them back for the live map.
package livemap

import (
	"errors"
	"fmt"
	"time"

	"github.com/remotehack/livemap/spatial"
)

// Location is a published position. Records are immutable once stored and
// disappear when their TTL elapses.
type Location struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	LocationName string    `json:"locationName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Point returns the record coordinates.
func (l *Location) Point() spatial.Point {
	return spatial.Point{Lat: l.Latitude, Lng: l.Longitude}
}

// LiveLocation is a stored record as seen by readers.
type LiveLocation struct {
	Location
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Created is returned to the submitter of a location.
type Created struct {
	Location
	// TTL in seconds.
	TTL int64 `json:"ttl"`
}

// Submission is an incoming, not yet validated location.
type Submission struct {
	Name      *string  `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// NewSubmission builds a submission; an empty name means anonymous.
func NewSubmission(name string, latitude, longitude float64) Submission {
	s := Submission{Latitude: &latitude, Longitude: &longitude}
	if name != "" {
		s.Name = &name
	}

	return s
}

// ValidationError reports a submission rejected before anything was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks bounds and the optional name. It runs on the raw values,
// before any rounding.
func (s *Submission) Validate() error {
	if s.Latitude == nil {
		return &ValidationError{Field: "latitude", Message: "is required"}
	}

	if s.Longitude == nil {
		return &ValidationError{Field: "longitude", Message: "is required"}
	}

	p := spatial.Point{Lat: *s.Latitude, Lng: *s.Longitude}
	if err := p.Validate(); err != nil {
		field := "latitude"
		if errors.Is(err, spatial.ErrLongitudeOutOfRange) {
			field = "longitude"
		}

		return &ValidationError{Field: field, Message: err.Error()}
	}

	if s.Name != nil && *s.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty when present"}
	}

	return nil
}
