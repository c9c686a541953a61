// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/remotehack/livemap/spatial"
)

// Query reads live records for the API, the GeoJSON export and chat replies.
type Query struct {
	store *Store
}

// NewQuery creates a query service over store.
func NewQuery(store *Store) *Query {
	return &Query{store: store}
}

// TTL returns how long a record stays live.
func (q *Query) TTL() time.Duration {
	return q.store.TTL()
}

// ListLive returns the live records, oldest first.
func (q *Query) ListLive(ctx context.Context) (*Listing, error) {
	listing, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}

	if listing.Truncated {
		log.Printf("⚠️  Location listing truncated at %d records (%d unreadable)", len(listing.Locations), listing.Skipped)
	}

	sort.SliceStable(listing.Locations, func(a, b int) bool {
		return listing.Locations[a].CreatedAt.Before(listing.Locations[b].CreatedAt)
	})

	return listing, nil
}

// CellCount is the number of live records inside an H3 cell.
type CellCount struct {
	Cell       string        `json:"cell"`
	Resolution int           `json:"resolution"`
	Center     spatial.Point `json:"center"`
	Count      int           `json:"count"`
}

// CellCounts groups the live records by H3 cell at resolution res, busiest
// cells first.
func (q *Query) CellCounts(ctx context.Context, res int) ([]CellCount, bool, error) {
	if err := spatial.CheckResolution(res); err != nil {
		return nil, false, err
	}

	listing, err := q.ListLive(ctx)
	if err != nil {
		return nil, false, err
	}

	byCell := make(map[string]*CellCount)
	order := []string{}

	for _, loc := range listing.Locations {
		cell, err := loc.Point().Cell(res)
		if err != nil {
			return nil, false, err
		}

		key := cell.String()

		cc, ok := byCell[key]
		if !ok {
			center, err := spatial.CellCenter(cell)
			if err != nil {
				return nil, false, err
			}

			cc = &CellCount{Cell: key, Resolution: res, Center: center}
			byCell[key] = cc
			order = append(order, key)
		}

		cc.Count++
	}

	counts := make([]CellCount, 0, len(order))
	for _, key := range order {
		counts = append(counts, *byCell[key])
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})

	return counts, listing.Truncated, nil
}
