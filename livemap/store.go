// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrStoreUnavailable matches every failure of the underlying storage.
	ErrStoreUnavailable = errors.New("location store unavailable")

	// ErrKeyExists is returned by backends when a key is already taken.
	ErrKeyExists = errors.New("key already exists")
)

// StoreError wraps a backend failure. It matches ErrStoreUnavailable.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Key, ErrStoreUnavailable, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStoreUnavailable, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Entry is a raw key-value pair with its absolute expiration.
type Entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time // zero when the backend does not report it
}

// Page is the result of listing a backend.
type Page struct {
	Entries []Entry

	// Truncated is set when the backend stopped at its list limit.
	Truncated bool
}

// Backend is a key-value store with absolute expirations. Reads take the
// instant to evaluate expiry at, so entries past their expiration are never
// returned even when the engine has not evicted them yet.
type Backend interface {
	// Put stores value under key until expiresAt. It returns ErrKeyExists
	// if the key is already present.
	Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error

	// Get returns the live entry for key, or nil if unknown or expired.
	Get(ctx context.Context, key string, asOf time.Time) (*Entry, error)

	// List returns the live entries, in no particular order.
	List(ctx context.Context, asOf time.Time) (*Page, error)
}

// Listing is the set of live records.
type Listing struct {
	Locations []LiveLocation

	// Truncated is set when Locations is not every live record, either
	// because the backend stopped at its list limit or entries were skipped.
	Truncated bool

	// Skipped counts live entries that could not be decoded.
	Skipped int
}

// Store persists Location records with a fixed TTL. It owns the serialized
// form of a record and the clock used to expire it.
type Store struct {
	backend Backend
	config  Config
	newID   func() string
}

// NewStore creates a store over backend.
func NewStore(backend Backend, config Config) *Store {
	return &Store{
		backend: backend,
		config:  config,
		newID:   uuid.NewString,
	}
}

// TTL returns the time-to-live applied to every record.
func (s *Store) TTL() time.Duration {
	return s.config.TTL
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.config.StoreTimeout)
}

// Put assigns a new id to loc, stores it until now+TTL and returns the id
// and the TTL used.
func (s *Store) Put(ctx context.Context, loc *Location) (string, time.Duration, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ttl := s.config.TTL
	expiresAt := s.config.now().Add(ttl)

	const attempts = 3
	for range attempts {
		loc.ID = s.newID()

		value, err := json.Marshal(loc)
		if err != nil {
			return "", 0, fmt.Errorf("encoding location: %w", err)
		}

		err = s.backend.Put(ctx, loc.ID, value, expiresAt)
		if errors.Is(err, ErrKeyExists) {
			log.Printf("⚠️  Location id %s already taken, generating another", loc.ID)

			continue
		}

		if err != nil {
			return "", 0, &StoreError{Op: "put", Key: loc.ID, Err: err}
		}

		return loc.ID, ttl, nil
	}

	return "", 0, &StoreError{Op: "put", Err: fmt.Errorf("no free id after %d attempts", attempts)}
}

// Get returns the live record for id. The boolean is false when the record
// is unknown or expired.
func (s *Store) Get(ctx context.Context, id string) (*LiveLocation, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entry, err := s.backend.Get(ctx, id, s.config.now())
	if err != nil {
		return nil, false, &StoreError{Op: "get", Key: id, Err: err}
	}

	if entry == nil {
		return nil, false, nil
	}

	loc, err := decodeEntry(*entry)
	if err != nil {
		return nil, false, &StoreError{Op: "get", Key: id, Err: err}
	}

	return loc, true, nil
}

// List returns every live record.
func (s *Store) List(ctx context.Context) (*Listing, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, err := s.backend.List(ctx, s.config.now())
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}

	listing := &Listing{
		Locations: make([]LiveLocation, 0, len(page.Entries)),
		Truncated: page.Truncated,
	}

	for _, entry := range page.Entries {
		loc, err := decodeEntry(entry)
		if err != nil {
			log.Printf("⚠️  Skipping unreadable location %s: %v", entry.Key, err)
			listing.Skipped++
			listing.Truncated = true

			continue
		}

		listing.Locations = append(listing.Locations, *loc)
	}

	return listing, nil
}

func decodeEntry(entry Entry) (*LiveLocation, error) {
	var loc LiveLocation
	if err := json.Unmarshal(entry.Value, &loc.Location); err != nil {
		return nil, fmt.Errorf("decoding location %s: %w", entry.Key, err)
	}

	loc.ID = entry.Key

	if !entry.ExpiresAt.IsZero() {
		expiresAt := entry.ExpiresAt.UTC()
		loc.ExpiresAt = &expiresAt
	}

	return &loc, nil
}
