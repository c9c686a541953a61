// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/remotehack/livemap/discord"
	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/livemap"
)

const dbFile = "livemap.duckdb"

// components are the wired live map services.
type components struct {
	store    *livemap.Store
	ingester *livemap.Ingester
	query    *livemap.Query
	geocoder geocode.Geocoder
	sweeper  *livemap.SQLBackend
	closers  []func() error
}

func (c *components) Close() {
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			log.Printf("⚠️  Closing: %v", err)
		}
	}
}

// openBackend opens the storage engine selected by opts.
func openBackend(ctx context.Context, opts *livemap.Options, c *components) (livemap.Backend, error) {
	switch opts.Backend {
	case livemap.BackendMemory:
		log.Println("⚠️  Using the in-memory store, locations are lost on exit")

		return livemap.NewMemoryBackend(opts.ListLimit), nil

	case livemap.BackendDynamoDB:
		log.Printf("🗄️  Using DynamoDB table %s", opts.DynamoTable)

		return livemap.NewDynamoBackendFromEnv(ctx, opts.DynamoTable, opts.ListLimit)

	default:
		if err := os.MkdirAll(opts.DbPath, 0o750); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}

		dbpath := filepath.Join(opts.DbPath, dbFile)

		db, err := sql.Open("duckdb", dbpath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}

		c.closers = append(c.closers, db.Close)

		backend := livemap.NewSQLBackend(db, opts.ListLimit)
		if err := backend.CreateSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}

		log.Printf("🗄️  Using DuckDB at %s", dbpath)

		c.sweeper = backend

		return backend, nil
	}
}

// wire builds the store, the pipeline and the query service. The geocoder
// is only created when withGeocoder is set.
func wire(ctx context.Context, withGeocoder bool) (*components, error) {
	c := &components{}
	cfg := storeOptions.Config()

	backend, err := openBackend(ctx, storeOptions, c)
	if err != nil {
		c.Close()

		return nil, err
	}

	if withGeocoder {
		opts := *geocodeOptions
		opts.Timeout = storeOptions.GeocodeTimeout

		c.geocoder, err = geocode.New(ctx, opts)
		if err != nil {
			c.Close()

			return nil, err
		}
	}

	c.store = livemap.NewStore(backend, cfg)
	c.query = livemap.NewQuery(c.store)

	c.ingester = livemap.NewIngester(c.store, c.geocoder, cfg)

	return c, nil
}

// sweep deletes expired rows of the DuckDB store every interval until ctx
// ends. Other backends evict on their own.
func (c *components) sweep(ctx context.Context, interval time.Duration) {
	if c.sweeper == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := c.sweeper.Sweep(ctx, time.Now())
		if err != nil {
			log.Printf("⚠️  %v", err)
		} else if n > 0 {
			log.Printf("🧹 Removed %d expired locations", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func newRegistrar() (*discord.Registrar, error) {
	return discord.NewRegistrar(discordOptions.ApplicationID, discordOptions.Token)
}
