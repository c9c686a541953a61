// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"fmt"
	"time"
)

// Backends.
const (
	BackendDuckDB   = "duckdb"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Options are the command line settings of the store and the pipeline.
type Options struct {
	DbPath      string
	Backend     string
	DynamoTable string
	ListLimit   int

	TTL            time.Duration
	Precision      int
	GeocodeTimeout time.Duration
	StoreTimeout   time.Duration
}

// Validate rejects settings that would break the privacy or expiry guarantees.
func (o *Options) Validate() error {
	switch o.Backend {
	case BackendDuckDB, BackendDynamoDB, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q, expected %s, %s or %s", o.Backend, BackendDuckDB, BackendDynamoDB, BackendMemory)
	}

	if o.Backend == BackendDynamoDB && o.DynamoTable == "" {
		return fmt.Errorf("the %s backend needs a table name", BackendDynamoDB)
	}

	if o.TTL <= 0 {
		return fmt.Errorf("ttl must be positive (got %v)", o.TTL)
	}

	// Below 0 decimals the grid is 111 km; above 4 it is finer than a street.
	if o.Precision < 0 || o.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 decimals (got %d)", o.Precision)
	}

	return nil
}

// Config converts the options into the component configuration.
func (o *Options) Config() Config {
	cfg := DefaultConfig()
	cfg.TTL = o.TTL
	cfg.Precision = o.Precision
	cfg.GeocodeTimeout = o.GeocodeTimeout

	if o.StoreTimeout > 0 {
		cfg.StoreTimeout = o.StoreTimeout
	}

	return cfg
}
