// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bench drives a query server with a fixed workload and reports throughput.
//
// A run issues Repetitions batches of BatchSize queries. Each query in a batch gets a
// distinct name parameter. Batches can optionally be wrapped in a transaction, spread
// over a pool of workers that each own a client, and rate limited.
package bench

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	cypher "github.com/blinklabs-io/gocypher"
)

const (
	DefaultRepetitions = 10
	DefaultBatchSize   = 1000
	DefaultWorkers     = 1
	DefaultQuery       = "create n={name:{name}}"
)

// Querier is the part of a client that a benchmark run uses
type Querier interface {
	Send(req *cypher.Request) (cypher.Reply, error)
	Begin(options ...cypher.RequestOptionFunc) (int64, error)
	Commit(txId int64) (cypher.Reply, error)
	Close() error
}

// ClientFunc creates a client for a worker
type ClientFunc func() (Querier, error)

// Config holds the benchmark workload
type Config struct {
	Repetitions int
	BatchSize   int
	Query       string
	// Params are sent with every query. The name parameter is set per query
	Params map[string]any
	// Transactions wraps each batch in begin/commit
	Transactions bool
	// NoResults asks the server to discard result rows
	NoResults bool
	Workers   int
	// Rate limits queries per second across all workers. Zero means unlimited
	Rate   float64
	Logger *slog.Logger
}

// BenchOptionFunc is a function that modifies a Config
type BenchOptionFunc func(*Config)

// NewConfig returns a Config with the default workload, then applies the provided
// option functions
func NewConfig(options ...BenchOptionFunc) Config {
	c := Config{
		Repetitions: DefaultRepetitions,
		BatchSize:   DefaultBatchSize,
		Query:       DefaultQuery,
		Workers:     DefaultWorkers,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

func WithRepetitions(repetitions int) BenchOptionFunc {
	return func(c *Config) {
		c.Repetitions = repetitions
	}
}

func WithBatchSize(batchSize int) BenchOptionFunc {
	return func(c *Config) {
		c.BatchSize = batchSize
	}
}

func WithQuery(query string) BenchOptionFunc {
	return func(c *Config) {
		c.Query = query
	}
}

func WithParams(params map[string]any) BenchOptionFunc {
	return func(c *Config) {
		c.Params = params
	}
}

func WithTransactions(transactions bool) BenchOptionFunc {
	return func(c *Config) {
		c.Transactions = transactions
	}
}

func WithNoResults(noResults bool) BenchOptionFunc {
	return func(c *Config) {
		c.NoResults = noResults
	}
}

func WithWorkers(workers int) BenchOptionFunc {
	return func(c *Config) {
		c.Workers = workers
	}
}

func WithRate(rate float64) BenchOptionFunc {
	return func(c *Config) {
		c.Rate = rate
	}
}

func WithLogger(logger *slog.Logger) BenchOptionFunc {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Validate checks the workload
func (c Config) Validate() error {
	var errs []error
	if c.Repetitions < 1 {
		errs = append(errs, fmt.Errorf("repetitions must be positive: %d", c.Repetitions))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch size must be positive: %d", c.BatchSize))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive: %d", c.Workers))
	}
	if c.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must not be negative: %v", c.Rate))
	}
	return errors.Join(errs...)
}

// Report summarizes a benchmark run
type Report struct {
	Queries int
	Errors  int
	Elapsed time.Duration
}

// QueriesPerSecond returns the overall throughput
func (r Report) QueriesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Queries) / r.Elapsed.Seconds()
}

func (r Report) String() string {
	return fmt.Sprintf(
		"%d queries took %s (%.1f queries/s, %d errors)",
		r.Queries,
		r.Elapsed.Round(time.Millisecond),
		r.QueriesPerSecond(),
		r.Errors,
	)
}
