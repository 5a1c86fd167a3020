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

package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	cypher "github.com/blinklabs-io/gocypher"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

const poolReleaseTimeout = 5 * time.Second

// batchResult is reported by a worker for every batch it runs
type batchResult struct {
	queries int
	errors  int
	// err is a failure that stops the run, such as a client that cannot be created
	err error
}

type runner struct {
	cfg     Config
	logger  *slog.Logger
	limiter *rate.Limiter
	base    *cypher.Request
}

// Run executes the workload and returns the report. Query failures are counted, not
// returned: the returned error is only set when the run could not proceed, such as when
// a client cannot be created. The report covers whatever was completed.
func Run(ctx context.Context, cfg Config, newClient ClientFunc) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	params := cfg.Params
	if params == nil {
		params = map[string]any{}
	}
	r := &runner{
		cfg:    cfg,
		logger: cfg.Logger,
		base: cypher.NewRequest(
			cfg.Query,
			cypher.WithParams(params),
			cypher.WithNoResults(cfg.NoResults),
		),
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	start := time.Now()
	var report Report
	var err error
	if cfg.Workers > 1 {
		report, err = r.runPool(ctx, newClient)
	} else {
		report, err = r.runSingle(ctx, newClient)
	}
	report.Elapsed = time.Since(start)
	return report, err
}

// runSingle runs every batch on one client
func (r *runner) runSingle(ctx context.Context, newClient ClientFunc) (Report, error) {
	var report Report
	client, err := newClient()
	if err != nil {
		return report, fmt.Errorf("create client: %w", err)
	}
	for batch := range r.cfg.Repetitions {
		if ctx.Err() != nil {
			break
		}
		res := r.runBatch(ctx, client, batch)
		report.Queries += res.queries
		report.Errors += res.errors
	}
	if err := client.Close(); err != nil {
		r.logger.Warn("failed to close client", "component", "bench", "error", err)
	}
	return report, ctx.Err()
}

// runPool spreads the batches over a worker pool. Each worker creates its own client and
// reports one result per batch
func (r *runner) runPool(ctx context.Context, newClient ClientFunc) (Report, error) {
	var report Report
	pool, err := ants.NewPool(r.cfg.Workers)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
			r.logger.Warn("worker pool did not stop", "component", "bench", "error", err)
		}
	}()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	batches := make(chan int, r.cfg.Repetitions)
	for batch := range r.cfg.Repetitions {
		batches <- batch
	}
	close(batches)
	resultChan := make(chan batchResult, r.cfg.Workers)
	var wg sync.WaitGroup
	for range r.cfg.Workers {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			r.worker(ctx, newClient, batches, resultChan)
		}); err != nil {
			wg.Done()
			cancel()
			wg.Wait()
			return report, fmt.Errorf("submit worker: %w", err)
		}
	}
	go func() {
		wg.Wait()
		close(resultChan)
	}()
	var runErr error
	for res := range resultChan {
		report.Queries += res.queries
		report.Errors += res.errors
		if res.err != nil && runErr == nil {
			runErr = res.err
			// Stop the other workers
			cancel()
		}
	}
	if runErr != nil {
		return report, runErr
	}
	return report, ctx.Err()
}

func (r *runner) worker(
	ctx context.Context,
	newClient ClientFunc,
	batches <-chan int,
	resultChan chan<- batchResult,
) {
	client, err := newClient()
	if err != nil {
		resultChan <- batchResult{err: fmt.Errorf("create client: %w", err)}
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			r.logger.Warn("failed to close client", "component", "bench", "error", err)
		}
	}()
	for batch := range batches {
		if ctx.Err() != nil {
			return
		}
		resultChan <- r.runBatch(ctx, client, batch)
	}
}

// runBatch runs one batch of queries, inside a transaction if configured
func (r *runner) runBatch(ctx context.Context, client Querier, batch int) batchResult {
	var res batchResult
	var txId int64
	if r.cfg.Transactions {
		var err error
		txId, err = client.Begin()
		if err != nil {
			r.logger.Error("failed to begin transaction", "component", "bench", "batch", batch, "error", err)
			res.errors++
			return res
		}
	}
	for i := range r.cfg.BatchSize {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
		req, err := r.request(i, txId)
		if err != nil {
			res.errors++
			continue
		}
		res.queries++
		reply, err := client.Send(req)
		if err == nil {
			err = reply.Err()
		}
		if err != nil {
			res.errors++
			r.logger.Debug("query failed", "component", "bench", "batch", batch, "query", i, "error", err)
		}
	}
	if r.cfg.Transactions {
		if _, err := client.Commit(txId); err != nil {
			r.logger.Error("failed to commit transaction", "component", "bench", "batch", batch, "error", err)
			res.errors++
		}
	}
	return res
}

// request builds query i of a batch from the shared base request. Workers share the
// base, so each query gets its own copy of the params before the name is added.
func (r *runner) request(i int, txId int64) (*cypher.Request, error) {
	req, err := r.base.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone request: %w", err)
	}
	if req.Params == nil {
		req.Params = map[string]any{}
	}
	req.Params["name"] = fmt.Sprintf("test%d", i)
	if r.cfg.Transactions {
		req.TxId = &txId
	}
	return req, nil
}
