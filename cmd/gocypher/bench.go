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

package main

import (
	"fmt"

	"github.com/blinklabs-io/gocypher/bench"
	"github.com/blinklabs-io/gocypher/transport"
	"github.com/spf13/cobra"
)

func newBenchCmd(rc *rootCmd) *cobra.Command {
	var params []string
	c := &cobra.Command{
		Use:   "bench",
		Short: "Run a query benchmark against a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.runBench(cmd, params)
		},
	}
	flags := c.Flags()
	flags.Int("repetitions", bench.DefaultRepetitions, "number of batches")
	flags.Int("batch-size", bench.DefaultBatchSize, "queries per batch")
	flags.String("query", bench.DefaultQuery, "query to run; {name} is set to test<i>")
	flags.Bool("transactions", false, "wrap each batch in a transaction")
	flags.StringArrayVarP(&params, "param", "p", nil, "extra query parameter as name=value; JSON values are decoded")
	flags.Bool("no-results", false, "ask the server to discard result rows")
	flags.Int("workers", bench.DefaultWorkers, "concurrent workers, each with its own client")
	flags.Float64("rate", 0, "maximum queries per second (0 for unlimited)")
	for _, name := range []string{"repetitions", "batch-size", "query", "transactions", "no-results", "workers", "rate"} {
		_ = rc.v.BindPFlag("bench."+name, flags.Lookup(name))
	}
	return c
}

func (rc *rootCmd) runBench(cmd *cobra.Command, params []string) error {
	bc := rc.cfg.Bench
	benchParams, err := parseParams(params)
	if err != nil {
		return err
	}
	cfg := bench.NewConfig(
		bench.WithRepetitions(bc.Repetitions),
		bench.WithBatchSize(bc.BatchSize),
		bench.WithQuery(bc.Query),
		bench.WithParams(benchParams),
		bench.WithTransactions(bc.Transactions),
		bench.WithNoResults(bc.NoResults),
		bench.WithWorkers(bc.Workers),
		bench.WithRate(bc.Rate),
		bench.WithLogger(rc.logger),
	)
	if err := cfg.Validate(); err != nil {
		return err
	}
	// All worker clients share one context
	tctx, err := transport.NewContext(rc.cfg.IOThreads)
	if err != nil {
		return err
	}
	report, err := bench.Run(
		cmd.Context(),
		cfg,
		func() (bench.Querier, error) {
			c, err := rc.newClient(tctx)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	)
	if termErr := tctx.Terminate(); termErr != nil {
		rc.logger.Warn("failed to terminate context", "component", "bench", "error", termErr)
	}
	if err != nil {
		return err
	}
	mode := "Without tx"
	if cfg.Transactions {
		mode = "With tx"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s, %s\n", mode, report)
	return nil
}
