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
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/blinklabs-io/gocypher/server"
	"github.com/spf13/cobra"
)

func newServeCmd(rc *rootCmd) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference query server with the echo executor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.runServe(cmd)
		},
	}
	flags := c.Flags()
	flags.String("listen", server.DefaultAddress, "endpoint to bind")
	flags.Int("workers", 1, "concurrent request handlers")
	_ = rc.v.BindPFlag("serve.address", flags.Lookup("listen"))
	_ = rc.v.BindPFlag("serve.workers", flags.Lookup("workers"))
	return c
}

func (rc *rootCmd) runServe(cmd *cobra.Command) error {
	cdc, err := codec.New(rc.cfg.Codec)
	if err != nil {
		return err
	}
	s, err := server.NewServer(
		server.WithAddress(rc.cfg.Serve.Address),
		server.WithWorkers(rc.cfg.Serve.Workers),
		server.WithCodec(cdc),
		server.WithLogger(rc.logger),
		server.WithMetrics(metrics.NewServerMetrics(rc.registry)),
	)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var serveErr error
	select {
	case <-ctx.Done():
	case err, ok := <-s.ErrorChan():
		if ok {
			serveErr = err
		}
	}
	return errors.Join(serveErr, s.Stop())
}
