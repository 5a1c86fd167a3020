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
	cypher "github.com/blinklabs-io/gocypher"
	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/blinklabs-io/gocypher/transport"
)

// clientOptions returns the options for a client built from the configuration. A
// non-nil ctx is shared with the client rather than owned by it
func (rc *rootCmd) clientOptions(ctx *transport.Context) ([]cypher.ClientOptionFunc, error) {
	cdc, err := codec.New(rc.cfg.Codec)
	if err != nil {
		return nil, err
	}
	// Bench workers create clients concurrently
	rc.clientMetricsOnce.Do(func() {
		rc.clientMetrics = metrics.NewClientMetrics(rc.registry)
	})
	opts := []cypher.ClientOptionFunc{
		cypher.WithAddress(rc.cfg.Address),
		cypher.WithCodec(cdc),
		cypher.WithLogger(rc.logger),
		cypher.WithIOThreads(rc.cfg.IOThreads),
		cypher.WithMetrics(rc.clientMetrics),
	}
	if ctx != nil {
		opts = append(opts, cypher.WithContext(ctx))
	}
	return opts, nil
}

// newClient builds a client, closing it again if construction failed
func (rc *rootCmd) newClient(ctx *transport.Context) (*cypher.Client, error) {
	opts, err := rc.clientOptions(ctx)
	if err != nil {
		return nil, err
	}
	c, err := cypher.NewClient(opts...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
