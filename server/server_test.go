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

package server_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	cypher "github.com/blinklabs-io/gocypher"
	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/blinklabs-io/gocypher/server"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, options ...server.ServerOptionFunc) (*server.Server, string) {
	t.Helper()
	address := "inproc://" + uuid.NewString()
	opts := []server.ServerOptionFunc{
		server.WithAddress(address),
		server.WithLogger(discardLogger()),
	}
	s, err := server.NewServer(append(opts, options...)...)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		assert.NoError(t, s.Stop())
	})
	return s, address
}

func newClient(t *testing.T, address string) *cypher.Client {
	t.Helper()
	c, err := cypher.NewClient(
		cypher.WithAddress(address),
		cypher.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
	})
	return c
}

func TestServerReply(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewServerMetrics(reg)
	_, address := startServer(t, server.WithMetrics(m))
	c := newClient(t, address)
	result, err := c.QueryAll(
		cypher.NewRequest(
			"create n={name:{name}}",
			cypher.WithParams(map[string]any{"name": "test0"}),
			cypher.WithStats(true),
		),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"query", "params"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "create n={name:{name}}", result.Rows[0][0])
	rows, ok := result.Info.Int64Value(cypher.KeyRows)
	assert.True(t, ok)
	assert.Equal(t, int64(1), rows)
	reply, err := c.Query("", cypher.WithStats(false))
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.InDelta(
		t,
		2,
		testutil.ToFloat64(m.Requests.WithLabelValues(metrics.StatusOk)),
		0,
	)
}

func TestServerStartTwice(t *testing.T) {
	s, _ := startServer(t)
	assert.ErrorIs(t, s.Start(), server.ErrServerStarted)
}

func TestServerRouterWorkers(t *testing.T) {
	const clients = 4
	const queries = 25
	_, address := startServer(t, server.WithWorkers(3))
	var wg sync.WaitGroup
	errs := make(chan error, clients*queries)
	for i := range clients {
		c := newClient(t, address)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queries {
				result, err := c.QueryAll(
					cypher.NewRequest(
						"RETURN {name}",
						cypher.WithParams(map[string]any{"name": i*queries + j}),
					),
				)
				if err != nil {
					errs <- err
					continue
				}
				params, _ := result.Rows[0][1].(map[string]any)
				if v, _ := cypher.Info(params).Int64Value("name"); v != int64(i*queries+j) {
					errs <- assert.AnError
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestServerTransactions(t *testing.T) {
	txs := server.NewMemoryTransactions()
	_, address := startServer(t, server.WithTransactions(txs))
	c := newClient(t, address)
	txId, err := c.Begin()
	require.NoError(t, err)
	for i := range 3 {
		_, err := c.Query(
			"create n={name:{name}}",
			cypher.WithParams(map[string]any{"name": i}),
			cypher.WithTxId(txId),
			cypher.WithNoResults(true),
		)
		require.NoError(t, err)
	}
	reply, err := c.Commit(txId)
	require.NoError(t, err)
	tx, _ := reply.StringValue(cypher.KeyTx)
	assert.Equal(t, "commit", tx)
	assert.Equal(t, 1, txs.Committed())
	assert.Equal(t, 0, txs.Active())
	_, err = c.Commit(txId)
	var sErr *cypher.ServerError
	assert.ErrorAs(t, err, &sErr)
}
