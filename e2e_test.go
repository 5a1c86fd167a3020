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

package cypher_test

import (
	"testing"

	cypher "github.com/blinklabs-io/gocypher"
	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/server"
	"github.com/blinklabs-io/gocypher/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEchoServer(t *testing.T, options ...server.ServerOptionFunc) string {
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
	return address
}

func TestEndToEnd(t *testing.T) {
	for _, cdc := range []codec.Codec{codec.MsgPack(), codec.Cbor()} {
		t.Run(cdc.Name(), func(t *testing.T) {
			address := startEchoServer(t, server.WithCodec(cdc))
			c, err := cypher.NewClient(
				cypher.WithAddress(address),
				cypher.WithCodec(cdc),
				cypher.WithLogger(discardLogger()),
			)
			require.NoError(t, err)
			// Multi-part reply: the footer is the last part
			reply, err := c.Query(
				"create n={name:{name}}",
				cypher.WithParams(map[string]any{"name": "test0"}),
				cypher.WithStats(true),
			)
			require.NoError(t, err)
			rows, ok := reply.Int64Value(cypher.KeyRows)
			assert.True(t, ok)
			assert.Equal(t, int64(1), rows)
			bytes, _ := reply.Int64Value(cypher.KeyBytes)
			assert.Positive(t, bytes)
			// Control-only request with stats
			reply, err = c.Query("", cypher.WithStats(true))
			require.NoError(t, err)
			rows, _ = reply.Int64Value(cypher.KeyRows)
			assert.Equal(t, int64(0), rows)
			// Discarded results
			reply, err = c.Query("RETURN 1", cypher.WithNoResults(true))
			require.NoError(t, err)
			assert.NotNil(t, reply.Info)
			assert.Empty(t, reply.Info)
			// Without stats the reply ends on the last row
			reply, err = c.Query(
				"create n={name:{name}}",
				cypher.WithParams(map[string]any{"name": "test0"}),
			)
			require.NoError(t, err)
			row, ok := reply.Row()
			require.True(t, ok)
			assert.Equal(
				t,
				[]any{"create n={name:{name}}", map[string]any{"name": "test0"}},
				row,
			)
			assert.NoError(t, reply.Err())
			require.NoError(t, c.Close())
			assert.True(t, c.Context().Terminated())
		})
	}
}

func TestEndToEndSharedContext(t *testing.T) {
	address := startEchoServer(t, server.WithWorkers(2))
	ctx, err := transport.NewContext(1)
	require.NoError(t, err)
	var clients []*cypher.Client
	for range 3 {
		c, err := cypher.NewClient(
			cypher.WithAddress(address),
			cypher.WithContext(ctx),
			cypher.WithLogger(discardLogger()),
		)
		require.NoError(t, err)
		clients = append(clients, c)
	}
	for _, c := range clients {
		reply, err := c.Query("RETURN 1", cypher.WithNoResults(true))
		require.NoError(t, err)
		assert.Empty(t, reply.Info)
	}
	for _, c := range clients {
		require.NoError(t, c.Close())
	}
	assert.False(t, ctx.Terminated())
	require.NoError(t, ctx.Terminate())
	_, err = cypher.NewClient(
		cypher.WithAddress(address),
		cypher.WithContext(ctx),
		cypher.WithLogger(discardLogger()),
	)
	assert.ErrorIs(t, err, transport.ErrContextTerminated)
}
