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

package transport_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/gocypher/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextInvalidThreads(t *testing.T) {
	_, err := transport.NewContext(0)
	assert.Error(t, err)
}

func TestNewContext(t *testing.T) {
	ctx, err := transport.NewContext(transport.DefaultIOThreads)
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.IOThreads())
	assert.NotEmpty(t, ctx.Id())
	assert.False(t, ctx.Terminated())
	require.NoError(t, ctx.Terminate())
	assert.True(t, ctx.Terminated())
}

func TestNewSocketAfterTerminate(t *testing.T) {
	ctx, err := transport.NewContext(1)
	require.NoError(t, err)
	require.NoError(t, ctx.Terminate())
	_, err = ctx.NewSocket(transport.SocketTypeReq)
	assert.ErrorIs(t, err, transport.ErrContextTerminated)
}

func TestTerminateWaitsForSockets(t *testing.T) {
	ctx, err := transport.NewContext(1)
	require.NoError(t, err)
	sock, err := ctx.NewSocket(transport.SocketTypeReq)
	require.NoError(t, err)
	doneChan := make(chan struct{})
	go func() {
		_ = ctx.Terminate()
		close(doneChan)
	}()
	select {
	case <-doneChan:
		t.Fatalf("terminate returned before the socket was closed")
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, sock.Close())
	select {
	case <-doneChan:
	case <-time.After(2 * time.Second):
		t.Fatalf("terminate did not return after the socket was closed")
	}
	// A second close reports the socket as already closed
	assert.ErrorIs(t, sock.Close(), transport.ErrSocketClosed)
}

func TestRequestReplyMultiPart(t *testing.T) {
	endpoint := "inproc://transport-test-" + uuid.NewString()
	ctx, err := transport.NewContext(1)
	require.NoError(t, err)
	rep, err := ctx.NewSocket(transport.SocketTypeRep)
	require.NoError(t, err)
	require.NoError(t, rep.Listen(endpoint))
	req, err := ctx.NewSocket(
		transport.SocketTypeReq,
		transport.WithDialRetry(10*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, req.Dial(endpoint))

	serverErrChan := make(chan error, 1)
	go func() {
		msg, err := rep.RecvMessage()
		if err != nil {
			serverErrChan <- err
			return
		}
		if len(msg) != 1 || string(msg[0]) != "ping" {
			serverErrChan <- assert.AnError
			return
		}
		serverErrChan <- rep.Send([]byte("one"), []byte("two"), []byte("three"))
	}()

	require.NoError(t, req.Send([]byte("ping")))
	var parts []string
	for {
		part, more, err := req.RecvPart()
		require.NoError(t, err)
		parts = append(parts, string(part))
		if !more {
			break
		}
	}
	assert.Equal(t, []string{"one", "two", "three"}, parts)
	require.NoError(t, <-serverErrChan)

	require.NoError(t, req.Close())
	require.NoError(t, rep.Close())
	require.NoError(t, ctx.Terminate())
}

func TestSendNoParts(t *testing.T) {
	ctx, err := transport.NewContext(1)
	require.NoError(t, err)
	sock, err := ctx.NewSocket(transport.SocketTypeReq)
	require.NoError(t, err)
	assert.Error(t, sock.Send())
	require.NoError(t, sock.Close())
	require.NoError(t, ctx.Terminate())
}

func TestSocketTypeString(t *testing.T) {
	assert.Equal(t, "REQ", transport.SocketTypeReq.String())
	assert.Equal(t, "REP", transport.SocketTypeRep.String())
	assert.Equal(t, "ROUTER", transport.SocketTypeRouter.String())
	assert.Equal(t, "SocketType(9)", transport.SocketType(9).String())
}

func TestNewSocketConfig(t *testing.T) {
	cfg := transport.NewSocketConfig()
	assert.Equal(t, transport.DefaultDialRetry, cfg.DialRetry)
	assert.Equal(t, transport.DefaultDialMaxRetries, cfg.DialMaxRetries)
	cfg = transport.NewSocketConfig(
		transport.WithDialRetry(time.Second),
		transport.WithDialMaxRetries(-1),
		transport.WithTimeout(5*time.Second),
	)
	assert.Equal(t, time.Second, cfg.DialRetry)
	assert.Equal(t, -1, cfg.DialMaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}
