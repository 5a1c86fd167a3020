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

// Package cypher implements a client for a remote Cypher query server reached over a
// ZeroMQ request/reply socket.
//
// Each request is a single binary-encoded map (MessagePack by default) and each reply
// is one or more message parts. A Client owns one request socket and performs one
// exchange at a time: the caller blocks from send until the reply is fully received.
//
// Transport failures are logged where they happen, with the caller's stack, and are
// also returned as *TransportError values.
package cypher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/blinklabs-io/gocypher/transport"
)

const (
	// DefaultAddress is the endpoint of a query server running on the local host
	DefaultAddress = "tcp://localhost:5555"
)

// Client is a synchronous query client that owns a single request socket
type Client struct {
	address       string
	codec         codec.Codec
	logger        *slog.Logger
	metrics       *metrics.ClientMetrics
	ioThreads     int
	socketOptions []transport.SocketOptionFunc
	socketFunc    SocketFunc
	context       *transport.Context
	ownsContext   bool
	socket        transport.Socket
	busyMutex     sync.Mutex
	closed        atomic.Bool
	onceClose     sync.Once
}

// NewClient returns a new Client connected to the configured address.
//
// A failure while creating the context or socket, or while connecting, is logged and
// returned. The returned Client is never nil: it is left partially initialized, and
// any later operation on it fails and is reported the same way.
func NewClient(options ...ClientOptionFunc) (*Client, error) {
	c := &Client{
		address:   DefaultAddress,
		ioThreads: transport.DefaultIOThreads,
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if c.codec == nil {
		c.codec = codec.Default()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if err := c.setupConnection(); err != nil {
		return c, err
	}
	return c, nil
}

// setupConnection creates the context (unless one was provided) and the request
// socket, then connects the socket
func (c *Client) setupConnection() error {
	if c.context == nil {
		ctx, err := transport.NewContext(c.ioThreads)
		if err != nil {
			return c.reportError(OpCreateContext, err)
		}
		c.context = ctx
		c.ownsContext = true
	}
	socketFunc := c.socketFunc
	if socketFunc == nil {
		socketFunc = c.newSocket
	}
	sock, err := socketFunc(c.context)
	if err != nil {
		return c.reportError(OpCreateSocket, err)
	}
	if err := sock.Dial(c.address); err != nil {
		ret := c.reportError(OpConnect, err)
		// The socket still counts against the context until closed
		_ = c.reportError(OpClose, sock.Close())
		return ret
	}
	c.socket = sock
	return nil
}

func (c *Client) newSocket(ctx *transport.Context) (transport.Socket, error) {
	return ctx.NewSocket(transport.SocketTypeReq, c.socketOptions...)
}

// Address returns the endpoint the client connects to
func (c *Client) Address() string {
	return c.address
}

// Codec returns the payload codec
func (c *Client) Codec() codec.Codec {
	return c.codec
}

// Context returns the transport context the client's socket belongs to
func (c *Client) Context() *transport.Context {
	return c.context
}

// Query sends the query with the default request values overridden by the provided
// options and returns the decoded final reply part
func (c *Client) Query(query string, options ...RequestOptionFunc) (Reply, error) {
	return c.Send(NewRequest(query, options...))
}

// Send sends the request and returns the decoded final reply part. Earlier parts are
// received and discarded. On failure an empty reply is returned along with the error.
func (c *Client) Send(req *Request) (Reply, error) {
	start := time.Now()
	parts, sent, received, err := c.exchange(req, false)
	if err != nil {
		c.metrics.ObserveRequest("send", metrics.StatusError, time.Since(start), sent, received)
		return Reply{}, err
	}
	reply, err := decodeReply(c.codec, parts[len(parts)-1])
	if err != nil {
		c.logger.Error("failed to decode reply", "component", "client", "error", err)
		c.metrics.ObserveRequest("send", metrics.StatusError, time.Since(start), sent, received)
		return Reply{}, err
	}
	c.metrics.ObserveRequest("send", metrics.StatusOk, time.Since(start), sent, received)
	return reply, nil
}

// QueryAll sends the request and decodes every reply part into a Result
func (c *Client) QueryAll(req *Request) (*Result, error) {
	start := time.Now()
	parts, sent, received, err := c.exchange(req, true)
	if err != nil {
		c.metrics.ObserveRequest("query_all", metrics.StatusError, time.Since(start), sent, received)
		return nil, err
	}
	result, err := decodeResult(c.codec, parts)
	if err != nil {
		c.logger.Error("failed to decode reply", "component", "client", "error", err)
		c.metrics.ObserveRequest("query_all", metrics.StatusError, time.Since(start), sent, received)
		return nil, err
	}
	c.metrics.ObserveRequest("query_all", metrics.StatusOk, time.Since(start), sent, received)
	return result, nil
}

// exchange performs one request/reply round trip. If keepAll is false, only the final
// reply part is returned.
func (c *Client) exchange(req *Request, keepAll bool) ([][]byte, int, int, error) {
	if req == nil {
		req = NewRequest("")
	}
	c.busyMutex.Lock()
	defer c.busyMutex.Unlock()
	if c.closed.Load() {
		return nil, 0, 0, ErrClosed
	}
	if c.socket == nil {
		return nil, 0, 0, c.reportError(OpSend, ErrNotConnected)
	}
	payload, err := c.codec.Encode(req.Payload())
	if err != nil {
		c.logger.Error("failed to encode request", "component", "client", "error", err)
		return nil, 0, 0, fmt.Errorf("encode request: %w", err)
	}
	if err := c.socket.Send(payload); err != nil {
		// The exchange ends here: a receive would never match this send
		return nil, 0, 0, c.reportError(OpSend, err)
	}
	var parts [][]byte
	received := 0
	for {
		part, more, err := c.socket.RecvPart()
		if err != nil {
			return nil, len(payload), received, c.reportError(OpReceive, err)
		}
		received += len(part)
		if keepAll || !more {
			parts = append(parts, part)
		}
		if !more {
			break
		}
	}
	return parts, len(payload), received, nil
}

// Close closes the socket and then terminates the context, if the client created it.
// Termination blocks until in-flight transport activity has finished. The context is
// terminated even when closing the socket fails.
func (c *Client) Close() error {
	var err error
	c.onceClose.Do(func() {
		c.closed.Store(true)
		var closeErr, termErr error
		if c.socket != nil {
			closeErr = c.reportError(OpClose, c.socket.Close())
		}
		if c.context != nil && c.ownsContext {
			termErr = c.reportError(OpTerminate, c.context.Terminate())
		}
		err = errors.Join(closeErr, termErr)
	})
	return err
}
