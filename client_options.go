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

package cypher

import (
	"log/slog"
	"time"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/blinklabs-io/gocypher/transport"
)

// ClientOptionFunc is a type that represents functions that modify the Client config
type ClientOptionFunc func(*Client)

// SocketFunc creates the request socket for a client from its context
type SocketFunc func(*transport.Context) (transport.Socket, error)

// WithAddress specifies the endpoint to connect to. The default is tcp://localhost:5555
func WithAddress(address string) ClientOptionFunc {
	return func(c *Client) {
		c.address = address
	}
}

// WithCodec specifies the payload codec. The default is MessagePack
func WithCodec(cdc codec.Codec) ClientOptionFunc {
	return func(c *Client) {
		c.codec = cdc
	}
}

// WithLogger specifies the logger for failure diagnostics. The default logs as text to stderr
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics specifies the collectors to record requests in
func WithMetrics(m *metrics.ClientMetrics) ClientOptionFunc {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithContext specifies an existing transport context to create the socket from. A
// shared context is not terminated when the client is closed
func WithContext(ctx *transport.Context) ClientOptionFunc {
	return func(c *Client) {
		c.context = ctx
	}
}

// WithIOThreads specifies the I/O thread count for the context the client creates
func WithIOThreads(ioThreads int) ClientOptionFunc {
	return func(c *Client) {
		c.ioThreads = ioThreads
	}
}

// WithDialRetry specifies the interval between connection attempts
func WithDialRetry(retry time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.socketOptions = append(c.socketOptions, transport.WithDialRetry(retry))
	}
}

// WithDialMaxRetries specifies the maximum number of connection attempts
func WithDialMaxRetries(maxRetries int) ClientOptionFunc {
	return func(c *Client) {
		c.socketOptions = append(c.socketOptions, transport.WithDialMaxRetries(maxRetries))
	}
}

// WithSocketFunc specifies how the request socket is created. This is mostly useful for
// testing
func WithSocketFunc(socketFunc SocketFunc) ClientOptionFunc {
	return func(c *Client) {
		c.socketFunc = socketFunc
	}
}
