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

package server

import (
	"log/slog"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/metrics"
)

// ServerOptionFunc is a type that represents functions that modify the Server config
type ServerOptionFunc func(*Server)

// WithAddress specifies the endpoint to bind. The default is tcp://*:5555
func WithAddress(address string) ServerOptionFunc {
	return func(s *Server) {
		s.address = address
	}
}

// WithCodec specifies the payload codec. The default is MessagePack
func WithCodec(cdc codec.Codec) ServerOptionFunc {
	return func(s *Server) {
		s.codec = cdc
	}
}

// WithExecutor specifies how queries are run. The default is EchoExecutor
func WithExecutor(executor Executor) ServerOptionFunc {
	return func(s *Server) {
		s.executor = executor
	}
}

// WithTransactions specifies the transaction manager. The default keeps transactions in memory
func WithTransactions(transactions Transactions) ServerOptionFunc {
	return func(s *Server) {
		s.transactions = transactions
	}
}

// WithWorkers specifies how many requests are handled concurrently. More than one
// worker binds a ROUTER socket and dispatches requests to a worker pool
func WithWorkers(workers int) ServerOptionFunc {
	return func(s *Server) {
		s.workers = workers
	}
}

// WithLogger specifies the logger
func WithLogger(logger *slog.Logger) ServerOptionFunc {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics specifies the collectors to record requests in
func WithMetrics(m *metrics.ServerMetrics) ServerOptionFunc {
	return func(s *Server) {
		s.metrics = m
	}
}
