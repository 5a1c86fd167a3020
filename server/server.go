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

// Package server implements a reply-side query server for the gocypher wire protocol.
//
// A server binds a REP socket and handles one request at a time, or, with more than one
// worker, binds a ROUTER socket and hands each request to a bounded worker pool. Replies
// carry the routing envelope of the request they answer.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/blinklabs-io/gocypher/transport"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultAddress binds all interfaces on the default port
	DefaultAddress = "tcp://*:5555"

	// workerReleaseTimeout bounds how long Stop waits for in-flight requests
	workerReleaseTimeout = 5 * time.Second
)

var ErrServerStarted = errors.New("server already started")

// Server answers query requests
type Server struct {
	id           string
	address      string
	codec        codec.Codec
	executor     Executor
	transactions Transactions
	workers      int
	logger       *slog.Logger
	metrics      *metrics.ServerMetrics
	emptyMsg     []byte
	context      *transport.Context
	socket       transport.Socket
	pool         *ants.Pool
	ctx          context.Context
	cancel       context.CancelFunc
	sendMutex    sync.Mutex
	loopWg       sync.WaitGroup
	doneChan     chan struct{}
	errorChan    chan error
	started      bool
	startMutex   sync.Mutex
	onceStop     sync.Once
}

// NewServer returns a new Server with the provided options. The server does not bind
// until Start is called
func NewServer(options ...ServerOptionFunc) (*Server, error) {
	s := &Server{
		id:        uuid.NewString(),
		address:   DefaultAddress,
		workers:   1,
		doneChan:  make(chan struct{}),
		errorChan: make(chan error, 10),
	}
	// Apply provided options functions
	for _, option := range options {
		option(s)
	}
	if s.codec == nil {
		s.codec = codec.Default()
	}
	if s.executor == nil {
		s.executor = EchoExecutor{}
	}
	if s.transactions == nil {
		s.transactions = NewMemoryTransactions()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	s.logger = s.logger.With("server_id", s.id)
	if s.workers < 1 {
		return nil, fmt.Errorf("invalid worker count: %d", s.workers)
	}
	emptyMsg, err := s.codec.Encode(map[string]any{})
	if err != nil {
		return nil, err
	}
	s.emptyMsg = emptyMsg
	return s, nil
}

// Id returns the unique ID of this server instance
func (s *Server) Id() string {
	return s.id
}

// ErrorChan returns a channel that receives serve loop errors other than shutdown
func (s *Server) ErrorChan() <-chan error {
	return s.errorChan
}

// Addr returns the bound address once the server has started
func (s *Server) Addr() net.Addr {
	if s.socket == nil {
		return nil
	}
	return s.socket.Addr()
}

// Start binds the socket and starts serving requests in the background
func (s *Server) Start() error {
	s.startMutex.Lock()
	defer s.startMutex.Unlock()
	if s.started {
		return ErrServerStarted
	}
	tctx, err := transport.NewContext(transport.DefaultIOThreads)
	if err != nil {
		return err
	}
	socketType := transport.SocketTypeRep
	if s.workers > 1 {
		socketType = transport.SocketTypeRouter
	}
	sock, err := tctx.NewSocket(socketType)
	if err != nil {
		_ = tctx.Terminate()
		return err
	}
	if err := sock.Listen(s.address); err != nil {
		_ = sock.Close()
		_ = tctx.Terminate()
		return fmt.Errorf("bind %s: %w", s.address, err)
	}
	if s.workers > 1 {
		pool, err := ants.NewPool(
			s.workers,
			ants.WithPanicHandler(func(v any) {
				s.logger.Error("request handler panic", "component", "server", "panic", v)
			}),
		)
		if err != nil {
			_ = sock.Close()
			_ = tctx.Terminate()
			return err
		}
		s.pool = pool
	}
	s.context = tctx
	s.socket = sock
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.started = true
	s.loopWg.Add(1)
	if s.pool != nil {
		go s.routerLoop()
	} else {
		go s.replyLoop()
	}
	s.logger.Info(
		"started query server",
		"component", "server",
		"address", s.address,
		"socket", socketType.String(),
		"workers", s.workers,
		"codec", s.codec.Name(),
	)
	return nil
}

// Stop stops the serve loop, waits for in-flight requests, closes the socket, and
// terminates the transport context. It is safe to call more than once
func (s *Server) Stop() error {
	var err error
	s.onceStop.Do(func() {
		close(s.doneChan)
		s.startMutex.Lock()
		started := s.started
		s.startMutex.Unlock()
		if !started {
			close(s.errorChan)
			return
		}
		s.cancel()
		// Closing the socket unblocks the pending receive
		closeErr := s.socket.Close()
		s.loopWg.Wait()
		workersDone := true
		if s.pool != nil {
			if releaseErr := s.pool.ReleaseTimeout(workerReleaseTimeout); releaseErr != nil {
				s.logger.Warn("workers did not finish", "component", "server", "error", releaseErr)
				workersDone = false
			}
		}
		err = errors.Join(closeErr, s.context.Terminate())
		// A worker that is still running may yet report an error
		if workersDone {
			close(s.errorChan)
		}
		s.logger.Info("stopped query server", "component", "server")
	})
	return err
}

func (s *Server) stopping() bool {
	select {
	case <-s.doneChan:
		return true
	default:
		return false
	}
}

// sendError reports a serve loop error unless the server is shutting down
func (s *Server) sendError(err error) {
	if s.stopping() {
		return
	}
	s.logger.Error("serve loop error", "component", "server", "error", err)
	select {
	case s.errorChan <- err:
	case <-s.doneChan:
	}
}

// replyLoop serves one request at a time on a REP socket
func (s *Server) replyLoop() {
	defer s.loopWg.Done()
	for {
		msg, err := s.socket.RecvMessage()
		if err != nil {
			s.sendError(fmt.Errorf("receive: %w", err))
			return
		}
		if len(msg) == 0 {
			continue
		}
		parts := s.handle(s.ctx, msg[len(msg)-1])
		if err := s.send(parts); err != nil {
			s.sendError(fmt.Errorf("send: %w", err))
			if s.stopping() {
				return
			}
		}
	}
}

// routerLoop receives requests on a ROUTER socket and dispatches them to the worker pool
func (s *Server) routerLoop() {
	defer s.loopWg.Done()
	for {
		msg, err := s.socket.RecvMessage()
		if err != nil {
			s.sendError(fmt.Errorf("receive: %w", err))
			return
		}
		envelope, body := splitEnvelope(msg)
		if len(body) == 0 {
			s.logger.Warn("dropping request without payload", "component", "server")
			continue
		}
		payload := body[len(body)-1]
		err = s.pool.Submit(func() {
			parts := s.handle(s.ctx, payload)
			reply := make([][]byte, 0, len(envelope)+len(parts))
			reply = append(reply, envelope...)
			reply = append(reply, parts...)
			if err := s.send(reply); err != nil {
				s.sendError(fmt.Errorf("send: %w", err))
			}
		})
		if err != nil {
			s.sendError(fmt.Errorf("submit request: %w", err))
			if s.stopping() {
				return
			}
		}
	}
}

// send writes one reply. Workers share the socket, so sends are serialized
func (s *Server) send(parts [][]byte) error {
	s.sendMutex.Lock()
	defer s.sendMutex.Unlock()
	return s.socket.Send(parts...)
}

// splitEnvelope separates the routing frames of a ROUTER message from its body. The
// envelope runs through the first empty delimiter frame. Without a delimiter only the
// peer identity is kept.
func splitEnvelope(msg [][]byte) ([][]byte, [][]byte) {
	if len(msg) == 0 {
		return nil, nil
	}
	for i := 1; i < len(msg); i++ {
		if len(msg[i]) == 0 {
			return msg[:i+1], msg[i+1:]
		}
	}
	return msg[:1], msg[1:]
}
