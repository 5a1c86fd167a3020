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

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
)

// SocketType is an enum of the supported socket patterns
type SocketType uint

const (
	SocketTypeReq    SocketType = 1 // Requester side of a request/reply pair
	SocketTypeRep    SocketType = 2 // Replier side of a request/reply pair
	SocketTypeRouter SocketType = 3 // Replier front-end that keeps a routing envelope per request
)

func (s SocketType) String() string {
	switch s {
	case SocketTypeReq:
		return "REQ"
	case SocketTypeRep:
		return "REP"
	case SocketTypeRouter:
		return "ROUTER"
	default:
		return fmt.Sprintf("SocketType(%d)", uint(s))
	}
}

// Socket is a message socket. A message is made up of one or more parts.
type Socket interface {
	// Dial connects the socket to a remote endpoint
	Dial(endpoint string) error
	// Listen binds the socket to a local endpoint
	Listen(endpoint string) error
	// Send sends all parts as a single message
	Send(parts ...[]byte) error
	// RecvPart returns the next part of the current message and whether more parts are pending
	RecvPart() (part []byte, more bool, err error)
	// RecvMessage returns all remaining parts of the current message
	RecvMessage() ([][]byte, error)
	// Addr returns the listening address, if any
	Addr() net.Addr
	Close() error
}

// SocketConfig holds the socket options
type SocketConfig struct {
	DialRetry      time.Duration
	DialMaxRetries int
	Timeout        time.Duration
}

// SocketOptionFunc is a function that modifies a SocketConfig
type SocketOptionFunc func(*SocketConfig)

const (
	DefaultDialRetry      = 250 * time.Millisecond
	DefaultDialMaxRetries = 10
)

// NewSocketConfig returns a SocketConfig with default values, applying any provided option functions
func NewSocketConfig(options ...SocketOptionFunc) SocketConfig {
	c := SocketConfig{
		DialRetry:      DefaultDialRetry,
		DialMaxRetries: DefaultDialMaxRetries,
	}
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithDialRetry sets the interval between connection attempts
func WithDialRetry(retry time.Duration) SocketOptionFunc {
	return func(c *SocketConfig) {
		c.DialRetry = retry
	}
}

// WithDialMaxRetries sets the maximum number of connection attempts. A value of -1 retries forever
func WithDialMaxRetries(maxRetries int) SocketOptionFunc {
	return func(c *SocketConfig) {
		c.DialMaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout applied to the underlying connection handshake and writes
func WithTimeout(timeout time.Duration) SocketOptionFunc {
	return func(c *SocketConfig) {
		c.Timeout = timeout
	}
}

type zmqSocket struct {
	sock      zmq4.Socket
	pending   [][]byte
	recvMutex sync.Mutex
	onceClose sync.Once
	onClose   func()
}

func newZmqSocket(
	ctx context.Context,
	socketType SocketType,
	cfg SocketConfig,
) (*zmqSocket, error) {
	opts := []zmq4.Option{
		zmq4.WithDialerRetry(cfg.DialRetry),
		zmq4.WithDialerMaxRetries(cfg.DialMaxRetries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, zmq4.WithTimeout(cfg.Timeout))
	}
	s := &zmqSocket{}
	switch socketType {
	case SocketTypeReq:
		s.sock = zmq4.NewReq(ctx, opts...)
	case SocketTypeRep:
		s.sock = zmq4.NewRep(ctx, opts...)
	case SocketTypeRouter:
		s.sock = zmq4.NewRouter(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported socket type: %s", socketType)
	}
	return s, nil
}

func (s *zmqSocket) Dial(endpoint string) error {
	return s.sock.Dial(endpoint)
}

func (s *zmqSocket) Listen(endpoint string) error {
	return s.sock.Listen(endpoint)
}

func (s *zmqSocket) Send(parts ...[]byte) error {
	if len(parts) == 0 {
		return errors.New("cannot send a message with no parts")
	}
	msg := zmq4.NewMsgFrom(parts...)
	if len(parts) > 1 {
		return s.sock.SendMulti(msg)
	}
	return s.sock.Send(msg)
}

func (s *zmqSocket) RecvPart() ([]byte, bool, error) {
	s.recvMutex.Lock()
	defer s.recvMutex.Unlock()
	if len(s.pending) == 0 {
		msg, err := s.sock.Recv()
		if err != nil {
			return nil, false, err
		}
		if len(msg.Frames) == 0 {
			return nil, false, nil
		}
		s.pending = msg.Frames
	}
	part := s.pending[0]
	s.pending = s.pending[1:]
	return part, len(s.pending) > 0, nil
}

func (s *zmqSocket) RecvMessage() ([][]byte, error) {
	s.recvMutex.Lock()
	defer s.recvMutex.Unlock()
	if len(s.pending) > 0 {
		parts := s.pending
		s.pending = nil
		return parts, nil
	}
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, err
	}
	return msg.Frames, nil
}

func (s *zmqSocket) Addr() net.Addr {
	return s.sock.Addr()
}

func (s *zmqSocket) Close() error {
	err := ErrSocketClosed
	s.onceClose.Do(func() {
		err = s.sock.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return err
}
