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

// Package transport wraps ZeroMQ request/reply sockets for the query client and server.
//
// A Context owns the lifetime of every socket created from it. Terminating a
// context blocks until all of its sockets have been closed, so sockets must be
// closed first.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultIOThreads is the number of I/O threads requested for a new context
	DefaultIOThreads = 1
)

var (
	ErrContextTerminated = errors.New("transport context terminated")
	ErrSocketClosed      = errors.New("socket is closed")
)

// Context is the shared messaging resource that sockets are created from
type Context struct {
	id            string
	ioThreads     int
	ctx           context.Context
	cancel        context.CancelFunc
	socketsWg     sync.WaitGroup
	mutex         sync.Mutex
	terminated    bool
	onceTerminate sync.Once
}

// NewContext returns a new Context bounded to the specified number of I/O threads
func NewContext(ioThreads int) (*Context, error) {
	if ioThreads < 1 {
		return nil, fmt.Errorf("invalid I/O thread count: %d", ioThreads)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Context{
		id:        uuid.NewString(),
		ioThreads: ioThreads,
		ctx:       ctx,
		cancel:    cancel,
	}
	return c, nil
}

// Id returns the unique identifier of the context
func (c *Context) Id() string {
	return c.id
}

// IOThreads returns the I/O thread count the context was created with
func (c *Context) IOThreads() int {
	return c.ioThreads
}

// Terminated returns whether Terminate has been called
func (c *Context) Terminated() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.terminated
}

// NewSocket creates a socket of the specified type bound to the lifetime of the context
func (c *Context) NewSocket(
	socketType SocketType,
	options ...SocketOptionFunc,
) (Socket, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.terminated {
		return nil, ErrContextTerminated
	}
	cfg := NewSocketConfig(options...)
	sock, err := newZmqSocket(c.ctx, socketType, cfg)
	if err != nil {
		return nil, err
	}
	c.socketsWg.Add(1)
	sock.onClose = c.socketsWg.Done
	return sock, nil
}

// Terminate stops new sockets from being created and blocks until every socket
// created from the context has been closed. It then releases the context.
func (c *Context) Terminate() error {
	c.onceTerminate.Do(func() {
		c.mutex.Lock()
		c.terminated = true
		c.mutex.Unlock()
		c.socketsWg.Wait()
		c.cancel()
	})
	return nil
}
