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

package mocksocket

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"sync"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/transport"
)

// Socket mocks a transport socket by playing back a scripted conversation. Each Send
// must match the next input entry, and each reply is taken from the next output entry.
// The first call that departs from the script fails the conversation, and every later
// Send or receive returns the same error.
type Socket struct {
	codec        codec.Codec
	mutex        sync.Mutex
	conversation []ConversationEntry
	pending      [][]byte
	sent         [][][]byte
	recvCalls    int
	endpoint     string
	dialErr      error
	closeErr     error
	closed       bool
	onClose      func()
	err          error
}

var _ transport.Socket = (*Socket)(nil)

// New returns a new Socket with the provided conversation entries
func New(cdc codec.Codec, conversation ...ConversationEntry) *Socket {
	if cdc == nil {
		cdc = codec.Default()
	}
	return &Socket{
		codec:        cdc,
		conversation: conversation,
	}
}

// WithDialError makes Dial and Listen fail with the provided error
func (s *Socket) WithDialError(err error) *Socket {
	s.dialErr = err
	return s
}

// WithCloseError makes Close fail with the provided error
func (s *Socket) WithCloseError(err error) *Socket {
	s.closeErr = err
	return s
}

// OnClose registers a function to call when the socket is closed
func (s *Socket) OnClose(fn func()) *Socket {
	s.onClose = fn
	return s
}

func (s *Socket) Dial(endpoint string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.endpoint = endpoint
	return s.dialErr
}

func (s *Socket) Listen(endpoint string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.endpoint = endpoint
	return s.dialErr
}

func (s *Socket) Send(parts ...[]byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return transport.ErrSocketClosed
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, parts)
	entry, err := s.next(EntryTypeInput)
	if err != nil {
		return err
	}
	if entry.Err != nil {
		return entry.Err
	}
	if entry.InputPayload == nil {
		return nil
	}
	if len(parts) == 0 {
		return s.fail(errors.New("input message has no parts"))
	}
	var msg any
	if err := s.codec.Decode(parts[len(parts)-1], &msg); err != nil {
		return s.fail(fmt.Errorf("decode error: %w", err))
	}
	if !reflect.DeepEqual(msg, entry.InputPayload) {
		return s.fail(
			fmt.Errorf(
				"input message does not match expected value: got %#v, expected %#v",
				msg,
				entry.InputPayload,
			),
		)
	}
	return nil
}

func (s *Socket) RecvPart() ([]byte, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.recvCalls++
	if err := s.fill(); err != nil {
		return nil, false, err
	}
	part := s.pending[0]
	s.pending = s.pending[1:]
	return part, len(s.pending) > 0, nil
}

func (s *Socket) RecvMessage() ([][]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.recvCalls++
	if err := s.fill(); err != nil {
		return nil, err
	}
	parts := s.pending
	s.pending = nil
	return parts, nil
}

// fill loads the parts of the next output entry once the current message is drained
func (s *Socket) fill() error {
	if s.closed {
		return transport.ErrSocketClosed
	}
	if s.err != nil {
		return s.err
	}
	if len(s.pending) > 0 {
		return nil
	}
	entry, err := s.next(EntryTypeOutput)
	if err != nil {
		return err
	}
	if entry.Err != nil {
		return entry.Err
	}
	parts := entry.OutputRaw
	if len(entry.OutputParts) > 0 {
		parts = make([][]byte, 0, len(entry.OutputParts))
		for _, item := range entry.OutputParts {
			data, err := s.codec.Encode(item)
			if err != nil {
				return s.fail(fmt.Errorf("encode error: %w", err))
			}
			parts = append(parts, data)
		}
	}
	if len(parts) == 0 {
		return s.fail(errors.New("output entry has no parts"))
	}
	s.pending = parts
	return nil
}

func (s *Socket) next(entryType EntryType) (ConversationEntry, error) {
	if len(s.conversation) == 0 {
		return ConversationEntry{}, s.fail(
			fmt.Errorf(
				"conversation is exhausted: expected %s entry",
				entryType,
			),
		)
	}
	entry := s.conversation[0]
	if entry.Type != entryType {
		return ConversationEntry{}, s.fail(
			fmt.Errorf(
				"unexpected conversation entry: expected %s, got %s",
				entryType,
				entry.Type,
			),
		)
	}
	s.conversation = s.conversation[1:]
	return entry, nil
}

// fail records the first departure from the script. The caller holds the mutex
func (s *Socket) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return s.err
}

func (s *Socket) Addr() net.Addr {
	return nil
}

func (s *Socket) Close() error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return transport.ErrSocketClosed
	}
	s.closed = true
	onClose := s.onClose
	s.mutex.Unlock()
	if onClose != nil {
		onClose()
	}
	return s.closeErr
}

// Endpoint returns the endpoint passed to Dial or Listen
func (s *Socket) Endpoint() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.endpoint
}

// Sent returns the messages passed to Send
func (s *Socket) Sent() [][][]byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([][][]byte(nil), s.sent...)
}

// RecvCalls returns the number of receive calls made
func (s *Socket) RecvCalls() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.recvCalls
}

// Closed returns whether Close has been called
func (s *Socket) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// Err returns the error that failed the conversation, if any
func (s *Socket) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.err
}

// Remaining returns the number of conversation entries not yet played
func (s *Socket) Remaining() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.conversation)
}
