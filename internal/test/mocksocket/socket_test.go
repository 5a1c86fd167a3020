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
	"testing"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Basic test of conversation mock functionality
func TestBasic(t *testing.T) {
	defer goleak.VerifyNone(t)
	cdc := codec.Default()
	sock := New(
		cdc,
		Input(map[string]any{"query": "RETURN 1"}),
		Output([]any{"a"}, []any{int64(1)}, map[string]any{}),
	)
	require.NoError(t, sock.Dial("inproc://mock"))
	assert.Equal(t, "inproc://mock", sock.Endpoint())
	payload, err := cdc.Encode(map[string]any{"query": "RETURN 1"})
	require.NoError(t, err)
	require.NoError(t, sock.Send(payload))
	var parts int
	for {
		_, more, err := sock.RecvPart()
		require.NoError(t, err)
		parts++
		if !more {
			break
		}
	}
	assert.Equal(t, 3, parts)
	assert.Equal(t, 3, sock.RecvCalls())
	assert.Equal(t, 0, sock.Remaining())
	require.NoError(t, sock.Close())
	assert.True(t, sock.Closed())
}

func TestInputMismatch(t *testing.T) {
	cdc := codec.Default()
	sock := New(cdc, Input(map[string]any{"query": "a"}), ConversationEntryOk)
	payload, err := cdc.Encode(map[string]any{"query": "b"})
	require.NoError(t, err)
	sendErr := sock.Send(payload)
	require.Error(t, sendErr)
	// The reply scripted after the mismatched input is never played
	_, _, err = sock.RecvPart()
	assert.Equal(t, sendErr, err)
	assert.Equal(t, 1, sock.Remaining())
}

func TestUnexpectedEntry(t *testing.T) {
	sock := New(nil, ConversationEntryOk)
	sendErr := sock.Send([]byte{0xc0})
	require.Error(t, sendErr)
	assert.Contains(t, sendErr.Error(), "expected input, got output")
	_, _, err := sock.RecvPart()
	assert.Equal(t, sendErr, err)
	_, err = sock.RecvMessage()
	assert.Equal(t, sendErr, err)
	assert.Equal(t, sendErr, sock.Send([]byte{0xc0}))
	assert.Equal(t, sendErr, sock.Err())
	assert.Equal(t, 1, sock.Remaining())
}

func TestExhaustedConversation(t *testing.T) {
	sock := New(nil, ConversationEntryAnyInput)
	require.NoError(t, sock.Send([]byte{0xc0}))
	_, err := sock.RecvMessage()
	require.ErrorContains(t, err, "conversation is exhausted")
	assert.Equal(t, err, sock.Send([]byte{0xc0}))
}

func TestScriptedErrors(t *testing.T) {
	sendErr := errors.New("send failed")
	recvErr := errors.New("recv failed")
	sock := New(
		nil,
		ConversationEntry{Type: EntryTypeInput, Err: sendErr},
		ConversationEntry{Type: EntryTypeOutput, Err: recvErr},
	)
	assert.ErrorIs(t, sock.Send([]byte{0xc0}), sendErr)
	_, err := sock.RecvMessage()
	assert.ErrorIs(t, err, recvErr)
}

func TestCloseTwice(t *testing.T) {
	calls := 0
	closeErr := errors.New("close failed")
	sock := New(nil).WithCloseError(closeErr).OnClose(func() { calls++ })
	assert.ErrorIs(t, sock.Close(), closeErr)
	assert.Error(t, sock.Close())
	assert.Equal(t, 1, calls)
}
