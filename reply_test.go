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
	"testing"

	"github.com/blinklabs-io/gocypher/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeParts(t *testing.T, c codec.Codec, items ...any) [][]byte {
	t.Helper()
	ret := make([][]byte, 0, len(items))
	for _, item := range items {
		data, err := c.Encode(item)
		require.NoError(t, err)
		ret = append(ret, data)
	}
	return ret
}

func TestInfoAccessors(t *testing.T) {
	r := Info{
		"name":  "x",
		"ok":    true,
		"rows":  int64(3),
		"time":  uint8(4),
		"ratio": 1.5,
		"tx_id": uint64(9),
		"info":  map[string]any{"a": "b"},
	}
	s, ok := r.StringValue("name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	b, ok := r.BoolValue("ok")
	assert.True(t, ok)
	assert.True(t, b)
	n, ok := r.Int64Value(KeyRows)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	n, ok = r.Int64Value(KeyTime)
	assert.True(t, ok)
	assert.Equal(t, int64(4), n)
	_, ok = r.Int64Value("ratio")
	assert.False(t, ok)
	_, ok = r.Int64Value("missing")
	assert.False(t, ok)
	txId, ok := r.TxId()
	assert.True(t, ok)
	assert.Equal(t, int64(9), txId)
	m, ok := r.MapValue("info")
	assert.True(t, ok)
	assert.Equal(t, "b", m["a"])
	assert.NoError(t, r.Err())
}

func TestInfoErr(t *testing.T) {
	r := Info{
		KeyError:     "Unknown identifier `m`",
		KeyException: map[string]any{"class": "SyntaxException"},
	}
	err := r.Err()
	require.Error(t, err)
	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "Unknown identifier `m`", sErr.Message)
	assert.Equal(t, "server error: Unknown identifier `m`", err.Error())
}

func TestDecodeResult(t *testing.T) {
	for _, cdc := range []codec.Codec{codec.MsgPack(), codec.Cbor()} {
		t.Run(cdc.Name(), func(t *testing.T) {
			parts := encodeParts(
				t,
				cdc,
				[]any{"n"},
				[]any{int64(1)},
				[]any{int64(2)},
				map[string]any{"rows": int64(2)},
			)
			result, err := decodeResult(cdc, parts)
			require.NoError(t, err)
			assert.Equal(t, []string{"n"}, result.Columns)
			assert.Equal(t, [][]any{{int64(1)}, {int64(2)}}, result.Rows)
			assert.Equal(t, Info{"rows": int64(2)}, result.Info)
		})
	}
}

func TestDecodeResultInfoOnly(t *testing.T) {
	cdc := codec.Default()
	result, err := decodeResult(cdc, encodeParts(t, cdc, map[string]any{"time": int64(0)}))
	require.NoError(t, err)
	assert.Nil(t, result.Columns)
	assert.Nil(t, result.Rows)
	assert.Equal(t, Info{"time": int64(0)}, result.Info)
}

func TestDecodeResultErrors(t *testing.T) {
	cdc := codec.Default()
	testDefs := []struct {
		name  string
		items []any
	}{
		{name: "MapBeforeEnd", items: []any{map[string]any{}, []any{"n"}}},
		{name: "NullBeforeEnd", items: []any{nil, []any{"n"}}},
		{name: "ScalarPart", items: []any{"text"}},
		{name: "NonStringColumn", items: []any{[]any{int64(1)}}},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := decodeResult(cdc, encodeParts(t, cdc, testDef.items...))
			assert.ErrorIs(t, err, ErrUnexpectedReply)
		})
	}
}

func TestDecodeReply(t *testing.T) {
	for _, cdc := range []codec.Codec{codec.MsgPack(), codec.Cbor()} {
		t.Run(cdc.Name(), func(t *testing.T) {
			reply, err := decodeReply(cdc, encodeParts(t, cdc, nil)[0])
			require.NoError(t, err)
			assert.Equal(t, Reply{}, reply)
			assert.NoError(t, reply.Err())
			reply, err = decodeReply(cdc, encodeParts(t, cdc, map[string]any{"ok": true})[0])
			require.NoError(t, err)
			assert.Equal(t, Info{"ok": true}, reply.Info)
			reply, err = decodeReply(cdc, encodeParts(t, cdc, []any{"alice", int64(30)})[0])
			require.NoError(t, err)
			assert.Nil(t, reply.Info)
			row, ok := reply.Row()
			assert.True(t, ok)
			assert.Equal(t, []any{"alice", int64(30)}, row)
			reply, err = decodeReply(cdc, encodeParts(t, cdc, int64(1))[0])
			require.NoError(t, err)
			assert.Equal(t, int64(1), reply.Value)
			_, ok = reply.Row()
			assert.False(t, ok)
		})
	}
	_, err := decodeReply(codec.Default(), []byte{0x92, 0x01})
	assert.ErrorContains(t, err, "decode reply")
}
