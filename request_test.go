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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPayload(t *testing.T) {
	txId := int64(7)
	testDefs := []struct {
		name     string
		request  *Request
		expected map[string]any
	}{
		{
			name:    "Defaults",
			request: NewRequest("RETURN 1"),
			expected: map[string]any{
				KeyQuery:  "RETURN 1",
				KeyStats:  false,
				KeyParams: map[string]any{"id": 0},
			},
		},
		{
			name:    "NilQueryWithStats",
			request: NewRequest("", WithStats(true)),
			expected: map[string]any{
				KeyQuery:  nil,
				KeyStats:  true,
				KeyParams: map[string]any{"id": 0},
			},
		},
		{
			name: "ParamsReplaced",
			request: NewRequest(
				"create n={name:{name}}",
				WithParams(map[string]any{"name": "test0"}),
			),
			expected: map[string]any{
				KeyQuery:  "create n={name:{name}}",
				KeyStats:  false,
				KeyParams: map[string]any{"name": "test0"},
			},
		},
		{
			name:    "NilParams",
			request: NewRequest("RETURN 1", WithParams(nil)),
			expected: map[string]any{
				KeyQuery:  "RETURN 1",
				KeyStats:  false,
				KeyParams: map[string]any{},
			},
		},
		{
			name: "Transaction",
			request: NewRequest(
				"",
				WithTx(TxCommit),
				WithTxId(txId),
				WithNoResults(true),
			),
			expected: map[string]any{
				KeyQuery:     nil,
				KeyStats:     false,
				KeyParams:    map[string]any{"id": 0},
				KeyTx:        "commit",
				KeyTxId:      int64(7),
				KeyNoResults: true,
			},
		},
		{
			name:    "LastOptionWins",
			request: NewRequest("RETURN 1", WithStats(true), WithStats(false)),
			expected: map[string]any{
				KeyQuery:  "RETURN 1",
				KeyStats:  false,
				KeyParams: map[string]any{"id": 0},
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.expected, testDef.request.Payload())
		})
	}
}

func TestRequestPayloadKeepsDefaultKeys(t *testing.T) {
	payload := NewRequest("", WithTx(TxBegin)).Payload()
	for _, key := range []string{KeyQuery, KeyStats, KeyParams} {
		assert.Contains(t, payload, key)
	}
}

func TestDefaultParamsAreNotShared(t *testing.T) {
	r1 := NewRequest("RETURN 1")
	r1.Params["id"] = 5
	r2 := NewRequest("RETURN 1")
	assert.Equal(t, 0, r2.Params["id"])
}

func TestRequestClone(t *testing.T) {
	orig := NewRequest(
		"create n={name:{name}}",
		WithParams(map[string]any{"name": "test0"}),
		WithTxId(3),
		WithStats(true),
	)
	clone, err := orig.Clone()
	require.NoError(t, err)
	assert.Equal(t, orig.Payload(), clone.Payload())
	clone.Params["name"] = "test1"
	*clone.TxId = 4
	assert.Equal(t, "test0", orig.Params["name"])
	assert.Equal(t, int64(3), *orig.TxId)
}
