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
	"github.com/jinzhu/copier"
)

// Request payload keys
const (
	KeyQuery     = "query"
	KeyStats     = "stats"
	KeyParams    = "params"
	KeyTx        = "tx"
	KeyTxId      = "tx_id"
	KeyNoResults = "no_results"
)

// TxCommand is a transaction control marker
type TxCommand string

const (
	TxNone     TxCommand = ""
	TxBegin    TxCommand = "begin"
	TxCommit   TxCommand = "commit"
	TxRollback TxCommand = "rollback"
)

// DefaultParams returns the parameters sent when none are specified
func DefaultParams() map[string]any {
	return map[string]any{"id": 0}
}

// Request is a single query request
type Request struct {
	// Query is the query text. An empty query is sent as null, which the server
	// treats as a control-only request
	Query     string
	Stats     bool
	Params    map[string]any
	Tx        TxCommand
	TxId      *int64
	NoResults bool
}

// RequestOptionFunc is a function that overrides a Request default
type RequestOptionFunc func(*Request)

// NewRequest returns a Request with the default values, then applies the provided
// option functions in order. Options always win over defaults.
func NewRequest(query string, options ...RequestOptionFunc) *Request {
	r := &Request{
		Query:  query,
		Params: DefaultParams(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// WithStats specifies whether the server should return execution statistics
func WithStats(stats bool) RequestOptionFunc {
	return func(r *Request) {
		r.Stats = stats
	}
}

// WithParams replaces the query parameters
func WithParams(params map[string]any) RequestOptionFunc {
	return func(r *Request) {
		r.Params = params
	}
}

// WithTx sets the transaction control marker
func WithTx(tx TxCommand) RequestOptionFunc {
	return func(r *Request) {
		r.Tx = tx
	}
}

// WithTxId runs the request within the specified transaction
func WithTxId(txId int64) RequestOptionFunc {
	return func(r *Request) {
		r.TxId = &txId
	}
}

// WithNoResults asks the server to discard result rows
func WithNoResults(noResults bool) RequestOptionFunc {
	return func(r *Request) {
		r.NoResults = noResults
	}
}

// Payload returns the map that is encoded on the wire. The query, stats and params
// keys are always present; the others only when set.
func (r *Request) Payload() map[string]any {
	ret := map[string]any{
		KeyQuery:  nil,
		KeyStats:  r.Stats,
		KeyParams: r.Params,
	}
	if r.Query != "" {
		ret[KeyQuery] = r.Query
	}
	if r.Params == nil {
		ret[KeyParams] = map[string]any{}
	}
	if r.Tx != TxNone {
		ret[KeyTx] = string(r.Tx)
	}
	if r.TxId != nil {
		ret[KeyTxId] = *r.TxId
	}
	if r.NoResults {
		ret[KeyNoResults] = true
	}
	return ret
}

// Clone returns a deep copy of the request, so the copy's params can be modified
// without affecting the original
func (r *Request) Clone() (*Request, error) {
	ret := &Request{}
	if err := copier.CopyWithOption(ret, r, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return ret, nil
}
