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
	"context"
	"fmt"
	"sort"
	"strings"
)

// UpdateStats holds the update counters reported for a query.
type UpdateStats struct {
	NodesCreated         int64
	NodesDeleted         int64
	RelationshipsCreated int64
	RelationshipsDeleted int64
	PropertiesSet        int64
}

// ContainsUpdates reports whether any counter is positive.
func (u UpdateStats) ContainsUpdates() bool {
	return u.NodesCreated > 0 ||
		u.NodesDeleted > 0 ||
		u.RelationshipsCreated > 0 ||
		u.RelationshipsDeleted > 0 ||
		u.PropertiesSet > 0
}

// Result is the outcome of executing a query.
type Result struct {
	Columns []string
	Rows    [][]any
	Stats   UpdateStats
	// Err is a failure that occurred after the returned rows were produced. It is
	// reported in the reply footer rather than replacing the reply.
	Err error
}

// Executor runs a query with the provided parameters.
type Executor interface {
	Execute(ctx context.Context, query string, params map[string]any) (*Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, query string, params map[string]any) (*Result, error)

// Execute calls f.
func (f ExecutorFunc) Execute(
	ctx context.Context,
	query string,
	params map[string]any,
) (*Result, error) {
	return f(ctx, query, params)
}

type txIdKey struct{}

func withTxId(ctx context.Context, txId int64) context.Context {
	return context.WithValue(ctx, txIdKey{}, txId)
}

// TxIdFromContext returns the transaction selected for the request, if any.
func TxIdFromContext(ctx context.Context) (int64, bool) {
	txId, ok := ctx.Value(txIdKey{}).(int64)
	return txId, ok
}

// EchoExecutor returns a single row holding the query and its parameters. An empty
// query is rejected.
type EchoExecutor struct{}

// Execute implements Executor.
func (EchoExecutor) Execute(
	_ context.Context,
	query string,
	params map[string]any,
) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if params == nil {
		params = map[string]any{}
	}
	return &Result{
		Columns: []string{"query", "params"},
		Rows: [][]any{
			{query, params},
		},
	}, nil
}

// paramNames returns the sorted parameter names for logging.
func paramNames(params map[string]any) []string {
	ret := make([]string, 0, len(params))
	for name := range params {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
