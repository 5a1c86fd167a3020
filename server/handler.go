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
	"time"

	cypher "github.com/blinklabs-io/gocypher"
	"github.com/blinklabs-io/gocypher/metrics"
)

// noTransaction marks a request that runs outside any transaction
const noTransaction int64 = -1

// request is a decoded query request
type request struct {
	query     string
	hasQuery  bool
	stats     bool
	params    map[string]any
	tx        cypher.TxCommand
	txId      int64
	hasTxId   bool
	noResults bool
}

// parseRequest decodes a request payload. A bare string is a query with no other keys.
func (s *Server) parseRequest(payload []byte) (*request, error) {
	var tmp any
	if err := s.codec.Decode(payload, &tmp); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	switch v := tmp.(type) {
	case string:
		return &request{
			query:    v,
			hasQuery: true,
			params:   map[string]any{},
		}, nil
	case map[string]any:
		r := cypher.Info(v)
		ret := &request{}
		ret.query, ret.hasQuery = r.StringValue(cypher.KeyQuery)
		ret.stats, _ = r.BoolValue(cypher.KeyStats)
		ret.params, _ = r.MapValue(cypher.KeyParams)
		if ret.params == nil {
			ret.params = map[string]any{}
		}
		tx, _ := r.StringValue(cypher.KeyTx)
		ret.tx = cypher.TxCommand(tx)
		if v[cypher.KeyTxId] != nil {
			txId, ok := r.Int64Value(cypher.KeyTxId)
			if !ok {
				return nil, fmt.Errorf("invalid transaction ID: %v", v[cypher.KeyTxId])
			}
			ret.txId = txId
			ret.hasTxId = true
		}
		_, ret.noResults = v[cypher.KeyNoResults]
		return ret, nil
	default:
		return nil, fmt.Errorf("unsupported request payload type: %T", tmp)
	}
}

// handle processes one request payload and returns the reply parts. Failures are
// reported to the client in the reply.
func (s *Server) handle(ctx context.Context, payload []byte) [][]byte {
	start := time.Now()
	parts, err := s.process(ctx, payload, start)
	if err != nil {
		s.logger.Warn(
			"error during query execution",
			"component", "server",
			"error", err,
		)
		parts, err = errorReply(s.codec, err)
		if err != nil {
			s.logger.Error("failed to encode error reply", "component", "server", "error", err)
			parts = [][]byte{s.emptyMsg}
		}
		s.metrics.ObserveRequest(metrics.StatusError, time.Since(start), len(parts))
		return parts
	}
	s.metrics.ObserveRequest(metrics.StatusOk, time.Since(start), len(parts))
	return parts
}

func (s *Server) process(ctx context.Context, payload []byte, start time.Time) ([][]byte, error) {
	req, err := s.parseRequest(payload)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(
		"got query",
		"component", "server",
		"query", req.query,
		"params", paramNames(req.params),
		"tx", string(req.tx),
		"stats", req.stats,
	)
	info := map[string]any{}
	current, err := s.beforeQuery(req, info)
	if err != nil {
		return nil, err
	}
	var result *Result
	if req.hasQuery {
		execCtx := ctx
		if current != noTransaction {
			execCtx = withTxId(ctx, current)
		}
		result, err = s.executor.Execute(execCtx, req.query, req.params)
		if err != nil {
			if current != noTransaction {
				_ = s.transactions.Suspend(current)
			}
			return nil, err
		}
	}
	if req.noResults {
		result = nil
	}
	if err := s.afterQuery(req, current, info); err != nil {
		return nil, err
	}
	return frameResult(s.codec, result, req.stats, info, start)
}

// beforeQuery applies the transaction control that precedes execution and returns
// the selected transaction
func (s *Server) beforeQuery(req *request, info map[string]any) (int64, error) {
	switch {
	case req.tx == cypher.TxBegin:
		txId, err := s.transactions.Begin()
		if err != nil {
			return noTransaction, err
		}
		info[cypher.KeyTxId] = txId
		info[cypher.KeyTx] = string(cypher.TxBegin)
		return txId, nil
	case req.hasTxId:
		if err := s.transactions.Select(req.txId); err != nil {
			return noTransaction, err
		}
		info[cypher.KeyTxId] = req.txId
		if req.tx != cypher.TxRollback {
			return req.txId, nil
		}
		if err := s.transactions.Rollback(req.txId); err != nil {
			return noTransaction, err
		}
		info[cypher.KeyTxId] = noTransaction
		info[cypher.KeyTx] = string(cypher.TxRollback)
		return noTransaction, nil
	case req.tx == cypher.TxRollback:
		return noTransaction, ErrNoTransaction
	}
	return noTransaction, nil
}

// afterQuery commits or suspends the selected transaction
func (s *Server) afterQuery(req *request, current int64, info map[string]any) error {
	if req.tx == cypher.TxCommit {
		if current == noTransaction {
			return ErrNoTransaction
		}
		if err := s.transactions.Commit(current); err != nil {
			return err
		}
		info[cypher.KeyTxId] = noTransaction
		info[cypher.KeyTx] = string(cypher.TxCommit)
		return nil
	}
	if current == noTransaction {
		return nil
	}
	return s.transactions.Suspend(current)
}
