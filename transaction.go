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
	"fmt"
)

// Begin starts a server-side transaction and returns its ID. The provided options are
// applied to the control request before the begin marker is set.
func (c *Client) Begin(options ...RequestOptionFunc) (int64, error) {
	opts := append([]RequestOptionFunc{WithStats(true)}, options...)
	opts = append(opts, WithTx(TxBegin))
	reply, err := c.Send(NewRequest("", opts...))
	if err != nil {
		return 0, err
	}
	if err := reply.Err(); err != nil {
		return 0, err
	}
	txId, ok := reply.TxId()
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNoTransaction, reply.Value)
	}
	return txId, nil
}

// Commit commits the specified transaction
func (c *Client) Commit(txId int64) (Reply, error) {
	return c.endTx(txId, TxCommit)
}

// Rollback rolls back the specified transaction
func (c *Client) Rollback(txId int64) (Reply, error) {
	return c.endTx(txId, TxRollback)
}

func (c *Client) endTx(txId int64, tx TxCommand) (Reply, error) {
	reply, err := c.Send(
		NewRequest(
			"",
			WithStats(true),
			WithTx(tx),
			WithTxId(txId),
		),
	)
	if err != nil {
		return reply, err
	}
	if err := reply.Err(); err != nil {
		return reply, err
	}
	return reply, nil
}
