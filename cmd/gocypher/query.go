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

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	cypher "github.com/blinklabs-io/gocypher"
	"github.com/spf13/cobra"
)

type queryFlags struct {
	params    []string
	stats     bool
	all       bool
	tx        string
	txId      int64
	noResults bool
}

func newQueryCmd(rc *rootCmd) *cobra.Command {
	qf := &queryFlags{}
	c := &cobra.Command{
		Use:   "query [QUERY]",
		Short: "Send a single query and print the reply as JSON",
		Long: "Send a single query and print the reply as JSON. Without a query, only the " +
			"transaction control flags are sent.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return rc.runQuery(cmd, query, qf)
		},
	}
	flags := c.Flags()
	flags.StringArrayVarP(&qf.params, "param", "p", nil, "query parameter as name=value; JSON values are decoded")
	flags.BoolVar(&qf.stats, "stats", false, "request execution statistics")
	flags.BoolVar(&qf.all, "all", false, "print every reply part: columns, rows, and info")
	flags.StringVar(&qf.tx, "tx", "", "transaction control (begin, commit, or rollback)")
	flags.Int64Var(&qf.txId, "tx-id", -1, "run within this transaction")
	flags.BoolVar(&qf.noResults, "no-results", false, "ask the server to discard result rows")
	return c
}

// parseParams decodes name=value pairs. A value that is valid JSON is decoded,
// otherwise it is used as a string
func parseParams(items []string) (map[string]any, error) {
	ret := make(map[string]any, len(items))
	for _, item := range items {
		name, value, ok := strings.Cut(item, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected name=value", item)
		}
		var tmp any
		dec := json.NewDecoder(strings.NewReader(value))
		dec.UseNumber()
		if err := dec.Decode(&tmp); err != nil || dec.More() {
			ret[name] = value
			continue
		}
		if n, ok := tmp.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				ret[name] = i
				continue
			}
			f, _ := n.Float64()
			ret[name] = f
			continue
		}
		ret[name] = tmp
	}
	return ret, nil
}

func (qf *queryFlags) requestOptions() ([]cypher.RequestOptionFunc, error) {
	opts := []cypher.RequestOptionFunc{
		cypher.WithStats(qf.stats),
		cypher.WithNoResults(qf.noResults),
	}
	if len(qf.params) > 0 {
		params, err := parseParams(qf.params)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cypher.WithParams(params))
	}
	switch cypher.TxCommand(qf.tx) {
	case cypher.TxNone:
	case cypher.TxBegin, cypher.TxCommit, cypher.TxRollback:
		opts = append(opts, cypher.WithTx(cypher.TxCommand(qf.tx)))
	default:
		return nil, fmt.Errorf("unknown transaction command: %s", qf.tx)
	}
	if qf.txId >= 0 {
		opts = append(opts, cypher.WithTxId(qf.txId))
	}
	return opts, nil
}

func (rc *rootCmd) runQuery(cmd *cobra.Command, query string, qf *queryFlags) error {
	opts, err := qf.requestOptions()
	if err != nil {
		return err
	}
	c, err := rc.newClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()
	req := cypher.NewRequest(query, opts...)
	var out any
	if qf.all {
		result, err := c.QueryAll(req)
		if err != nil {
			return err
		}
		out = map[string]any{
			"columns": result.Columns,
			"rows":    result.Rows,
			"info":    result.Info,
		}
	} else {
		reply, err := c.Send(req)
		if err != nil {
			return err
		}
		out = reply.Value
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
