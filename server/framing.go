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
	"fmt"
	"time"

	cypher "github.com/blinklabs-io/gocypher"
	"github.com/blinklabs-io/gocypher/codec"
)

// Reply footer keys for update counters
const (
	KeyNodesCreated  = "nodes_created"
	KeyNodesDeleted  = "nodes_deleted"
	KeyRelsCreated   = "rels_created"
	KeyRelsDeleted   = "rels_deleted"
	KeyPropertiesSet = "props_set"
)

// framer encodes reply parts and keeps a running byte count for the footer
type framer struct {
	codec codec.Codec
	parts [][]byte
	bytes int64
}

func (f *framer) add(v any) error {
	data, err := f.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode reply part %d: %w", len(f.parts), err)
	}
	f.parts = append(f.parts, data)
	f.bytes += int64(len(data))
	return nil
}

// frameResult builds the reply parts for a handled request.
//
// Without a result the reply is a single part: the footer when stats were requested,
// otherwise an empty map. With a result the reply is the column list, one part per row,
// and then the footer when stats were requested or a row failed. A result with no rows
// always ends with a footer, which is empty unless stats were requested.
func frameResult(
	cdc codec.Codec,
	result *Result,
	stats bool,
	info map[string]any,
	start time.Time,
) ([][]byte, error) {
	f := &framer{codec: cdc}
	if result == nil {
		if !stats {
			if err := f.add(map[string]any{}); err != nil {
				return nil, err
			}
			return f.parts, nil
		}
		if err := f.add(footer(nil, 0, f.bytes, info, start)); err != nil {
			return nil, err
		}
		return f.parts, nil
	}
	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}
	if err := f.add(columns); err != nil {
		return nil, err
	}
	for _, row := range result.Rows {
		if err := f.add(row); err != nil {
			return nil, err
		}
	}
	switch {
	case stats || result.Err != nil:
		if err := f.add(footer(result, int64(len(result.Rows)), f.bytes, info, start)); err != nil {
			return nil, err
		}
	case len(result.Rows) == 0:
		if err := f.add(map[string]any{}); err != nil {
			return nil, err
		}
	}
	return f.parts, nil
}

// footer builds the reply info map
func footer(
	result *Result,
	rows int64,
	bytes int64,
	info map[string]any,
	start time.Time,
) map[string]any {
	ret := map[string]any{
		cypher.KeyTime:  time.Since(start).Milliseconds(),
		cypher.KeyRows:  rows,
		cypher.KeyBytes: bytes,
	}
	for k, v := range info {
		ret[k] = v
	}
	if result == nil {
		return ret
	}
	if result.Stats.ContainsUpdates() {
		ret[cypher.KeyUpdates] = true
		putIfPositive(ret, KeyNodesCreated, result.Stats.NodesCreated)
		putIfPositive(ret, KeyNodesDeleted, result.Stats.NodesDeleted)
		putIfPositive(ret, KeyRelsCreated, result.Stats.RelationshipsCreated)
		putIfPositive(ret, KeyRelsDeleted, result.Stats.RelationshipsDeleted)
		putIfPositive(ret, KeyPropertiesSet, result.Stats.PropertiesSet)
	}
	if result.Err != nil {
		addError(ret, result.Err)
	}
	return ret
}

func putIfPositive(m map[string]any, key string, value int64) {
	if value > 0 {
		m[key] = value
	}
}

// addError sets the error message and a description of the error chain
func addError(m map[string]any, err error) {
	m[cypher.KeyError] = err.Error()
	m[cypher.KeyException] = fmt.Sprintf("%T: %+v", err, err)
}

// errorReply returns the single-part reply for a failed request
func errorReply(cdc codec.Codec, err error) ([][]byte, error) {
	m := map[string]any{}
	addError(m, err)
	data, encErr := cdc.Encode(m)
	if encErr != nil {
		return nil, encErr
	}
	return [][]byte{data}, nil
}
