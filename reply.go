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
	"math"

	"github.com/blinklabs-io/gocypher/codec"
)

// Reply info keys set by the server
const (
	KeyError     = "error"
	KeyException = "exception"
	KeyTime      = "time"
	KeyRows      = "rows"
	KeyBytes     = "bytes"
	KeyUpdates   = "updates"
)

// Info is a reply map, such as the footer that ends a result
type Info map[string]any

// Reply is the decoded final part of a reply. The server usually ends a reply with an
// Info map, but a reply made of result rows without a footer ends on a row, so Value
// holds whatever the last part decoded to. Info is set only when Value is a map.
type Reply struct {
	Info
	Value any
}

// Row returns the final part as a result row
func (r Reply) Row() ([]any, bool) {
	v, ok := r.Value.([]any)
	return v, ok
}

// StringValue returns the string value for key
func (r Info) StringValue(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// BoolValue returns the boolean value for key
func (r Info) BoolValue(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

// Int64Value returns the integer value for key. Any numeric type that holds an integer
// is accepted, since the codecs differ in how they decode numbers.
func (r Info) Int64Value(key string) (int64, bool) {
	return toInt64(r[key])
}

// MapValue returns the nested map value for key
func (r Info) MapValue(key string) (map[string]any, bool) {
	v, ok := r[key].(map[string]any)
	return v, ok
}

// TxId returns the transaction ID reported by the server
func (r Info) TxId() (int64, bool) {
	return r.Int64Value(KeyTxId)
}

// Err returns the error reported by the server, if any
func (r Info) Err() error {
	msg, ok := r.StringValue(KeyError)
	if !ok {
		return nil
	}
	return &ServerError{
		Message:   msg,
		Exception: r[KeyException],
	}
}

// ServerError is an error reported in a reply
type ServerError struct {
	Message   string
	Exception any
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	default:
		return 0, false
	}
}

// Result is a fully decoded multi-part reply
type Result struct {
	Columns []string
	Rows    [][]any
	Info    Info
}

// decodeReply decodes the final reply part. Only a malformed payload is an error.
func decodeReply(c codec.Codec, part []byte) (Reply, error) {
	var tmp any
	if err := c.Decode(part, &tmp); err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	ret := Reply{Value: tmp}
	if v, ok := tmp.(map[string]any); ok {
		ret.Info = Info(v)
	}
	return ret, nil
}

// decodeResult decodes every part of a reply. The first part is the column list,
// each following list part is a row, and a trailing map part is the info footer.
// A reply made of a single map part is only the footer.
func decodeResult(c codec.Codec, parts [][]byte) (*Result, error) {
	ret := &Result{
		Info: Info{},
	}
	for idx, part := range parts {
		var tmp any
		if err := c.Decode(part, &tmp); err != nil {
			return nil, fmt.Errorf("decode reply part %d: %w", idx, err)
		}
		switch v := tmp.(type) {
		case map[string]any:
			if idx != len(parts)-1 {
				return nil, fmt.Errorf("%w: map in part %d of %d", ErrUnexpectedReply, idx, len(parts))
			}
			ret.Info = Info(v)
		case []any:
			if idx == 0 {
				columns, err := toColumns(v)
				if err != nil {
					return nil, err
				}
				ret.Columns = columns
				continue
			}
			ret.Rows = append(ret.Rows, v)
		case nil:
			if idx != len(parts)-1 {
				return nil, fmt.Errorf("%w: null in part %d of %d", ErrUnexpectedReply, idx, len(parts))
			}
		default:
			return nil, fmt.Errorf("%w: part %d decoded to %T", ErrUnexpectedReply, idx, tmp)
		}
	}
	return ret, nil
}

func toColumns(v []any) ([]string, error) {
	ret := make([]string, 0, len(v))
	for _, item := range v {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: column name is %T", ErrUnexpectedReply, item)
		}
		ret = append(ret, name)
	}
	return ret, nil
}
