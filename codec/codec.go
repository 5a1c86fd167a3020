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

// Package codec provides the binary encodings used for query requests and replies.
//
// Two self-describing formats are supported: MessagePack, which is what the query
// server speaks by default, and CBOR. Both decode schema-less maps as
// map[string]any and integers as int64, so a decoded request or reply looks the
// same regardless of which format carried it.
package codec

import (
	"fmt"
	"strings"
)

const (
	NameMsgPack = "msgpack"
	NameCbor    = "cbor"
)

// Codec encodes and decodes message payloads
type Codec interface {
	Name() string
	Encode(v any) ([]byte, error)
	Decode(data []byte, dest any) error
}

// Default returns the codec used when none is configured
func Default() Codec {
	return MsgPack()
}

// New returns the codec with the specified name
func New(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameMsgPack, "messagepack":
		return MsgPack(), nil
	case NameCbor:
		return Cbor(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
}

// Names returns the names of all supported codecs
func Names() []string {
	return []string{NameMsgPack, NameCbor}
}
