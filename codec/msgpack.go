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

package codec

import (
	"reflect"
	"sync"

	"github.com/ugorji/go/codec"
)

var (
	msgpackHandle     *codec.MsgpackHandle
	msgpackHandleOnce sync.Once
)

// getMsgpackHandle returns the shared handle. A handle must not be modified
// once it is in use, so it is built exactly once.
func getMsgpackHandle() *codec.MsgpackHandle {
	msgpackHandleOnce.Do(func() {
		h := &codec.MsgpackHandle{}
		// Use the str8/bin types so strings and byte slices stay distinct on the wire
		h.WriteExt = true
		h.RawToString = true
		h.SignedInteger = true
		h.Canonical = true
		h.MapType = reflect.TypeOf(map[string]any(nil))
		msgpackHandle = h
	})
	return msgpackHandle
}

type msgpackCodec struct{}

// MsgPack returns the MessagePack codec
func MsgPack() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Name() string {
	return NameMsgPack
}

func (msgpackCodec) Encode(v any) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, getMsgpackHandle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

func (msgpackCodec) Decode(data []byte, dest any) error {
	dec := codec.NewDecoderBytes(data, getMsgpackHandle())
	return dec.Decode(dest)
}
