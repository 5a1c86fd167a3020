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

package mocksocket

import (
	"fmt"
)

type EntryType int

const (
	EntryTypeNone   EntryType = 0
	EntryTypeInput  EntryType = 1
	EntryTypeOutput EntryType = 2
)

func (t EntryType) String() string {
	switch t {
	case EntryTypeInput:
		return "input"
	case EntryTypeOutput:
		return "output"
	default:
		return fmt.Sprintf("EntryType(%d)", int(t))
	}
}

type ConversationEntry struct {
	Type EntryType
	// InputPayload is compared against the decoded request. A nil value matches any request
	InputPayload any
	// OutputParts are encoded with the socket codec, one value per part
	OutputParts []any
	// OutputRaw is used as-is when OutputParts is empty
	OutputRaw [][]byte
	// Err is returned from the matching send or receive call
	Err error
}

// Input returns an input entry that expects the provided decoded payload
func Input(payload any) ConversationEntry {
	return ConversationEntry{
		Type:         EntryTypeInput,
		InputPayload: payload,
	}
}

// Output returns an output entry that replies with one part per value
func Output(parts ...any) ConversationEntry {
	return ConversationEntry{
		Type:        EntryTypeOutput,
		OutputParts: parts,
	}
}

// ConversationEntryAnyInput is a pre-defined conversation entry that matches any request
var ConversationEntryAnyInput = ConversationEntry{
	Type: EntryTypeInput,
}

// ConversationEntryOk is a pre-defined conversation entry for a single-part {ok: true} reply
var ConversationEntryOk = Output(map[string]any{"ok": true})
