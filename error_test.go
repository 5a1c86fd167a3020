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
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportErrorFormat(t *testing.T) {
	err := newTransportError(OpConnect, syscall.ECONNREFUSED, 0)
	assert.Equal(t, syscall.ECONNREFUSED, err.Errno)
	assert.Equal(
		t,
		"connect failed: errno [111] description [connection refused]",
		err.Error(),
	)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	plain := newTransportError(OpSend, errors.New("boom"), 0)
	assert.Equal(t, syscall.Errno(0), plain.Errno)
	assert.Equal(t, "send failed: boom", plain.Error())
}

func TestTransportErrorCaller(t *testing.T) {
	err := newTransportError(OpSend, errors.New("boom"), 0)
	require.NotEmpty(t, err.Stack)
	assert.LessOrEqual(t, len(err.Stack), maxStackFrames)
	assert.Contains(t, err.Caller(), "TestTransportErrorCaller")
	assert.Empty(t, (&TransportError{}).Caller())
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	c := &Client{
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}
	assert.NoError(t, c.reportError(OpSend, nil))
	assert.Empty(t, buf.String())
	err := c.reportError(OpReceive, syscall.EAGAIN)
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, OpReceive, tErr.Op)
	assert.Contains(t, tErr.Caller(), "TestReportError")
	out := buf.String()
	assert.True(t, strings.Contains(out, "level=ERROR"))
	assert.Contains(t, out, `op=receive`)
	assert.Contains(t, out, "errno=11")
	assert.Contains(t, out, "TestReportError")
}
