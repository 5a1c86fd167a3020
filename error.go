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
	"errors"
	"fmt"
	"runtime"
	"syscall"
)

var (
	ErrClosed          = errors.New("client is closed")
	ErrNotConnected    = errors.New("client is not connected")
	ErrUnexpectedReply = errors.New("unexpected reply payload")
	ErrNoTransaction   = errors.New("reply did not contain a transaction ID")
)

// Transport operation names used in TransportError
const (
	OpCreateContext = "create context"
	OpCreateSocket  = "create socket"
	OpConnect       = "connect"
	OpSend          = "send"
	OpReceive       = "receive"
	OpClose         = "close"
	OpTerminate     = "terminate"
)

// maxStackFrames limits how much of the caller stack is kept on a TransportError
const maxStackFrames = 8

// TransportError is a failed transport operation along with where it was called from
type TransportError struct {
	Op    string
	Errno syscall.Errno
	Err   error
	Stack []string
}

func (e *TransportError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("%s failed: errno [%d] description [%s]", e.Op, int(e.Errno), e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Caller returns the innermost captured call site
func (e *TransportError) Caller() string {
	if len(e.Stack) == 0 {
		return ""
	}
	return e.Stack[0]
}

// newTransportError wraps err with the operation and the call stack, skipping the
// specified number of frames above the caller of newTransportError
func newTransportError(op string, err error, skip int) *TransportError {
	ret := &TransportError{
		Op:  op,
		Err: err,
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		ret.Errno = errno
	}
	pcs := make([]uintptr, maxStackFrames)
	// Skip runtime.Callers and newTransportError itself
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		ret.Stack = append(
			ret.Stack,
			fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function),
		)
		if !more {
			break
		}
	}
	return ret
}

// reportError converts a failed transport operation into a TransportError and logs
// it. A nil error is returned unchanged.
func (c *Client) reportError(op string, err error) error {
	if err == nil {
		return nil
	}
	// Skip reportError so the stack starts at the operation that failed
	tErr := newTransportError(op, err, 1)
	c.logger.Error(
		"operation failed",
		"component", "client",
		"op", op,
		"errno", int(tErr.Errno),
		"description", err.Error(),
		"caller", tErr.Caller(),
		"stack", tErr.Stack,
	)
	return tErr
}
