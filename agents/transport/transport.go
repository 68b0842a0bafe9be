/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"fmt"

	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

// Client sends a conversation to a remote chat completion endpoint and
// returns the generated reply text. The protocol is stateless per call:
// the full ordered history plus the new message is required context every
// time, and history mutation is the caller's responsibility, performed
// only after a successful reply.
type Client interface {
	Send(ctx context.Context, history []session.Turn, msg session.Turn) (string, error)
}

// Error is the single failure type at this layer. Non-2xx responses,
// malformed bodies, and missing text fields all collapse into it; no
// finer distinction is made.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("transport: %s", e.Op)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// failed wraps any backend failure into the layer's single error type.
func failed(op string, cause error) *Error {
	return &Error{Op: op, Cause: cause}
}
