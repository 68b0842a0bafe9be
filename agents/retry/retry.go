/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package retry wraps a single transport call with bounded
// retry-with-delay. The delay is constant between attempts, matching the
// remote endpoint's quota recovery behavior; exhausted retries become a
// terminal error value rather than a panic or abort.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/DDDOOONNN/ChatIQA/agents/session"
	"github.com/DDDOOONNN/ChatIQA/agents/transport"
)

// Config configures retry behavior for persona sends.
type Config struct {
	// MaxAttempts is the total number of transport calls allowed,
	// including the first. Must be at least 1.
	MaxAttempts int
	// Delay is the constant pause between attempts.
	Delay time.Duration
}

// Validate checks that the retry configuration has valid values.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("max attempts must be at least 1")
	}
	if c.Delay < 0 {
		return errors.New("delay cannot be negative")
	}
	return nil
}

// DefaultConfig mirrors the endpoint usage policy the protocol was tuned
// against: three attempts, five seconds apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
	}
}

// ExhaustedError is the terminal form of a transport failure after the
// attempt bound is reached.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("Error: send failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Send delivers msg through client with up to cfg.MaxAttempts attempts.
// On success it appends both the sent message and the received reply to
// sess, in that order, and returns the reply text. Failed attempts append
// nothing: callers never observe partial history mutation.
func Send(ctx context.Context, client transport.Client, sess *session.Session, msg session.Turn, cfg Config) (string, error) {
	log := clog.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		reply, err := client.Send(ctx, sess.History(), msg)
		if err == nil {
			sess.Append(msg)
			sess.Append(session.Turn{Sender: session.SenderModel, Text: reply})
			return reply, nil
		}
		lastErr = err

		log.With("role", string(sess.Role())).
			With("attempt", attempt).
			With("max_attempts", cfg.MaxAttempts).
			With("error", err.Error()).
			Warn("Send attempt failed")

		if attempt < cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return "", &ExhaustedError{Attempts: attempt, Last: ctx.Err()}
			case <-time.After(cfg.Delay):
			}
		}
	}

	return "", &ExhaustedError{Attempts: cfg.MaxAttempts, Last: lastErr}
}
