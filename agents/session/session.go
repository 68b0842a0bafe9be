/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package session holds the append-only conversation log for a single
// persona. A session is created once per image per persona and discarded
// when the image's evaluation completes; there is no cross-image memory.
package session

import "errors"

// Role identifies a persona within an evaluation.
type Role string

const (
	RoleResponder Role = "responder"
	RoleAsker     Role = "asker"
	RoleJudge     Role = "judge"
)

// Sender is the wire-level origin of a turn. The codec maps these onto
// whatever role vocabulary the target API family uses.
type Sender string

const (
	// SenderSystem marks the persona instruction turn. It is always the
	// first turn of a session and is set exactly once at creation.
	SenderSystem Sender = "system"
	SenderUser   Sender = "user"
	SenderModel  Sender = "model"
)

// Attachment is an inline binary payload, already base64-encoded for
// transport. It is constructed once per image and reused read-only across
// every turn that needs visual grounding.
type Attachment struct {
	// MIMEType is the media type of the payload, e.g. "image/jpeg".
	MIMEType string
	// Base64 is the standard-encoded payload.
	Base64 string
}

// Turn is one role-tagged message in a persona's history. Turns are
// immutable once appended.
type Turn struct {
	Sender     Sender
	Text       string
	Attachment *Attachment
}

// Session accumulates the ordered turns of one persona. It enforces only
// the append-only and immutable-first-turn invariants; it performs no
// semantic validation of turn content.
type Session struct {
	role  Role
	turns []Turn
}

// New creates a session seeded with the persona's instruction turn.
func New(role Role, instruction string) (*Session, error) {
	if instruction == "" {
		return nil, errors.New("persona instruction cannot be empty")
	}
	return &Session{
		role: role,
		turns: []Turn{{
			Sender: SenderSystem,
			Text:   instruction,
		}},
	}, nil
}

// Role returns the persona identity this session belongs to.
func (s *Session) Role() Role {
	return s.role
}

// Append adds a turn to the end of the history.
func (s *Session) Append(t Turn) {
	s.turns = append(s.turns, t)
}

// History returns a copy of the ordered turn sequence, instruction first.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of turns, including the instruction turn.
func (s *Session) Len() int {
	return len(s.turns)
}
