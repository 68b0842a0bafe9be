/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package moderation polices topical drift in the Asker/Responder
// dialogue. A Judge persona classifies each candidate utterance as
// on-topic or off-topic; off-topic utterances get exactly one
// regeneration attempt, whose result is accepted regardless of the
// second verdict. The bound guarantees every cycle terminates after at
// most two Judge calls and one regeneration.
package moderation

import (
	"context"
	"regexp"

	"github.com/chainguard-dev/clog"

	"github.com/DDDOOONNN/ChatIQA/agents/retry"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
	"github.com/DDDOOONNN/ChatIQA/agents/transport"
)

// Status records how an utterance fared against the Judge.
type Status string

const (
	// StatusOnTopic marks an utterance accepted on first judgment.
	StatusOnTopic Status = "on-topic"
	// StatusRegenerated marks a replacement utterance the Judge accepted
	// on second judgment.
	StatusRegenerated Status = "regenerated"
	// StatusOffTopic marks a replacement the Judge still flagged. It is
	// accepted anyway: the protocol never attempts a second regeneration.
	StatusOffTopic Status = "off-topic"
)

// FallbackReminder is used when no reminder can be extracted from the
// Judge's reply.
const FallbackReminder = "Please focus on image quality assessment."

// Detection is literal pattern matching, not semantic parsing: a reply
// discussing the word "off-topic" is a false positive by design.
var (
	offTopicPattern = regexp.MustCompile(`(?i)\boff-topic\b`)
	reminderPattern = regexp.MustCompile(`(?i)Remind\s+that[^\n]*`)
)

// Verdict is the Judge's classification of exactly one candidate
// utterance. It carries no history.
type Verdict struct {
	OnTopic  bool
	Reminder string
}

// ParseVerdict derives a verdict from the Judge's free-form reply. The
// reminder is a best-effort extraction; FallbackReminder stands in when
// the marker phrase is absent.
func ParseVerdict(reply string) Verdict {
	if !offTopicPattern.MatchString(reply) {
		return Verdict{OnTopic: true}
	}
	reminder := FallbackReminder
	if m := reminderPattern.FindString(reply); m != "" {
		reminder = m
	}
	return Verdict{OnTopic: false, Reminder: reminder}
}

// Moderator drives the judgment state machine against a Judge session.
type Moderator struct {
	client     transport.Client
	judge      *session.Session
	retryCfg   retry.Config
	attachment *session.Attachment
}

// New creates a Moderator bound to one image's Judge session. The image
// attachment is attached to every Judge message once loaded, including
// judgments of pure-text utterances.
func New(client transport.Client, judge *session.Session, retryCfg retry.Config, attachment *session.Attachment) *Moderator {
	return &Moderator{
		client:     client,
		judge:      judge,
		retryCfg:   retryCfg,
		attachment: attachment,
	}
}

// Review runs one utterance through the state machine and returns the
// accepted text with its status.
//
// judgePrompt renders the moderation prompt for a given candidate.
// regenerate re-prompts the originating persona with the extracted
// reminder and returns the single replacement utterance; like every other
// persona step, it reports failure as text rather than aborting.
func (m *Moderator) Review(ctx context.Context, kind, candidate string, judgePrompt func(candidate string) string, regenerate func(reminder string) string) (string, Status) {
	log := clog.FromContext(ctx).With("kind", kind)

	verdict, ok := m.classify(ctx, judgePrompt(candidate))
	if !ok || verdict.OnTopic {
		log.Debug("Utterance accepted as on-topic")
		return candidate, StatusOnTopic
	}

	log.With("reminder", verdict.Reminder).Info("Utterance judged off-topic, regenerating")
	replacement := regenerate(verdict.Reminder)

	second, ok := m.classify(ctx, judgePrompt(replacement))
	if ok && !second.OnTopic {
		// Logged, never corrected again: one regeneration per utterance.
		log.Warn("Regenerated utterance still off-topic, accepting anyway")
		return replacement, StatusOffTopic
	}
	return replacement, StatusRegenerated
}

// classify sends one moderation prompt to the Judge session. A transport
// failure is reported as not-ok and treated upstream as acceptance: a
// Judge outage must not stall the evaluation.
func (m *Moderator) classify(ctx context.Context, prompt string) (Verdict, bool) {
	reply, err := retry.Send(ctx, m.client, m.judge, session.Turn{
		Sender:     session.SenderUser,
		Text:       prompt,
		Attachment: m.attachment,
	}, m.retryCfg)
	if err != nil {
		clog.FromContext(ctx).With("error", err.Error()).
			Warn("Judge call failed, accepting utterance unmoderated")
		return Verdict{}, false
	}
	return ParseVerdict(reply), true
}
