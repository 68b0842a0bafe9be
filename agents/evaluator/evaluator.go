/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package evaluator drives the fixed turn sequence for one image: a
// baseline assessment of the comparison image, a baseline assessment of
// the target image, N optionally moderated question/answer cycles, and a
// final consolidated summary with a 0-100 score. Every persona failure is
// contained at the turn level and surfaced as the field's value; one bad
// turn never aborts the image, and one bad image never aborts the batch.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/chainguard-dev/clog"

	"github.com/DDDOOONNN/ChatIQA/agents/moderation"
	"github.com/DDDOOONNN/ChatIQA/agents/retry"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
	"github.com/DDDOOONNN/ChatIQA/agents/transport"
)

// Config carries the plain values the evaluation cycle needs. The
// transport client is constructor-injected and shared across all
// sessions; no session holds exclusive ownership of it.
type Config struct {
	Client transport.Client
	Retry  retry.Config

	// Cycles is the number of question/answer rounds per image.
	Cycles int
	// Moderate enables the Judge persona.
	Moderate bool

	// ComparisonName and ComparisonScore identify the fixed comparison
	// image and its stated reference score for calibration.
	ComparisonName  string
	ComparisonScore int

	// Personas overrides the stock system instructions when non-zero.
	Personas Personas
}

// Evaluator runs the per-image conversation protocol.
type Evaluator struct {
	cfg Config
}

// New validates the configuration and returns an Evaluator.
func New(cfg Config) (*Evaluator, error) {
	if cfg.Client == nil {
		return nil, errors.New("transport client is required")
	}
	if cfg.Cycles < 0 {
		return nil, fmt.Errorf("cycle count cannot be negative, got %d", cfg.Cycles)
	}
	if err := cfg.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	if (cfg.Personas == Personas{}) {
		cfg.Personas = DefaultPersonas()
	}
	return &Evaluator{cfg: cfg}, nil
}

// Evaluate runs the full cycle for one image and returns its record. The
// record is complete for any outcome: steps that could not run hold the
// NotAvailable sentinel, failed steps hold the error text.
func (e *Evaluator) Evaluate(ctx context.Context, imageName string, target, comparison *session.Attachment) *Record {
	log := clog.FromContext(ctx).With("image", imageName)
	rec := NewRecord(imageName, e.cfg.Cycles)

	responder, asker, mod, err := e.sessions(target)
	if err != nil {
		log.With("error", err.Error()).Error("Failed to initialize persona sessions")
		rec.TargetAssessment = fmt.Sprintf("Error initializing chat sessions: %v", err)
		return rec
	}

	e.run(ctx, rec, responder, asker, mod, target, comparison)
	return rec
}

// sessions constructs the per-image persona sessions, and the Moderator
// when moderation is enabled.
func (e *Evaluator) sessions(target *session.Attachment) (*session.Session, *session.Session, *moderation.Moderator, error) {
	responder, err := session.New(session.RoleResponder, e.cfg.Personas.Responder)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("responder session: %w", err)
	}
	asker, err := session.New(session.RoleAsker, e.cfg.Personas.Asker)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("asker session: %w", err)
	}
	var mod *moderation.Moderator
	if e.cfg.Moderate {
		judge, err := session.New(session.RoleJudge, e.cfg.Personas.Judge)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("judge session: %w", err)
		}
		mod = moderation.New(e.cfg.Client, judge, e.cfg.Retry, target)
	}
	return responder, asker, mod, nil
}

// run executes the turn sequence against already-initialized sessions.
func (e *Evaluator) run(ctx context.Context, rec *Record, responder, asker *session.Session, mod *moderation.Moderator, target, comparison *session.Attachment) {
	log := clog.FromContext(ctx).With("image", rec.Image)

	// send contains turn-level failures as data: an exhausted retry's
	// message becomes the value of whatever field was being produced.
	send := func(sess *session.Session, text string, att *session.Attachment) string {
		reply, err := retry.Send(ctx, e.cfg.Client, sess, session.Turn{
			Sender:     session.SenderUser,
			Text:       text,
			Attachment: att,
		}, e.cfg.Retry)
		if err != nil {
			log.With("role", string(sess.Role())).
				With("error", err.Error()).
				Error("Persona turn failed after retries")
			return err.Error()
		}
		return reply
	}

	rec.ComparisonAssessment = send(responder, comparisonAssessmentPrompt(e.cfg.ComparisonName, e.cfg.ComparisonScore), comparison)
	log.Info("Recorded comparison baseline assessment")

	rec.TargetAssessment = send(responder, targetAssessmentPrompt(rec.Image), target)
	log.Info("Recorded target baseline assessment")

	previous := rec.TargetAssessment
	for i := range rec.Cycles {
		cycle := &rec.Cycles[i]
		log := log.With("cycle", cycle.Index)

		question := send(asker, questionPrompt(previous), target)
		cycle.QuestionStatus = moderation.StatusOnTopic
		if mod != nil {
			question, cycle.QuestionStatus = mod.Review(ctx, "question", question, judgeQuestionPrompt,
				func(reminder string) string {
					return send(asker, regenerateQuestionPrompt(reminder, previous), target)
				})
		}
		cycle.Question = question
		log.With("status", string(cycle.QuestionStatus)).Info("Recorded asker question")

		asked := question + keyFactorsSuffix(rec.Image)
		answer := send(responder, asked, target)
		cycle.AnswerStatus = moderation.StatusOnTopic
		if mod != nil {
			answer, cycle.AnswerStatus = mod.Review(ctx, "answer", answer, judgeAnswerPrompt,
				func(reminder string) string {
					return send(responder, regenerateAnswerPrompt(reminder, asked, answer), target)
				})
		}
		cycle.Answer = answer
		log.With("status", string(cycle.AnswerStatus)).Info("Recorded responder answer")

		// The accepted answer conditions the next cycle's question.
		previous = answer
	}

	rec.FinalSummary = send(responder, finalSummaryPrompt(rec.Cycles), target)
	if score, ok := ExtractFinalScore(rec.FinalSummary); ok {
		rec.FinalScore = strconv.Itoa(score)
	} else if score, ok := ExtractFinalScore(rec.TargetAssessment); ok {
		rec.FinalScore = strconv.Itoa(score)
	}
	rec.FinalResult = send(responder, briefResultPrompt(rec.FinalSummary), target)
	log.With("score", rec.FinalScore).Info("Recorded final summary")
}
