/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package batch iterates the configured image set in order, invokes the
// evaluation cycle per image, and checkpoints results to durable storage
// per chunk so partial progress survives a crash mid-run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/DDDOOONNN/ChatIQA/agents/evaluator"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
	"github.com/DDDOOONNN/ChatIQA/imageset"
)

// Source yields numbered images. imageset.Source is the production
// implementation.
type Source interface {
	Name(n int) string
	Load(n int) (*session.Attachment, error)
}

// Evaluator runs the conversation protocol for one image.
type Evaluator interface {
	Evaluate(ctx context.Context, imageName string, target, comparison *session.Attachment) *evaluator.Record
}

// Sink flushes one chunk of records to durable storage. first and last
// are the 1-based sequence bounds of the chunk.
type Sink interface {
	Flush(records []evaluator.Record, first, last int) error
}

// Runner orchestrates a batch evaluation run. Execution is strictly
// sequential: one image fully completes before the next begins.
type Runner struct {
	Eval       Evaluator
	Source     Source
	Sink       Sink
	Comparison *session.Attachment

	// Cycles sizes the sentinel records written for images that never
	// reach the evaluator.
	Cycles int
	// ChunkSize bounds each flushed chunk; 0 flushes everything at the
	// end of the run in a single chunk.
	ChunkSize int
	// Pace is the fixed delay inserted after each image completes, to
	// respect the remote endpoint's usage policy.
	Pace time.Duration
}

// Run processes images 1..total in order and returns every record
// produced. Missing and corrupt images yield sentinel records without any
// persona session being created. Storage-write failures are logged and do
// not stop subsequent chunks.
func (r *Runner) Run(ctx context.Context, total int) []evaluator.Record {
	log := clog.FromContext(ctx)

	chunk := r.ChunkSize
	if chunk <= 0 {
		chunk = total
	}

	all := make([]evaluator.Record, 0, total)
	for first := 1; first <= total; first += chunk {
		last := min(first+chunk-1, total)
		log.With("first", first).With("last", last).Info("Processing image chunk")

		records := make([]evaluator.Record, 0, last-first+1)
		for n := first; n <= last; n++ {
			records = append(records, *r.processImage(ctx, n))

			if r.Pace > 0 {
				time.Sleep(r.Pace)
			}
		}

		if r.Sink != nil {
			if err := r.Sink.Flush(records, first, last); err != nil {
				log.With("first", first).With("last", last).
					With("error", err.Error()).
					Error("Failed to flush chunk results")
			} else {
				log.With("first", first).With("last", last).Info("Flushed chunk results")
			}
		}
		all = append(all, records...)
	}

	return all
}

// processImage resolves one sequence number to a record.
func (r *Runner) processImage(ctx context.Context, n int) *evaluator.Record {
	log := clog.FromContext(ctx)
	name := r.Source.Name(n)
	log.With("image", name).Info("Processing image")

	target, err := r.Source.Load(n)
	if err != nil {
		rec := evaluator.NewRecord(name, r.Cycles)
		var decodeErr *imageset.DecodeError
		switch {
		case errors.Is(err, imageset.ErrNotFound):
			log.With("image", name).Warn("Image does not exist")
			rec.TargetAssessment = "Image not found."
		case errors.As(err, &decodeErr):
			log.With("image", name).With("error", err.Error()).Error("Image is not decodable")
			rec.TargetAssessment = fmt.Sprintf("Error opening image: %v", err)
		default:
			log.With("image", name).With("error", err.Error()).Error("Image load failed")
			rec.TargetAssessment = fmt.Sprintf("Error opening image: %v", err)
		}
		return rec
	}

	return r.Eval.Evaluate(ctx, name, target, r.Comparison)
}
