/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DDDOOONNN/ChatIQA/agents/batch"
	"github.com/DDDOOONNN/ChatIQA/agents/evaluator"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
	"github.com/DDDOOONNN/ChatIQA/imageset"
)

// fakeSource serves attachments for a fixed set of sequence numbers and
// fails the rest.
type fakeSource struct {
	missing map[int]bool
	corrupt map[int]bool
}

func (f *fakeSource) Name(n int) string {
	return fmt.Sprintf("img_%04d.png", n)
}

func (f *fakeSource) Load(n int) (*session.Attachment, error) {
	switch {
	case f.missing[n]:
		return nil, imageset.ErrNotFound
	case f.corrupt[n]:
		return nil, &imageset.DecodeError{Name: f.Name(n), Err: errors.New("truncated file")}
	}
	return &session.Attachment{MIMEType: "image/png", Base64: "aGk="}, nil
}

// fakeEval records which images were evaluated and returns a minimal
// completed record for each.
type fakeEval struct {
	evaluated []string
}

func (f *fakeEval) Evaluate(_ context.Context, imageName string, _, _ *session.Attachment) *evaluator.Record {
	f.evaluated = append(f.evaluated, imageName)
	rec := evaluator.NewRecord(imageName, 0)
	rec.TargetAssessment = "evaluated"
	return rec
}

// fakeSink records flush calls and optionally fails some of them.
type fakeSink struct {
	flushes []flushCall
	failOn  map[int]bool
}

type flushCall struct {
	first, last int
	images      []string
}

func (f *fakeSink) Flush(records []evaluator.Record, first, last int) error {
	images := make([]string, 0, len(records))
	for _, r := range records {
		images = append(images, r.Image)
	}
	f.flushes = append(f.flushes, flushCall{first: first, last: last, images: images})
	if f.failOn[first] {
		return errors.New("disk full")
	}
	return nil
}

func TestRun_MissingImagesYieldSentinels(t *testing.T) {
	t.Parallel()
	eval := &fakeEval{}
	runner := &batch.Runner{
		Eval:   eval,
		Source: &fakeSource{missing: map[int]bool{4: true}, corrupt: map[int]bool{5: true}},
		Cycles: 2,
	}

	records := runner.Run(context.Background(), 6)
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}

	// Images 4 and 5 never reach the evaluator.
	want := []string{"img_0001.png", "img_0002.png", "img_0003.png", "img_0006.png"}
	if diff := cmp.Diff(want, eval.evaluated); diff != "" {
		t.Errorf("evaluated images mismatch (-want +got):\n%s", diff)
	}

	if got := records[3].TargetAssessment; got != "Image not found." {
		t.Errorf("missing image sentinel = %q", got)
	}
	if got := records[4].TargetAssessment; !strings.HasPrefix(got, "Error opening image:") {
		t.Errorf("corrupt image sentinel = %q", got)
	}
	// Sentinel records still carry the full cycle shape.
	if got := len(records[3].Cycles); got != 2 {
		t.Errorf("sentinel record has %d cycles, want 2", got)
	}
	if got := records[3].FinalScore; got != evaluator.NotAvailable {
		t.Errorf("sentinel FinalScore = %q, want %q", got, evaluator.NotAvailable)
	}
}

func TestRun_ChunkedFlush(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	runner := &batch.Runner{
		Eval:      &fakeEval{},
		Source:    &fakeSource{},
		Sink:      sink,
		ChunkSize: 2,
	}

	records := runner.Run(context.Background(), 5)
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	want := []flushCall{
		{first: 1, last: 2, images: []string{"img_0001.png", "img_0002.png"}},
		{first: 3, last: 4, images: []string{"img_0003.png", "img_0004.png"}},
		{first: 5, last: 5, images: []string{"img_0005.png"}},
	}
	if diff := cmp.Diff(want, sink.flushes, cmp.AllowUnexported(flushCall{})); diff != "" {
		t.Errorf("flush calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SingleChunkByDefault(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	runner := &batch.Runner{
		Eval:   &fakeEval{},
		Source: &fakeSource{},
		Sink:   sink,
	}

	runner.Run(context.Background(), 3)
	if len(sink.flushes) != 1 {
		t.Fatalf("expected 1 flush, got %d", len(sink.flushes))
	}
	if f := sink.flushes[0]; f.first != 1 || f.last != 3 {
		t.Errorf("flush bounds = (%d, %d), want (1, 3)", f.first, f.last)
	}
}

func TestRun_StorageFailureDoesNotStopRun(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{failOn: map[int]bool{1: true}}
	eval := &fakeEval{}
	runner := &batch.Runner{
		Eval:      eval,
		Source:    &fakeSource{},
		Sink:      sink,
		ChunkSize: 2,
	}

	records := runner.Run(context.Background(), 4)
	if len(records) != 4 {
		t.Fatalf("expected 4 records despite flush failure, got %d", len(records))
	}
	if len(sink.flushes) != 2 {
		t.Fatalf("expected both chunks flushed, got %d", len(sink.flushes))
	}
	if len(eval.evaluated) != 4 {
		t.Fatalf("expected all 4 images evaluated, got %d", len(eval.evaluated))
	}
}
