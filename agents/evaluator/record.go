/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package evaluator

import "github.com/DDDOOONNN/ChatIQA/agents/moderation"

// NotAvailable marks a step that could not be completed. Record fields
// always carry it explicitly rather than being omitted.
const NotAvailable = "N/A"

// CycleResult is one question/answer round, tagged with its cycle index
// and how each utterance fared against the Judge.
type CycleResult struct {
	Index          int
	Question       string
	QuestionStatus moderation.Status
	Answer         string
	AnswerStatus   moderation.Status
}

// Record is the evaluation outcome for exactly one image. It is mutated
// field-by-field as cycle steps complete and never after it is handed to
// the batch's result collection. The field count is invariant for a given
// cycle count, regardless of the success/failure mix.
type Record struct {
	Image                string
	ComparisonAssessment string
	TargetAssessment     string
	Cycles               []CycleResult
	FinalSummary         string
	FinalResult          string
	FinalScore           string
}

// NewRecord creates a record whose every field holds the NotAvailable
// sentinel, with one padded entry per configured cycle.
func NewRecord(image string, cycles int) *Record {
	r := &Record{
		Image:                image,
		ComparisonAssessment: NotAvailable,
		TargetAssessment:     NotAvailable,
		Cycles:               make([]CycleResult, cycles),
		FinalSummary:         NotAvailable,
		FinalResult:          NotAvailable,
		FinalScore:           NotAvailable,
	}
	for i := range r.Cycles {
		r.Cycles[i] = CycleResult{
			Index:    i + 1,
			Question: NotAvailable,
			Answer:   NotAvailable,
		}
	}
	return r
}
