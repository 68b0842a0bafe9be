/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package report serializes evaluation records to tabular files and
// renders derived reports over previously written output.
package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DDDOOONNN/ChatIQA/agents/evaluator"
	"github.com/DDDOOONNN/ChatIQA/agents/moderation"
)

const sheetName = "Sheet1"

// XLSXSink writes one chunk of records per workbook, one row per record
// with a fixed column set. Each chunk lands in its own batch-suffixed
// file so partial progress survives a crash mid-run.
type XLSXSink struct {
	// Path is the base output path, e.g. results.xlsx. Chunk files are
	// derived from it: results_batch_1_50.xlsx.
	Path string
	// Cycles fixes the per-cycle column count.
	Cycles int
}

// Flush implements batch.Sink.
func (s *XLSXSink) Flush(records []evaluator.Record, first, last int) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := s.headers()
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locating row %d: %w", i+2, err)
		}
		row := s.row(rec)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row for %s: %w", rec.Image, err)
		}
	}

	path := BatchPath(s.Path, first, last)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving results to %s: %w", path, err)
	}
	return nil
}

// BatchPath derives the chunk filename from the base output path.
func BatchPath(path string, first, last int) string {
	return fmt.Sprintf("%s_batch_%d_%d.xlsx", strings.TrimSuffix(path, ".xlsx"), first, last)
}

func (s *XLSXSink) headers() []string {
	headers := []string{
		"Image",
		"Responder_Assessment_ComparisonIMG",
		"Responder_Assessment_CurrentImage",
	}
	for i := 1; i <= s.Cycles; i++ {
		headers = append(headers,
			fmt.Sprintf("Asker_Question_%d", i),
			fmt.Sprintf("Question_Status_%d", i),
			fmt.Sprintf("Responder_Response_%d", i),
			fmt.Sprintf("Response_Status_%d", i),
		)
	}
	return append(headers, "Final_Summary", "Final_Result", "Final_Score")
}

func (s *XLSXSink) row(rec evaluator.Record) []any {
	row := []any{
		rec.Image,
		rec.ComparisonAssessment,
		rec.TargetAssessment,
	}
	for i := 0; i < s.Cycles; i++ {
		if i < len(rec.Cycles) {
			c := rec.Cycles[i]
			row = append(row, c.Question, statusCell(c.QuestionStatus), c.Answer, statusCell(c.AnswerStatus))
		} else {
			row = append(row, evaluator.NotAvailable, evaluator.NotAvailable, evaluator.NotAvailable, evaluator.NotAvailable)
		}
	}
	return append(row, rec.FinalSummary, rec.FinalResult, rec.FinalScore)
}

// statusCell renders a moderation status, with the explicit sentinel for
// cycles that never reached the Judge.
func statusCell(s moderation.Status) string {
	if s == "" {
		return evaluator.NotAvailable
	}
	return string(s)
}
