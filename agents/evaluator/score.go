/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package evaluator

import (
	"regexp"
	"strconv"
)

// finalScorePattern matches the score statement the final summary prompt
// asks for, e.g. "Final Score: 72" or "Final Score - 72".
var finalScorePattern = regexp.MustCompile(`(?i)Final Score[:\-\s]+(\d+)`)

// ExtractFinalScore pulls the 0-100 score out of free-form summary text.
// Extraction is best-effort: the model is asked for the exact phrasing
// but not forced into structured output.
func ExtractFinalScore(text string) (int, bool) {
	m := finalScorePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return score, true
}
