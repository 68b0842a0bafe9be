/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"

	"github.com/DDDOOONNN/ChatIQA/agents/evaluator"
)

// factorPattern matches the bold key-factor labels the Responder emits
// in its summaries, e.g. "**Sharpness:** the edges are ...".
var factorPattern = regexp.MustCompile(`\*\*(.*?):\*\*`)

// FactorCount pairs a key factor with the number of summaries that
// mention it.
type FactorCount struct {
	Factor string
	Count  int
}

// CountFactors tallies key-factor mentions across summary texts. The
// result is ordered by descending count, ties broken alphabetically.
func CountFactors(texts []string) []FactorCount {
	counts := map[string]int{}
	for _, text := range texts {
		for _, m := range factorPattern.FindAllStringSubmatch(text, -1) {
			counts[m[1]]++
		}
	}
	out := make([]FactorCount, 0, len(counts))
	for factor, count := range counts {
		out = append(out, FactorCount{Factor: factor, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Factor < out[j].Factor
	})
	return out
}

// ReadColumn extracts one column from a previously written results
// workbook, skipping empty and sentinel cells.
func ReadColumn(path, header string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no header row", path)
	}

	col := -1
	for i, h := range rows[0] {
		if h == header {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: no column named %q", path, header)
	}

	var out []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if cell := row[col]; cell != "" && cell != evaluator.NotAvailable {
			out = append(out, cell)
		}
	}
	return out, nil
}

// RenderFactors writes the top-N factor counts as a markdown table.
func RenderFactors(w io.Writer, counts []FactorCount, topN int) error {
	if topN > 0 && len(counts) > topN {
		counts = counts[:topN]
	}
	table := createStandardTable([]string{"Factor", "Count"}, w)
	for _, fc := range counts {
		if err := table.Append([]string{fc.Factor, strconv.Itoa(fc.Count)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// createStandardTable creates a table writer with standard formatting options
// This provides consistent table formatting across all reports
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 80,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
