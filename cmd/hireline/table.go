package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// stageLabel renders a stage identifier for human eyes: "hired" becomes
// "Hired", "screening" becomes "Screening".
func stageLabel(stage string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(stage), "_", " ")
	if cleaned == "" {
		return ""
	}
	return titleCaser.String(cleaned)
}

// renderTable draws a rounded table with the given header and rows. Columns
// named in numericColumns (1-based) are right-aligned; everything this CLI
// prints is left-aligned text except counts.
func renderTable(headers []string, rows [][]string, numericColumns ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, 0, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells = append(cells, cell)
		}
		tw.AppendRow(cells)
	}

	if len(numericColumns) > 0 {
		configs := make([]table.ColumnConfig, 0, len(numericColumns))
		for _, number := range numericColumns {
			configs = append(configs, table.ColumnConfig{
				Number:      number,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}
