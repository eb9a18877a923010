package docx

import (
	"strings"

	"github.com/yfarhan/ilmconvert/internal/model"
)

// TableToMarkdown renders one table as deterministic markdown, preserving
// row and column order. A table with no rows or no columns cannot be
// rendered and yields a ContentError so the caller can skip it.
func TableToMarkdown(t Table) (string, error) {
	if len(t.Rows) == 0 {
		return "", &model.ContentError{Item: "table", Reason: "no rows"}
	}

	// Rows may be ragged; pad to the widest row
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return "", &model.ContentError{Item: "table", Reason: "no columns"}
	}

	var b strings.Builder
	for i, row := range t.Rows {
		b.WriteString("|")
		for c := 0; c < width; c++ {
			cell := ""
			if c < len(row) {
				cell = escapeCell(row[c])
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(" |")
		}
		b.WriteString("\n")

		// Separator after the header row
		if i == 0 {
			b.WriteString("|")
			for c := 0; c < width; c++ {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// escapeCell makes cell text safe inside a markdown table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return strings.TrimSpace(s)
}
