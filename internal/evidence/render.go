package evidence

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the table as a GFM pipe table, one document per row.
// Pipe and newline characters inside cells are neutralised so they cannot
// break the table grid.
func Markdown(t *Table) string {
	var sb strings.Builder

	sb.WriteString("| Document |")
	for _, name := range t.Criteria {
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString(" |")
	}
	sb.WriteString("\n|")
	for i := 0; i < len(t.Criteria)+1; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString("| ")
		sb.WriteString(escapeCell(row.Document))
		sb.WriteString(" |")
		for _, name := range t.Criteria {
			sb.WriteString(" ")
			sb.WriteString(escapeCell(row.Cells[name]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML renders the table as an HTML fragment via the Markdown form.
func HTML(t *Table) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(t)), &buf); err != nil {
		return "", fmt.Errorf("render evidence table: %w", err)
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
