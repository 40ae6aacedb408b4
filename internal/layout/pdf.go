package layout

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFReader extracts styled spans and partitioned elements from a PDF.
type PDFReader struct{}

func (p *PDFReader) Read(r io.Reader, sourceID string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "slrpipe-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	lines, err := extractPDFLines(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("extract pdf spans: %w", err)
	}

	return &Document{
		SourceID: sourceID,
		Lines:    lines,
		Elements: Partition(lines),
	}, nil
}

func extractPDFLines(path string) ([]Line, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		lines = append(lines, groupPageLines(content.Text, i)...)
	}
	return lines, nil
}

// groupPageLines buckets positioned glyph runs into lines by vertical
// position, then merges same-font runs into spans.
func groupPageLines(texts []pdflib.Text, pageNum int) []Line {
	byRow := make(map[int][]pdflib.Text)
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		row := int(math.Round(t.Y))
		byRow[row] = append(byRow[row], t)
	}

	rows := make([]int, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}
	// PDF Y grows upward, so larger Y comes first on the page.
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))

	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		runs := byRow[row]
		sort.Slice(runs, func(a, b int) bool { return runs[a].X < runs[b].X })

		line := Line{Page: pageNum, Y: float64(row)}
		var cur *Span
		for _, t := range runs {
			if cur != nil && cur.Font == t.Font && cur.Size == t.FontSize {
				cur.Text += t.S
				continue
			}
			line.Spans = append(line.Spans, Span{
				Text: t.S,
				Font: t.Font,
				Size: t.FontSize,
				Bold: isBoldFont(t.Font),
				X:    t.X,
				Y:    float64(row),
			})
			cur = &line.Spans[len(line.Spans)-1]
		}
		for i := range line.Spans {
			line.Spans[i].Text = strings.TrimSpace(line.Spans[i].Text)
		}
		if line.Text() != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isBoldFont(font string) bool {
	return strings.Contains(font, "Bold") ||
		strings.Contains(font, "bold") ||
		strings.HasSuffix(font, ".B") ||
		strings.Contains(font, "BD")
}
