package layout

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Category classifies a partitioned element by its role in the document.
type Category string

const (
	CategoryTitle     Category = "Title"
	CategoryNarrative Category = "NarrativeText"
	CategoryListItem  Category = "ListItem"
	CategoryTable     Category = "Table"
	CategoryText      Category = "Text"
)

// Span is a run of text sharing one font within a line.
type Span struct {
	Text string  `json:"text"`
	Font string  `json:"font"`
	Size float64 `json:"size"`
	Bold bool    `json:"bold"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Line is a physical text line with its styled spans.
type Line struct {
	Spans []Span  `json:"spans"`
	Page  int     `json:"page"`
	Y     float64 `json:"y"`
}

// Text concatenates the span texts of the line.
func (l Line) Text() string {
	var sb strings.Builder
	for i, s := range l.Spans {
		if i > 0 && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(s.Text, " ") {
			sb.WriteString(" ")
		}
		sb.WriteString(s.Text)
	}
	return strings.TrimSpace(sb.String())
}

// Element is a role-classified unit from the structural partitioner.
type Element struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// Document is the raw layout-analysis output for one source document:
// styled lines for the font heuristics and classified elements for the
// structural partitioner signal.
type Document struct {
	SourceID string    `json:"source_id"`
	Lines    []Line    `json:"lines"`
	Elements []Element `json:"elements"`
}

// SupportedExtensions lists file extensions the layout readers can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".json": true,
}

// IsSupportedExtension checks whether a filename can be read into a Document.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Reader converts raw document bytes into a layout Document.
type Reader interface {
	Read(r io.Reader, sourceID string) (*Document, error)
}

// ForFile returns the layout reader for a filename.
func ForFile(filename string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PDFReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	case ".json":
		return &JSONReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}
