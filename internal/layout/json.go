package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONReader accepts pre-computed layout analysis: a Document serialized as
// JSON, typically produced by an external partitioning service. Missing
// elements are derived from the lines so both detector signals exist.
type JSONReader struct{}

func (p *JSONReader) Read(r io.Reader, sourceID string) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode layout json: %w", err)
	}
	if len(doc.Lines) == 0 && len(doc.Elements) == 0 {
		return nil, fmt.Errorf("layout json has no lines or elements")
	}
	if doc.SourceID == "" {
		doc.SourceID = sourceID
	}
	if len(doc.Elements) == 0 {
		doc.Elements = Partition(doc.Lines)
	}
	return &doc, nil
}
