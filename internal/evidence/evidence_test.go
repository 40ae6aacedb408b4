package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mwestergaard/slrpipe/internal/document"
	"github.com/mwestergaard/slrpipe/internal/llm"
	"github.com/mwestergaard/slrpipe/internal/rank"
	"github.com/mwestergaard/slrpipe/internal/screening"
)

// fakeStore returns fragments per (query-kind, source) and records queries.
type fakeStore struct {
	targeted map[string][]document.ScoredFragment // keyed by criterion query prefix
	fallback []document.ScoredFragment
	err      error
}

func (f *fakeStore) SimilaritySearch(ctx context.Context, query string, k int, filter map[string]string) ([]document.ScoredFragment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if query == "full text" {
		return f.fallback, nil
	}
	for prefix, frags := range f.targeted {
		if strings.HasPrefix(query, prefix) {
			return frags, nil
		}
	}
	return nil, nil
}

type fakeExtractor struct {
	fail   bool
	answer string
	vars   map[string]string
}

func (f *fakeExtractor) Transform(ctx context.Context, templateID string, vars map[string]string) (string, error) {
	if templateID != llm.TemplateEvidenceField {
		return "", fmt.Errorf("unexpected template %s", templateID)
	}
	f.vars = vars
	if f.fail {
		return "", fmt.Errorf("model down")
	}
	return f.answer, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func storedFrag(content, title string) document.ScoredFragment {
	return document.ScoredFragment{
		Fragment: document.Fragment{
			Content: content,
			Meta:    document.Metadata{SourceID: "doc-1", MainTitle: title},
		},
		Distance: 0.2,
	}
}

func TestBuild_FillsCellsFromTargetedRetrieval(t *testing.T) {
	store := &fakeStore{
		targeted: map[string][]document.ScoredFragment{
			"Study population": {storedFrag("Forty adults were recruited.", "A Study")},
		},
		fallback: []document.ScoredFragment{storedFrag("full body", "A Study")},
	}
	tf := &fakeExtractor{answer: "Forty adults, community sample."}
	b := NewBuilder(store, tf, testLogger())

	table, err := b.Build(context.Background(), []string{"doc-1"}, []screening.Criterion{screening.Population})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	if row.Document != "A Study" {
		t.Errorf("expected document label from main title, got %q", row.Document)
	}
	if row.Cells["Population"] != "Forty adults, community sample." {
		t.Errorf("unexpected cell %q", row.Cells["Population"])
	}
	if !strings.Contains(tf.vars["text"], "Forty adults were recruited.") {
		t.Errorf("expected retrieved fragment in prompt text, got %q", tf.vars["text"])
	}
	if tf.vars["instruction"] != screening.Population.Instruction {
		t.Errorf("expected criterion instruction passed through")
	}
}

func TestBuild_FallsBackToFullTextRetrieval(t *testing.T) {
	store := &fakeStore{
		fallback: []document.ScoredFragment{storedFrag("whole document text", "")},
	}
	tf := &fakeExtractor{answer: "Something."}
	b := NewBuilder(store, tf, testLogger())

	table, err := b.Build(context.Background(), []string{"doc-1"}, []screening.Criterion{screening.Outcome})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0].Cells["Outcome"] != "Something." {
		t.Errorf("expected fallback fragments used, got %q", table.Rows[0].Cells["Outcome"])
	}
	if !strings.Contains(tf.vars["text"], "whole document text") {
		t.Errorf("expected fallback text in prompt, got %q", tf.vars["text"])
	}
}

func TestBuild_NothingRetrievableIsNotSpecified(t *testing.T) {
	b := NewBuilder(&fakeStore{}, &fakeExtractor{answer: "should not be called"}, testLogger())

	table, err := b.Build(context.Background(), []string{"doc-1"}, []screening.Criterion{screening.Setting})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Rows[0].Cells["Setting"]; got != NotSpecified {
		t.Errorf("expected %q sentinel, got %q", NotSpecified, got)
	}
}

func TestBuild_ModelFailureIsExtractionFailed(t *testing.T) {
	store := &fakeStore{fallback: []document.ScoredFragment{storedFrag("text", "")}}
	b := NewBuilder(store, &fakeExtractor{fail: true}, testLogger())

	table, err := b.Build(context.Background(), []string{"doc-1"}, []screening.Criterion{screening.Comparison})
	if err != nil {
		t.Fatalf("expected failed cell, not failed table: %v", err)
	}
	if got := table.Rows[0].Cells["Comparison"]; got != ExtractionFailed {
		t.Errorf("expected %q sentinel, got %q", ExtractionFailed, got)
	}
}

func TestBuild_EmptyInputs(t *testing.T) {
	b := NewBuilder(&fakeStore{}, &fakeExtractor{}, testLogger())
	if _, err := b.Build(context.Background(), nil, []screening.Criterion{screening.Population}); err == nil {
		t.Fatal("expected error for no documents")
	}
	if _, err := b.Build(context.Background(), []string{"d"}, nil); err == nil {
		t.Fatal("expected error for no criteria")
	}
}

func TestMarkdown_TableShape(t *testing.T) {
	table := &Table{
		Criteria: []string{"Population", "Outcome"},
		Rows: []Row{{
			DocID:    "doc-1",
			Document: "A Study",
			Cells:    map[string]string{"Population": "Adults", "Outcome": "Pain | score"},
		}},
	}
	md := Markdown(table)
	lines := strings.Split(strings.TrimSpace(md), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "| Document | Population | Outcome |") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], `Pain \| score`) {
		t.Errorf("expected pipe escaped in cell, got %q", lines[2])
	}
}

func TestHTML_RendersTableElement(t *testing.T) {
	table := &Table{
		Criteria: []string{"Population"},
		Rows: []Row{{
			DocID:    "doc-1",
			Document: "A Study",
			Cells:    map[string]string{"Population": "Adults"},
		}},
	}
	html, err := HTML(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "Adults") {
		t.Errorf("expected HTML table output, got %q", html)
	}
}

var _ rank.Searcher = (*fakeStore)(nil)
