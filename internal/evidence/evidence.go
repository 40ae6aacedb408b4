// Package evidence builds evidence tables for a set of screened documents:
// one row per document, one cell per criterion, each cell extracted from the
// most relevant fragments of that document.
package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mwestergaard/slrpipe/internal/document"
	"github.com/mwestergaard/slrpipe/internal/llm"
	"github.com/mwestergaard/slrpipe/internal/rank"
	"github.com/mwestergaard/slrpipe/internal/screening"
)

// Cell sentinels. NotSpecified is also what the model is instructed to
// return verbatim when the retrieved text lacks the information.
const (
	NotSpecified     = "Not specified."
	ExtractionFailed = "Extraction failed."
)

// fallbackQuery retrieves a broad sample of a document when a criterion's
// targeted query returns nothing.
const fallbackQuery = "full text"

const defaultFragmentsPerCell = 5

// Row is one document's evidence-table entry. Cells are keyed by criterion
// name.
type Row struct {
	DocID    string            `json:"doc_id"`
	Document string            `json:"document"`
	Cells    map[string]string `json:"cells"`
}

// Table is the complete evidence table, rows in input document order and
// criteria in input criterion order.
type Table struct {
	Criteria []string `json:"criteria"`
	Rows     []Row    `json:"rows"`
}

// Builder assembles evidence tables from the similarity store and the
// light-tier transformation model.
type Builder struct {
	searcher rank.Searcher
	tf       llm.Transformer
	log      *slog.Logger
	perCell  int
}

func NewBuilder(searcher rank.Searcher, tf llm.Transformer, log *slog.Logger) *Builder {
	return &Builder{
		searcher: searcher,
		tf:       tf,
		log:      log,
		perCell:  defaultFragmentsPerCell,
	}
}

// Build produces one row per document id. Documents are processed
// sequentially; a failed cell never aborts the table, it records the
// ExtractionFailed sentinel instead.
func (b *Builder) Build(ctx context.Context, docIDs []string, criteria []screening.Criterion) (*Table, error) {
	if len(docIDs) == 0 {
		return nil, fmt.Errorf("no documents to build evidence table for")
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("no criteria for evidence table")
	}

	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.Name
	}

	table := &Table{Criteria: names}
	for _, docID := range docIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, b.buildRow(ctx, docID, criteria))
	}
	return table, nil
}

func (b *Builder) buildRow(ctx context.Context, docID string, criteria []screening.Criterion) Row {
	row := Row{
		DocID:    docID,
		Document: docID,
		Cells:    make(map[string]string, len(criteria)),
	}
	filter := map[string]string{rank.SourceFilterField: docID}

	fallback, err := b.searcher.SimilaritySearch(ctx, fallbackQuery, 100, filter)
	if err != nil {
		b.log.Warn("fallback retrieval failed", "doc_id", docID, "error", err)
		fallback = nil
	}
	if len(fallback) > 0 {
		title := fallback[0].Fragment.Meta.MainTitle
		if title != "" {
			row.Document = title
		}
	}

	for _, crit := range criteria {
		row.Cells[crit.Name] = b.extractCell(ctx, docID, crit, filter, fallback)
	}
	return row
}

// extractCell retrieves the fragments most relevant to one criterion and
// asks the model to fill the cell. When the targeted query finds nothing
// the whole-document fallback is used; when nothing at all is retrievable
// the cell is NotSpecified without a model call.
func (b *Builder) extractCell(ctx context.Context, docID string, crit screening.Criterion, filter map[string]string, fallback []document.ScoredFragment) string {
	fragments, err := b.searcher.SimilaritySearch(ctx, crit.Query, b.perCell, filter)
	if err != nil {
		b.log.Warn("criterion retrieval failed", "doc_id", docID, "criterion", crit.Name, "error", err)
		fragments = nil
	}
	if len(fragments) == 0 {
		fragments = fallback
	}
	if len(fragments) == 0 {
		return NotSpecified
	}

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, f.Fragment.Content)
	}

	answer, err := b.tf.Transform(ctx, llm.TemplateEvidenceField, map[string]string{
		"text":        strings.Join(parts, "\n\n"),
		"instruction": crit.Instruction,
	})
	if err != nil {
		b.log.Warn("cell extraction failed", "doc_id", docID, "criterion", crit.Name, "error", err)
		return ExtractionFailed
	}
	return strings.TrimSpace(answer)
}
