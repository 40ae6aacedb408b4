package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mwestergaard/slrpipe/internal/document"
	"github.com/mwestergaard/slrpipe/internal/llm"
)

// Placeholder is persisted when no document summary could be produced.
const Placeholder = "No summary generated."

// Aggregator runs the three-level map-reduce over a document's fragments:
// chunk condensation, section synthesis, document synthesis. Levels are
// strictly ordered; units within a level are independent and may run
// concurrently. A failing unit is logged and excluded from its parent join
// rather than aborting the document.
type Aggregator struct {
	tf            llm.Transformer
	log           *slog.Logger
	maxConcurrent int
}

func New(tf llm.Transformer, log *slog.Logger, maxConcurrent int) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Aggregator{tf: tf, log: log, maxConcurrent: maxConcurrent}
}

// sectionGroup keeps fragment indices for one section title, in fragment
// order. Groups themselves follow first-appearance order.
type sectionGroup struct {
	title   string
	indices []int
}

func groupBySection(fragments []document.Fragment) []sectionGroup {
	var groups []sectionGroup
	byTitle := make(map[string]int)
	for i, frag := range fragments {
		title := frag.Meta.SectionTitle
		gi, ok := byTitle[title]
		if !ok {
			gi = len(groups)
			byTitle[title] = gi
			groups = append(groups, sectionGroup{title: title})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}
	return groups
}

// Aggregate produces the document-level summary artifact. The returned text
// always reflects section first-appearance order and, within a section,
// fragment order: concurrent results are joined by index, never by
// completion time.
func (a *Aggregator) Aggregate(ctx context.Context, fragments []document.Fragment) (string, error) {
	if len(fragments) == 0 {
		return "", fmt.Errorf("no fragments to aggregate")
	}

	mainTitle := fragments[0].Meta.MainTitle
	if mainTitle == "" {
		mainTitle = "Untitled Document"
	}
	groups := groupBySection(fragments)

	chunkSummaries := a.condenseChunks(ctx, fragments)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sectionSummaries := a.synthesizeSections(ctx, groups, chunkSummaries)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var ordered []string
	for _, g := range groups {
		if s, ok := sectionSummaries[g.title]; ok {
			ordered = append(ordered, s)
		}
	}
	if len(ordered) == 0 {
		return "", fmt.Errorf("all section syntheses failed")
	}

	final, err := a.tf.Transform(ctx, llm.TemplateDocumentSummary, map[string]string{
		"main_title": mainTitle,
		"text":       strings.Join(ordered, "\n\n"),
	})
	if err != nil {
		return "", fmt.Errorf("document synthesis: %w", err)
	}
	return final, nil
}

// condenseChunks runs the chunk-level map: every fragment independently,
// bounded concurrency, results slotted by fragment index. Failed units
// leave an empty slot.
func (a *Aggregator) condenseChunks(ctx context.Context, fragments []document.Fragment) []string {
	results := make([]string, len(fragments))
	sem := make(chan struct{}, a.maxConcurrent)
	done := make(chan int, len(fragments))

	for i := range fragments {
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem }()
			out, err := a.tf.Transform(ctx, llm.TemplateChunkSummary, map[string]string{
				"text": fragments[i].Content,
			})
			if err != nil {
				a.log.Warn("chunk condensation failed, excluding unit",
					"section", fragments[i].Meta.SectionTitle, "chunk", i, "error", err)
			} else {
				results[i] = out
			}
			done <- i
		}(i)
	}
	for range fragments {
		<-done
	}
	return results
}

// synthesizeSections runs the section-level reduce: one call per section
// group, each consuming only its own chunk outputs, independent across
// groups. A group with no surviving chunk output or a failed synthesis is
// excluded.
func (a *Aggregator) synthesizeSections(ctx context.Context, groups []sectionGroup, chunkSummaries []string) map[string]string {
	type sectionResult struct {
		title string
		text  string
		ok    bool
	}
	sem := make(chan struct{}, a.maxConcurrent)
	done := make(chan sectionResult, len(groups))

	for _, g := range groups {
		sem <- struct{}{}
		go func(g sectionGroup) {
			defer func() { <-sem }()

			var parts []string
			for _, idx := range g.indices {
				if chunkSummaries[idx] != "" {
					parts = append(parts, chunkSummaries[idx])
				}
			}
			if len(parts) == 0 {
				a.log.Warn("section has no surviving chunk summaries, excluding", "section", g.title)
				done <- sectionResult{title: g.title}
				return
			}

			out, err := a.tf.Transform(ctx, llm.TemplateSectionSummary, map[string]string{
				"section_title": g.title,
				"summaries":     strings.Join(parts, "\n"),
			})
			if err != nil {
				a.log.Warn("section synthesis failed, excluding unit", "section", g.title, "error", err)
				done <- sectionResult{title: g.title}
				return
			}
			done <- sectionResult{title: g.title, text: out, ok: true}
		}(g)
	}

	results := make(map[string]string, len(groups))
	for range groups {
		r := <-done
		if r.ok {
			results[r.title] = r.text
		}
	}
	return results
}
