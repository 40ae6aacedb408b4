package structure

import (
	"sort"
	"strings"

	"github.com/mwestergaard/slrpipe/internal/layout"
)

const (
	maxSpanLen        = 100
	maxHeaderWords    = 20
	minFallbackWords  = 5 // largest-font fallback must be a multi-word span
	mainTitleSizeSlop = 1.0
)

// ExtractTitles returns section titles confirmed by both detectors, in
// document order, plus the main document title. Either heuristic alone
// over-triggers: bold short lines catch emphasized body text, the
// partitioner catches stylistic headers. Only their agreement survives.
func ExtractTitles(doc *layout.Document) (titles []string, mainTitle string) {
	candidates := HeaderCandidates(doc.Lines)
	titles = ConfirmTitles(doc.Elements, candidates)
	mainTitle = MainTitle(doc.Lines)
	return titles, mainTitle
}

// HeaderCandidates runs the font/weight heuristic over every line: a line
// is a header candidate when it has at least one bold span and the bold
// text is at most 20 words. The single largest-font multi-word span in the
// document is added as a fallback candidate.
func HeaderCandidates(lines []layout.Line) map[string]bool {
	headers := make(map[string]bool)

	var maxFontText string
	var maxFontSize float64

	for _, line := range lines {
		var lineText strings.Builder
		boldCount := 0

		for _, span := range line.Spans {
			text := strings.TrimSpace(span.Text)
			if text == "" || len(text) > maxSpanLen {
				continue
			}
			if span.Bold {
				boldCount++
				if lineText.Len() > 0 {
					lineText.WriteString(" ")
				}
				lineText.WriteString(text)
			}
			if span.Size > maxFontSize && len(strings.Fields(text)) >= minFallbackWords {
				maxFontSize = span.Size
				maxFontText = text
			}
		}

		candidate := strings.TrimSpace(lineText.String())
		if boldCount > 0 && candidate != "" && len(strings.Fields(candidate)) <= maxHeaderWords {
			headers[candidate] = true
		}
	}

	if maxFontText != "" {
		headers[maxFontText] = true
	}
	return headers
}

// ConfirmTitles filters the partitioner's document-ordered Title elements
// to those also present in the font-heuristic candidate set. The result is
// always a subset of the partitioner output, in partitioner order.
func ConfirmTitles(elements []layout.Element, candidates map[string]bool) []string {
	var confirmed []string
	seen := make(map[string]bool)
	for _, el := range elements {
		if el.Category != layout.CategoryTitle {
			continue
		}
		text := strings.TrimSpace(el.Text)
		if text == "" || seen[text] {
			continue
		}
		if candidates[text] {
			confirmed = append(confirmed, text)
			seen[text] = true
		}
	}
	return confirmed
}

// MainTitle approximates a possibly multi-line document title: among
// first-page spans longer than five characters that are not DOI lines, it
// keeps spans within 1.0pt of the page's maximum font size, sorts them by
// vertical position, and joins their text.
func MainTitle(lines []layout.Line) string {
	type titleSpan struct {
		text string
		y    float64
	}

	var maxSize float64
	for _, line := range lines {
		if line.Page != 1 {
			continue
		}
		for _, span := range line.Spans {
			if eligibleTitleSpan(span) && span.Size > maxSize {
				maxSize = span.Size
			}
		}
	}
	if maxSize == 0 {
		return ""
	}

	var parts []titleSpan
	for _, line := range lines {
		if line.Page != 1 {
			continue
		}
		for _, span := range line.Spans {
			if eligibleTitleSpan(span) && maxSize-span.Size <= mainTitleSizeSlop {
				parts = append(parts, titleSpan{text: strings.TrimSpace(span.Text), y: span.Y})
			}
		}
	}

	// Page coordinates grow upward: larger Y is higher on the page.
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].y > parts[j].y })

	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.text)
	}
	return strings.Join(texts, " ")
}

func eligibleTitleSpan(span layout.Span) bool {
	text := strings.TrimSpace(span.Text)
	return len(text) > 5 && !strings.HasPrefix(strings.ToLower(text), "doi")
}
