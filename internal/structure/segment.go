package structure

import (
	"sort"
	"strings"

	"github.com/mwestergaard/slrpipe/internal/document"
	"github.com/mwestergaard/slrpipe/internal/layout"
)

// boilerplateMarkers name trailing sections that are never content-relevant.
// The cleaned text is truncated at the first line equal to any of them.
var boilerplateMarkers = []string{
	"references",
	"bibliography",
	"acknowledgements",
	"acknowledgments",
	"funding",
	"abbreviations",
}

// contentCategories are the element roles whose text makes up the cleaned
// full-text stream.
var contentCategories = map[layout.Category]bool{
	layout.CategoryTitle:     true,
	layout.CategoryNarrative: true,
	layout.CategoryListItem:  true,
	layout.CategoryText:      true,
}

// CleanText joins the content-bearing element texts line by line and cuts
// everything from the first boilerplate marker onward.
func CleanText(elements []layout.Element) string {
	var sb strings.Builder
	for _, el := range elements {
		text := strings.TrimSpace(el.Text)
		if text == "" || !contentCategories[el.Category] {
			continue
		}
		if isBoilerplateMarker(text) {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return strings.TrimSpace(sb.String())
}

func isBoilerplateMarker(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, marker := range boilerplateMarkers {
		if lower == marker {
			return true
		}
	}
	return false
}

// LocateTitles finds each title's first exact-line occurrence in the full
// text. Matching is by line equality, never substring containment, so a
// title mentioned inside body text cannot shadow the real heading. Offsets
// are computed case-insensitively from a running cursor: an early duplicate
// occurrence cannot steal a later title's position.
func LocateTitles(fullText string, titles []string) []document.TitlePosition {
	var positions []document.TitlePosition
	found := make(map[string]bool)
	lowerText := strings.ToLower(fullText)
	lines := strings.Split(fullText, "\n")

	runningIdx := 0
	for _, line := range lines {
		lineClean := strings.TrimSpace(line)
		for _, title := range titles {
			if lineClean != title || found[title] {
				continue
			}
			pos := strings.Index(lowerText[runningIdx:], strings.ToLower(lineClean))
			if pos >= 0 {
				positions = append(positions, document.TitlePosition{
					Title:  title,
					Offset: runningIdx + pos,
				})
				found[title] = true
			}
		}
		runningIdx += len(line) + 1
	}
	return positions
}

// SplitSections partitions the full text into contiguous sections bounded
// by consecutive title offsets. Detection order and appearance order can
// differ, so positions are sorted ascending first. Text before the first
// title becomes a synthetic front-matter section; with no positions at all
// the whole text is one fallback section. Every character lands in exactly
// one section.
func SplitSections(fullText string, positions []document.TitlePosition) []document.Section {
	if fullText == "" {
		return nil
	}
	if len(positions) == 0 {
		return []document.Section{{
			Title: document.FallbackSectionTitle,
			Start: 0,
			End:   len(fullText),
			Text:  fullText,
		}}
	}

	sorted := make([]document.TitlePosition, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var sections []document.Section
	if sorted[0].Offset > 0 {
		sections = append(sections, document.Section{
			Title: document.FrontMatterTitle,
			Start: 0,
			End:   sorted[0].Offset,
			Text:  fullText[:sorted[0].Offset],
		})
	}
	for i, pos := range sorted {
		end := len(fullText)
		if i+1 < len(sorted) {
			end = sorted[i+1].Offset
		}
		sections = append(sections, document.Section{
			Title: pos.Title,
			Start: pos.Offset,
			End:   end,
			Text:  fullText[pos.Offset:end],
		})
	}
	return sections
}

// Segment is the full positional-segmentation pass: clean, locate, split.
func Segment(elements []layout.Element, titles []string) (string, []document.Section) {
	cleaned := CleanText(elements)
	positions := LocateTitles(cleaned, titles)
	return cleaned, SplitSections(cleaned, positions)
}
