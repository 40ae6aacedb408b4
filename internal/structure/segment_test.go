package structure

import (
	"strings"
	"testing"

	"github.com/mwestergaard/slrpipe/internal/document"
	"github.com/mwestergaard/slrpipe/internal/layout"
)

func narrative(text string) layout.Element {
	return layout.Element{Category: layout.CategoryNarrative, Text: text}
}

func title(text string) layout.Element {
	return layout.Element{Category: layout.CategoryTitle, Text: text}
}

func TestCleanText_TruncatesAtBoilerplate(t *testing.T) {
	elements := []layout.Element{
		title("Introduction"),
		narrative("Body text."),
		title("References"),
		narrative("Smith et al. 2020."),
	}
	got := CleanText(elements)
	if strings.Contains(got, "Smith") {
		t.Errorf("expected text after references marker to be dropped, got %q", got)
	}
	if !strings.Contains(got, "Body text.") {
		t.Errorf("expected body text kept, got %q", got)
	}
}

func TestCleanText_MarkerMatchIsWholeLine(t *testing.T) {
	elements := []layout.Element{
		narrative("The references in this paper are extensive."),
		narrative("More content."),
	}
	got := CleanText(elements)
	if !strings.Contains(got, "More content.") {
		t.Errorf("expected marker word inside a sentence not to truncate, got %q", got)
	}
}

func TestCleanText_SkipsTables(t *testing.T) {
	elements := []layout.Element{
		narrative("Before."),
		{Category: layout.CategoryTable, Text: "col1  col2  col3"},
		narrative("After."),
	}
	got := CleanText(elements)
	if strings.Contains(got, "col1") {
		t.Errorf("expected table text excluded, got %q", got)
	}
	if got != "Before.\nAfter." {
		t.Errorf("expected narrative lines joined, got %q", got)
	}
}

func TestLocateTitles_LineEqualityNotSubstring(t *testing.T) {
	fullText := "We describe the Methods used here.\nMethods\nParticipants were recruited."
	positions := LocateTitles(fullText, []string{"Methods"})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	// The standalone line, not the in-sentence mention.
	wantOffset := strings.Index(fullText, "\nMethods\n") + 1
	if positions[0].Offset != wantOffset {
		t.Errorf("expected offset %d, got %d", wantOffset, positions[0].Offset)
	}
}

func TestLocateTitles_RunningCursorSkipsEarlyDuplicates(t *testing.T) {
	// The cursor advances line by line, so the title line found later in the
	// document must not resolve to an identical earlier line.
	fullText := "Results\nFirst occurrence is body-level.\nDiscussion\nResults\nTail."
	positions := LocateTitles(fullText, []string{"Discussion"})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].Offset != strings.Index(fullText, "Discussion") {
		t.Errorf("unexpected offset %d", positions[0].Offset)
	}
}

func TestLocateTitles_EachTitleOnce(t *testing.T) {
	fullText := "Methods\nBody.\nMethods\nMore body."
	positions := LocateTitles(fullText, []string{"Methods"})
	if len(positions) != 1 {
		t.Fatalf("expected first occurrence only, got %d positions", len(positions))
	}
	if positions[0].Offset != 0 {
		t.Errorf("expected offset 0, got %d", positions[0].Offset)
	}
}

func TestSplitSections_ExactPartition(t *testing.T) {
	fullText := "Preamble text.\nIntroduction\nIntro body.\nMethods\nMethods body."
	positions := []document.TitlePosition{
		{Title: "Methods", Offset: strings.Index(fullText, "Methods\nMethods")},
		{Title: "Introduction", Offset: strings.Index(fullText, "Introduction")},
	}

	sections := SplitSections(fullText, positions)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	if sections[0].Title != document.FrontMatterTitle {
		t.Errorf("expected front matter first, got %q", sections[0].Title)
	}
	if sections[1].Title != "Introduction" || sections[2].Title != "Methods" {
		t.Errorf("expected ascending offset order, got %q then %q", sections[1].Title, sections[2].Title)
	}

	// Every character lands in exactly one section.
	var rebuilt strings.Builder
	for i, sec := range sections {
		if sec.Start >= sec.End {
			t.Errorf("section %d has empty range [%d,%d)", i, sec.Start, sec.End)
		}
		if i > 0 && sec.Start != sections[i-1].End {
			t.Errorf("gap or overlap between sections %d and %d", i-1, i)
		}
		rebuilt.WriteString(sec.Text)
	}
	if rebuilt.String() != fullText {
		t.Error("concatenated sections do not reproduce the full text")
	}
	if sections[len(sections)-1].End != len(fullText) {
		t.Error("last section does not reach end of text")
	}
}

func TestSplitSections_NoPositionsFallback(t *testing.T) {
	fullText := "Just a plain document with no detected structure."
	sections := SplitSections(fullText, nil)
	if len(sections) != 1 {
		t.Fatalf("expected single fallback section, got %d", len(sections))
	}
	if sections[0].Title != document.FallbackSectionTitle {
		t.Errorf("expected fallback title %q, got %q", document.FallbackSectionTitle, sections[0].Title)
	}
	if sections[0].Text != fullText {
		t.Error("expected fallback section to carry the whole text")
	}
}

func TestSplitSections_TitleAtStartNoFrontMatter(t *testing.T) {
	fullText := "Introduction\nBody."
	sections := SplitSections(fullText, []document.TitlePosition{{Title: "Introduction", Offset: 0}})
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "Introduction" {
		t.Errorf("expected no synthetic front matter, got %q", sections[0].Title)
	}
}

func TestSplitSections_EmptyText(t *testing.T) {
	if sections := SplitSections("", nil); sections != nil {
		t.Errorf("expected nil for empty text, got %v", sections)
	}
}

func TestSegment_EndToEnd(t *testing.T) {
	elements := []layout.Element{
		title("Introduction"),
		narrative("Intro body."),
		title("Methods"),
		narrative("Methods body."),
		title("References"),
		narrative("Citation list."),
	}
	fullText, sections := Segment(elements, []string{"Introduction", "Methods"})

	if strings.Contains(fullText, "Citation list.") {
		t.Error("expected reference tail truncated")
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "Introduction" || sections[1].Title != "Methods" {
		t.Errorf("unexpected section titles: %q, %q", sections[0].Title, sections[1].Title)
	}
	if !strings.Contains(sections[1].Text, "Methods body.") {
		t.Errorf("expected methods body in its section, got %q", sections[1].Text)
	}
}
