package layout

import "testing"

func textLine(text string) Line {
	return Line{Spans: []Span{{Text: text}}, Page: 1}
}

func TestClassifyLine_Title(t *testing.T) {
	cases := []string{
		"Introduction",
		"Materials and Methods",
		"2.1 Study Design",
		"3. Results",
		"RELATED WORK",
	}
	for _, text := range cases {
		if got := classifyLine(text); got != CategoryTitle {
			t.Errorf("classifyLine(%q) = %q, want Title", text, got)
		}
	}
}

func TestClassifyLine_NotTitle(t *testing.T) {
	cases := map[string]Category{
		"We recruited forty participants from two clinics.": CategoryNarrative,
		"The end.": CategoryText, // terminal punctuation, under 3 words
		"a lowercase start means body text here": CategoryNarrative,
		"Results:": CategoryText, // trailing colon disqualifies a title
	}
	for text, want := range cases {
		if got := classifyLine(text); got != want {
			t.Errorf("classifyLine(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestClassifyLine_ListItems(t *testing.T) {
	cases := []string{
		"- first item in the list",
		"• bulleted entry",
		"(1) numbered entry in parentheses",
		"1) numbered entry with bracket",
	}
	for _, text := range cases {
		if got := classifyLine(text); got != CategoryListItem {
			t.Errorf("classifyLine(%q) = %q, want ListItem", text, got)
		}
	}
}

func TestClassifyLine_NumberedHeadingBeatsListMarker(t *testing.T) {
	// "1. Introduction" matches the list-marker shape but is a heading.
	if got := classifyLine("1. Introduction"); got != CategoryTitle {
		t.Errorf("classifyLine(%q) = %q, want Title", "1. Introduction", got)
	}
}

func TestClassifyLine_TableRow(t *testing.T) {
	row := "Group A    12.4    0.31    45"
	if got := classifyLine(row); got != CategoryTable {
		t.Errorf("classifyLine(%q) = %q, want Table", row, got)
	}
}

func TestPartition_SkipsEmptyLines(t *testing.T) {
	lines := []Line{
		textLine("Introduction"),
		{Spans: []Span{{Text: "   "}}, Page: 1},
		textLine("Body text goes here today."),
	}
	elements := Partition(lines)
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].Category != CategoryTitle || elements[1].Category != CategoryNarrative {
		t.Errorf("unexpected categories: %v, %v", elements[0].Category, elements[1].Category)
	}
}

func TestPartition_PreservesDocumentOrder(t *testing.T) {
	lines := []Line{
		textLine("Methods"),
		textLine("Participants were recruited from clinics."),
		textLine("Results"),
	}
	elements := Partition(lines)
	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}
	if elements[0].Text != "Methods" || elements[2].Text != "Results" {
		t.Errorf("expected input order preserved, got %v", elements)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	for _, name := range []string{"paper.pdf", "review.DOCX", "layout.json"} {
		if !IsSupportedExtension(name) {
			t.Errorf("expected %q supported", name)
		}
	}
	for _, name := range []string{"notes.txt", "slides.pptx", "noext"} {
		if IsSupportedExtension(name) {
			t.Errorf("expected %q unsupported", name)
		}
	}
}

func TestForFile_DispatchesByExtension(t *testing.T) {
	if _, err := ForFile("doc.pdf"); err != nil {
		t.Errorf("unexpected error for pdf: %v", err)
	}
	if _, err := ForFile("doc.docx"); err != nil {
		t.Errorf("unexpected error for docx: %v", err)
	}
	if _, err := ForFile("doc.xyz"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
