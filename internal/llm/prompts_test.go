package llm

import (
	"strings"
	"testing"
)

func TestRenderPrompt_ChunkSummary(t *testing.T) {
	prompt, tier, err := RenderPrompt(TemplateChunkSummary, map[string]string{"text": "chunk body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != TierLight {
		t.Errorf("expected light tier for chunk condensation, got %v", tier)
	}
	if !strings.Contains(prompt, "chunk body") {
		t.Errorf("expected text substituted, got %q", prompt)
	}
}

func TestRenderPrompt_SectionSummaryIsStrongTier(t *testing.T) {
	prompt, tier, err := RenderPrompt(TemplateSectionSummary, map[string]string{
		"section_title": "Methods",
		"summaries":     "s1\ns2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != TierStrong {
		t.Errorf("expected strong tier for section synthesis, got %v", tier)
	}
	if !strings.Contains(prompt, "<h2>Methods</h2>") {
		t.Errorf("expected section title in heading instruction, got %q", prompt)
	}
}

func TestRenderPrompt_DocumentSummaryIsStrongTier(t *testing.T) {
	prompt, tier, err := RenderPrompt(TemplateDocumentSummary, map[string]string{
		"main_title": "A Study",
		"text":       "section summaries",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != TierStrong {
		t.Errorf("expected strong tier, got %v", tier)
	}
	if !strings.Contains(prompt, "<h1>A Study</h1>") {
		t.Errorf("expected main title substituted, got %q", prompt)
	}
}

func TestRenderPrompt_ScreeningVariables(t *testing.T) {
	prompt, tier, err := RenderPrompt(TemplateScreening, map[string]string{
		"review_question": "Does X help Y?",
		"summary":         "the summary",
		"criteria_list":   "Population, Outcome",
		"criteria_format": "Population: [Matched / Not Matched / N/A] [brief summary]",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != TierLight {
		t.Errorf("expected light tier for screening, got %v", tier)
	}
	for _, want := range []string{"Does X help Y?", "Population, Outcome", "Decision: [Include / Exclude / Unclear]"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected %q in prompt", want)
		}
	}
}

func TestRenderPrompt_UnknownTemplate(t *testing.T) {
	if _, _, err := RenderPrompt("nonexistent", nil); err == nil {
		t.Fatal("expected error for unknown template id")
	}
}

func TestRenderPrompt_MissingVarRendersEmpty(t *testing.T) {
	prompt, _, err := RenderPrompt(TemplateChunkSummary, map[string]string{})
	if err != nil {
		t.Fatalf("expected missing variables to render as empty, got %v", err)
	}
	if strings.Contains(prompt, "{{") {
		t.Errorf("expected no unexpanded placeholders, got %q", prompt)
	}
}

func TestStripCodeBlock(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```html\n<h1>T</h1>\n```", "<h1>T</h1>"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\nplain\n```", "plain"},
		{"no fences here", "no fences here"},
		{"  <p>padded</p>  ", "<p>padded</p>"},
	}
	for _, tc := range cases {
		if got := StripCodeBlock(tc.in); got != tc.want {
			t.Errorf("StripCodeBlock(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
