package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// Template ids understood by the transformation service. Each is bound to a
// model tier: chunk condensation and field extraction run on the light
// model, syntheses on the strong one.
const (
	TemplateChunkSummary    = "chunk_summary"
	TemplateSectionSummary  = "section_summary"
	TemplateDocumentSummary = "document_summary"
	TemplateScreening       = "screening"
	TemplateEvidenceField   = "evidence_field"
)

// Tier selects which model a template runs on.
type Tier int

const (
	TierLight Tier = iota
	TierStrong
)

type promptTemplate struct {
	tier Tier
	tmpl *template.Template
}

const chunkSummaryPrompt = `You are summarising a part of a scientific paper.

Summarisation rules:
- Write 6 plain sentences maximum.
- Ignore references, citations, in-text citation markers, and irrelevant metadata.
- Output plain text, no formatting.

Chunk:

{{.text}}
`

const sectionSummaryPrompt = `You are summarising a section of a scientific paper using pre-summarised chunks.

Summarisation rules:
- Write 3-6 bullet points.
- Focus on the main ideas and key findings.

Formatting rules:
- Output raw HTML only, no Markdown code fences.
- Begin with <h2>{{.section_title}}</h2>
- Then use a <ul> with 3-6 concise <li> points.

Summaries:

{{.summaries}}
`

const documentSummaryPrompt = `You are writing a structured narrative summary of a scientific paper from its section summaries.

Instructions:
- Start with <h1>{{.main_title}}</h1>
- Keep the section order of the summaries below.
- Merge overlapping points; do not repeat boilerplate.
- Output only valid raw HTML, no Markdown code fences.

Section summaries:

{{.text}}
`

const screeningPrompt = `Given the systematic review question and the summary of the document, decide if the document should be included in the systematic review. Use the following criteria to guide your decision: {{.criteria_list}}.

Systematic Review Question:
{{.review_question}}

Summary:
{{.summary}}

Return your answer in the following format:
Decision: [Include / Exclude / Unclear]
Confidence: [1 to 5]
{{.criteria_format}}
Rationale: [brief explanation]
`

const evidenceFieldPrompt = `Study Text:
{{.text}}

Task:
{{.instruction}}

- If the information is clearly described, summarize it concisely in 1-3 sentences.
- If it is not present, return exactly: Not specified.

Answer:
`

var templates = map[string]promptTemplate{
	TemplateChunkSummary:    {tier: TierLight, tmpl: mustParse(TemplateChunkSummary, chunkSummaryPrompt)},
	TemplateSectionSummary:  {tier: TierStrong, tmpl: mustParse(TemplateSectionSummary, sectionSummaryPrompt)},
	TemplateDocumentSummary: {tier: TierStrong, tmpl: mustParse(TemplateDocumentSummary, documentSummaryPrompt)},
	TemplateScreening:       {tier: TierLight, tmpl: mustParse(TemplateScreening, screeningPrompt)},
	TemplateEvidenceField:   {tier: TierLight, tmpl: mustParse(TemplateEvidenceField, evidenceFieldPrompt)},
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=zero").Parse(text))
}

// RenderPrompt fills a registered template with variables.
func RenderPrompt(templateID string, vars map[string]string) (string, Tier, error) {
	pt, ok := templates[templateID]
	if !ok {
		return "", TierLight, fmt.Errorf("unknown prompt template: %s", templateID)
	}
	var sb strings.Builder
	if err := pt.tmpl.Execute(&sb, vars); err != nil {
		return "", pt.tier, fmt.Errorf("render template %s: %w", templateID, err)
	}
	return sb.String(), pt.tier, nil
}
