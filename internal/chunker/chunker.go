package chunker

import (
	"strings"

	"github.com/mwestergaard/slrpipe/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize int // Target chunk size in tokens.
	Overlap   int // Overlap between consecutive chunks in tokens.
	MinTokens int // Sections below this token count pass through whole.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 800,
		Overlap:   100,
		MinTokens: 500,
	}
}

// Chunker splits sections into token-budgeted fragments.
type Chunker struct {
	tc  TokenCounter
	cfg Config
}

func New(tc TokenCounter, cfg Config) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 800
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = 500
	}
	return &Chunker{tc: tc, cfg: cfg}
}

// ChunkSections turns ordered sections into ordered fragments. A section
// under the minimum token threshold is emitted as a single fragment:
// splitting it further would starve the aggregator of context. Larger
// sections are split with overlap. Every fragment inherits the section's
// metadata; fragments are never mutated after emission.
func (c *Chunker) ChunkSections(sections []document.Section, sourceID, mainTitle string) []document.Fragment {
	var fragments []document.Fragment
	for _, sec := range sections {
		fragments = append(fragments, c.ChunkSection(sec, sourceID, mainTitle)...)
	}
	return fragments
}

// ChunkSection chunks a single section.
func (c *Chunker) ChunkSection(sec document.Section, sourceID, mainTitle string) []document.Fragment {
	text := strings.TrimSpace(sec.Text)
	if text == "" {
		return nil
	}
	meta := document.Metadata{
		SourceID:     sourceID,
		MainTitle:    mainTitle,
		SectionTitle: sec.Title,
		IsTable:      false,
	}

	if c.tc.Count(text) < c.cfg.MinTokens {
		return []document.Fragment{{Content: text, Meta: meta}}
	}

	parts := c.splitText(text)
	fragments := make([]document.Fragment, 0, len(parts))
	for _, part := range parts {
		fragments = append(fragments, document.Fragment{Content: part, Meta: meta})
	}
	return fragments
}

// ChunkFullDocument is the fallback path when no titles were detected: the
// whole cleaned text is chunked under a synthetic section.
func (c *Chunker) ChunkFullDocument(fullText, sourceID, mainTitle string) []document.Fragment {
	return c.ChunkSection(document.Section{
		Title: document.FallbackSectionTitle,
		Start: 0,
		End:   len(fullText),
		Text:  fullText,
	}, sourceID, mainTitle)
}

// splitText breaks text into chunks of approximately ChunkSize tokens,
// overlapping consecutive chunks by Overlap tokens.
func (c *Chunker) splitText(text string) []string {
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if currentTokens > 0 {
			result = append(result, current.String())
		}
	}

	for _, para := range paragraphs {
		paraTokens := c.tc.Count(para)

		// A single oversized paragraph is split by sentences instead.
		if paraTokens > c.cfg.ChunkSize {
			flush()
			current.Reset()
			currentTokens = 0
			result = append(result, c.splitBySentences(para)...)
			continue
		}

		if currentTokens+paraTokens > c.cfg.ChunkSize && currentTokens > 0 {
			result = append(result, current.String())
			overlap := c.overlapText(current.String())
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = c.tc.Count(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	flush()
	return result
}

// splitBySentences breaks an oversized paragraph into sentence-based chunks.
func (c *Chunker) splitBySentences(text string) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := c.tc.Count(sent)

		if currentTokens+sentTokens > c.cfg.ChunkSize && currentTokens > 0 {
			result = append(result, current.String())
			overlap := c.overlapText(current.String())
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = c.tc.Count(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

// overlapText takes words from the end of a chunk until they amount to the
// configured overlap token budget.
func (c *Chunker) overlapText(text string) string {
	if c.cfg.Overlap <= 0 {
		return ""
	}
	words := strings.Fields(text)
	start := len(words)
	for start > 0 {
		candidate := strings.Join(words[start-1:], " ")
		if c.tc.Count(candidate) > c.cfg.Overlap {
			break
		}
		start--
	}
	if start == 0 || start >= len(words) {
		// Overlapping the whole chunk would just duplicate it.
		return ""
	}
	return strings.Join(words[start:], " ")
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}
	return sentences
}
