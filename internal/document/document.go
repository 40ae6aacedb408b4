package document

// Metadata travels with every fragment through the pipeline.
type Metadata struct {
	SourceID     string `json:"source_id"`
	MainTitle    string `json:"main_title"`
	SectionTitle string `json:"section_title"`
	IsTable      bool   `json:"is_table"`
}

// Fragment is an immutable bounded span of document text. Transformations
// produce new fragments; nothing downstream mutates one in place.
type Fragment struct {
	Content string   `json:"content"`
	Meta    Metadata `json:"metadata"`
}

// TitlePosition is the first exact-line occurrence of a confirmed title
// within the cleaned full text.
type TitlePosition struct {
	Title  string
	Offset int
}

// Section is the text span between one title position and the next.
// Sections are contiguous and exhaustive over the cleaned text.
type Section struct {
	Title string
	Start int
	End   int
	Text  string
}

// ScoredFragment pairs a retrieved fragment with its distance to a query.
// Lower distance means more relevant.
type ScoredFragment struct {
	Fragment Fragment `json:"fragment"`
	Distance float64  `json:"distance"`
}

// FallbackSectionTitle names the synthetic section used when no titles were
// confirmed and the whole document is treated as one section.
const FallbackSectionTitle = "Full Document"

// FrontMatterTitle names the synthetic section covering text before the
// first confirmed title, so sections always partition the cleaned text.
const FrontMatterTitle = "Front Matter"
