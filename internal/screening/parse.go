package screening

import (
	"regexp"
	"strconv"
	"strings"
)

// Result is the structured outcome of screening one document. Unmatched
// fields keep their defaults; the parser never fails.
type Result struct {
	Decision        string            `json:"decision"`
	Confidence      int               `json:"confidence"`
	Rationale       string            `json:"rationale"`
	CriteriaMatches map[string]string `json:"criteria_matches"`
}

var (
	decisionRe   = regexp.MustCompile(`(?i)Decision:\s*(Include|Exclude|Unclear)`)
	confidenceRe = regexp.MustCompile(`(?i)Confidence:\s*(\d)`)
	rationaleRe  = regexp.MustCompile(`(?is)Rationale:\s*(.+)`)
)

// Parse extracts a Result from free-form model output. Labels match
// case-insensitively; the rationale consumes everything after its anchor.
// Missing fields default to Unclear / 0 / "" and missing criteria to "N/A".
func Parse(raw string, criteria []Criterion) Result {
	result := Result{
		Decision:        "Unclear",
		Confidence:      0,
		Rationale:       "",
		CriteriaMatches: make(map[string]string, len(criteria)),
	}

	if m := decisionRe.FindStringSubmatch(raw); m != nil {
		result.Decision = capitalize(m[1])
	}
	if m := confidenceRe.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			result.Confidence = n
		}
	}
	if m := rationaleRe.FindStringSubmatch(raw); m != nil {
		result.Rationale = strings.TrimSpace(m[1])
	}

	for _, crit := range criteria {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(crit.Name) + `:\s*(.+)`)
		if m := re.FindStringSubmatch(raw); m != nil {
			result.CriteriaMatches[crit.Name] = strings.TrimSpace(m[1])
		} else {
			result.CriteriaMatches[crit.Name] = "N/A"
		}
	}
	return result
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
