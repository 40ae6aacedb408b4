package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwestergaard/slrpipe/internal/llm"
)

// Screen classifies one document against the review question. The document
// summary and the criteria are rendered into the screening prompt, the
// light-tier model answers, and the free-form answer is parsed into a
// Result. The review question is mandatory; parsing itself never fails.
func Screen(ctx context.Context, tf llm.Transformer, reviewQuestion, summaryText string, criteria []Criterion) (Result, error) {
	if strings.TrimSpace(reviewQuestion) == "" {
		return Result{}, fmt.Errorf("review question is required for screening")
	}
	if len(criteria) == 0 {
		return Result{}, fmt.Errorf("at least one criterion is required for screening")
	}

	names := make([]string, len(criteria))
	formatLines := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.Name
		formatLines[i] = c.Name + ": [Matched / Not Matched / N/A] [brief summary]"
	}

	raw, err := tf.Transform(ctx, llm.TemplateScreening, map[string]string{
		"review_question": reviewQuestion,
		"summary":         summaryText,
		"criteria_list":   strings.Join(names, ", "),
		"criteria_format": strings.Join(formatLines, "\n"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("screening transform: %w", err)
	}
	return Parse(raw, criteria), nil
}
