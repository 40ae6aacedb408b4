package screening

import (
	"context"
	"strings"
	"testing"

	"github.com/mwestergaard/slrpipe/internal/llm"
)

func TestFramework_KnownFrameworks(t *testing.T) {
	cases := []struct {
		name string
		want []string
	}{
		{"PICO", []string{"Population", "Intervention", "Comparison", "Outcome"}},
		{"PICOS", []string{"Population", "Intervention", "Comparison", "Outcome", "Study Design"}},
		{"PEO", []string{"Population", "Exposure", "Outcome"}},
		{"SPICE", []string{"Setting", "Perspective", "Intervention", "Comparison", "Evaluation"}},
	}
	for _, tc := range cases {
		cs, err := Framework(tc.name)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if len(cs) != len(tc.want) {
			t.Fatalf("%s: expected %d criteria, got %d", tc.name, len(tc.want), len(cs))
		}
		for i, c := range cs {
			if c.Name != tc.want[i] {
				t.Errorf("%s[%d]: expected %q, got %q", tc.name, i, tc.want[i], c.Name)
			}
		}
	}
}

func TestFramework_Unknown(t *testing.T) {
	if _, err := Framework("PICNIC"); err == nil {
		t.Fatal("expected error for unknown framework")
	}
}

func TestByName_EveryCriterionHasGuidance(t *testing.T) {
	names := []string{
		"Population", "Intervention", "Comparison", "Outcome", "Study Design",
		"Timeframe", "Setting", "Evaluation", "Results", "Exposure",
		"Phenomenon of Interest", "Sample", "Perspective", "Research Type",
	}
	for _, name := range names {
		c, err := ByName(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if c.Query == "" || c.Instruction == "" {
			t.Errorf("%s: expected non-empty query and instruction", name)
		}
	}
}

func TestResolve_ExplicitNamesWinOverFramework(t *testing.T) {
	cs, err := Resolve([]string{"Outcome", "Setting"}, "PICO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 2 || cs[0].Name != "Outcome" || cs[1].Name != "Setting" {
		t.Errorf("expected explicit criteria kept in order, got %v", cs)
	}
}

func TestResolve_DefaultsToPICO(t *testing.T) {
	cs, err := Resolve(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 4 || cs[0].Name != "Population" {
		t.Errorf("expected PICO default, got %v", cs)
	}
}

func TestResolve_UnknownNameErrors(t *testing.T) {
	if _, err := Resolve([]string{"Vibes"}, ""); err == nil {
		t.Fatal("expected error for unknown criterion name")
	}
}

// promptRecorder captures the rendered screening variables.
type promptRecorder struct {
	vars map[string]string
	out  string
}

func (p *promptRecorder) Transform(ctx context.Context, templateID string, vars map[string]string) (string, error) {
	if templateID != llm.TemplateScreening {
		return "", context.Canceled
	}
	p.vars = vars
	return p.out, nil
}

func TestScreen_BuildsCriteriaVariables(t *testing.T) {
	rec := &promptRecorder{out: "Decision: Include\nConfidence: 5"}
	result, err := Screen(context.Background(), rec, "Does exercise help?", "A summary.", []Criterion{Population, Outcome})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.vars["criteria_list"] != "Population, Outcome" {
		t.Errorf("unexpected criteria_list %q", rec.vars["criteria_list"])
	}
	if !strings.Contains(rec.vars["criteria_format"], "Population: [Matched / Not Matched / N/A]") {
		t.Errorf("unexpected criteria_format %q", rec.vars["criteria_format"])
	}
	if rec.vars["summary"] != "A summary." || rec.vars["review_question"] != "Does exercise help?" {
		t.Errorf("unexpected vars %v", rec.vars)
	}
	if result.Decision != "Include" || result.Confidence != 5 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestScreen_RequiresReviewQuestion(t *testing.T) {
	_, err := Screen(context.Background(), &promptRecorder{}, "   ", "summary", []Criterion{Population})
	if err == nil {
		t.Fatal("expected error for blank review question")
	}
}

func TestScreen_RequiresCriteria(t *testing.T) {
	_, err := Screen(context.Background(), &promptRecorder{}, "question", "summary", nil)
	if err == nil {
		t.Fatal("expected error for empty criteria")
	}
}
