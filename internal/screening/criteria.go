package screening

import "fmt"

// Criterion is one screening dimension. The set of criteria is closed: each
// kind carries the retrieval query used to pull supporting text and the
// instruction given to the model when filling evidence-table fields.
type Criterion struct {
	Name        string
	Query       string
	Instruction string
}

var (
	Population = Criterion{
		Name:        "Population",
		Query:       "Study population characteristics: age, diagnosis, sample size, recruitment, inclusion and exclusion criteria.",
		Instruction: "Summarise the participant population, including age range, diagnosis, recruitment method, and any inclusion or exclusion criteria.",
	}
	Intervention = Criterion{
		Name:        "Intervention",
		Query:       "Experimental treatment details: name, dosage, frequency, procedure.",
		Instruction: "Describe only the treatment or intervention given to the experimental group. Do not include control or comparator details.",
	}
	Comparison = Criterion{
		Name:        "Comparison",
		Query:       "Control group or comparator: placebo, standard care, or alternative treatment.",
		Instruction: "Describe only the control or comparator condition used in contrast to the intervention.",
	}
	Outcome = Criterion{
		Name:        "Outcome",
		Query:       "Measured outcomes: primary, secondary, instruments used, timing.",
		Instruction: "List the study's primary and secondary outcomes, and the methods used to measure them if provided.",
	}
	StudyDesign = Criterion{
		Name:        "Study Design",
		Query:       "Study design: RCT, cohort, case-control, cross-sectional, qualitative methods.",
		Instruction: "Identify the study design (e.g., RCT, observational, qualitative), and mention randomization or blinding if described.",
	}
	Timeframe = Criterion{
		Name:        "Timeframe",
		Query:       "Study duration: follow-up period, timing of interventions and outcome assessments.",
		Instruction: "Summarise how long the study lasted, including any follow-up period and timing of data collection.",
	}
	Setting = Criterion{
		Name:        "Setting",
		Query:       "Study setting: location, institution type, clinical or educational context.",
		Instruction: "Describe where the study took place, including country, institution type, and social or clinical setting.",
	}
	Evaluation = Criterion{
		Name:        "Evaluation",
		Query:       "Evaluation methods: tools, rating scales, analysis techniques used to assess intervention or outcomes.",
		Instruction: "Describe how the intervention or outcomes were evaluated, including instruments or analysis methods.",
	}
	Results = Criterion{
		Name:        "Results",
		Query:       "Main study findings: statistical outcomes, effect size, significance, qualitative themes.",
		Instruction: "Summarise the main findings of the study, including statistical results or qualitative themes if reported.",
	}
	Exposure = Criterion{
		Name:        "Exposure",
		Query:       "Exposure of interest: condition, risk factor, or experience relevant to outcome.",
		Instruction: "Describe the exposure, condition, or experience under investigation that relates to the outcome.",
	}
	PhenomenonOfInterest = Criterion{
		Name:        "Phenomenon of Interest",
		Query:       "Phenomenon or experience studied: behaviors, perceptions, conditions, or processes of interest.",
		Instruction: "Summarise the central phenomenon or lived experience being explored or analyzed in the study.",
	}
	Sample = Criterion{
		Name:        "Sample",
		Query:       "Sample description: participant group characteristics, demographics, inclusion criteria.",
		Instruction: "Summarise the characteristics of the participant sample, including demographics and selection criteria.",
	}
	Perspective = Criterion{
		Name:        "Perspective",
		Query:       "Stakeholder or perspective focus: patient, clinician, caregiver, organization viewpoint.",
		Instruction: "Describe whose perspective the study considers, such as patients, providers, or community members.",
	}
	ResearchType = Criterion{
		Name:        "Research Type",
		Query:       "Research type: qualitative, quantitative, or mixed methods approach.",
		Instruction: "Specify the type of research conducted, whether qualitative, quantitative, or mixed methods.",
	}
)

// allCriteria indexes every known criterion by name.
var allCriteria = func() map[string]Criterion {
	list := []Criterion{
		Population, Intervention, Comparison, Outcome, StudyDesign,
		Timeframe, Setting, Evaluation, Results, Exposure,
		PhenomenonOfInterest, Sample, Perspective, ResearchType,
	}
	m := make(map[string]Criterion, len(list))
	for _, c := range list {
		m[c.Name] = c
	}
	return m
}()

// frameworks maps a review framework name to its ordered criteria.
var frameworks = map[string][]Criterion{
	"PICO":   {Population, Intervention, Comparison, Outcome},
	"PICOS":  {Population, Intervention, Comparison, Outcome, StudyDesign},
	"PICOTS": {Population, Intervention, Comparison, Outcome, StudyDesign, Timeframe},
	"SPIDER": {Sample, PhenomenonOfInterest, StudyDesign, Evaluation, ResearchType},
	"PEO":    {Population, Exposure, Outcome},
	"SPICE":  {Setting, Perspective, Intervention, Comparison, Evaluation},
}

// ByName resolves a criterion from its display name.
func ByName(name string) (Criterion, error) {
	c, ok := allCriteria[name]
	if !ok {
		return Criterion{}, fmt.Errorf("unknown criterion: %q", name)
	}
	return c, nil
}

// Framework returns the ordered criteria of a named review framework,
// e.g. "PICO" or "SPIDER".
func Framework(name string) ([]Criterion, error) {
	cs, ok := frameworks[name]
	if !ok {
		return nil, fmt.Errorf("unknown review framework: %q", name)
	}
	return cs, nil
}

// Resolve turns a request's criteria selection into concrete criteria:
// explicit names win over the framework, and a PICO default applies when
// both are empty.
func Resolve(names []string, framework string) ([]Criterion, error) {
	if len(names) > 0 {
		cs := make([]Criterion, 0, len(names))
		for _, name := range names {
			c, err := ByName(name)
			if err != nil {
				return nil, err
			}
			cs = append(cs, c)
		}
		return cs, nil
	}
	if framework != "" {
		return Framework(framework)
	}
	return Framework("PICO")
}
