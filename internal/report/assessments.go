package report

import (
	"fmt"
	"strings"
)

// Assessment is a static professional reference card
type Assessment struct {
	Type           string   `json:"type"`
	Findings       string   `json:"findings"`
	Recommendation string   `json:"recommendation"`
	Urgency        Urgency  `json:"urgency"`
	NextSteps      []string `json:"next_steps"`
}

var assessments = []Assessment{
	{
		Type:           "Initial Assessment",
		Findings:       "Abnormal cell patterns detected in region of interest",
		Recommendation: "Further diagnostic imaging recommended",
		Urgency:        UrgencyMedium,
		NextSteps:      []string{"Schedule PET scan", "Blood work analysis", "Tissue sampling"},
	},
	{
		Type:           "Pathology Review",
		Findings:       "Irregular tissue density variations observed",
		Recommendation: "Biopsy required for definitive diagnosis",
		Urgency:        UrgencyHigh,
		NextSteps:      []string{"Surgical consultation", "Molecular testing", "Treatment planning"},
	},
	{
		Type:           "Oncology Consultation",
		Findings:       "Potential malignant characteristics identified",
		Recommendation: "Comprehensive treatment plan needed",
		Urgency:        UrgencyHigh,
		NextSteps:      []string{"Multi-disciplinary review", "Staging assessment", "Treatment options discussion"},
	},
}

// Assessments returns a copy of the reference assessment cards
func Assessments() []Assessment {
	out := make([]Assessment, len(assessments))
	for i, a := range assessments {
		a.NextSteps = append([]string(nil), a.NextSteps...)
		out[i] = a
	}
	return out
}

// AssessmentsMarkdown renders assessment cards as a markdown document
func AssessmentsMarkdown(list []Assessment) string {
	var b strings.Builder
	b.WriteString("## Professional Assessment\n\n")
	for _, a := range list {
		fmt.Fprintf(&b, "### %s\n\n", a.Type)
		fmt.Fprintf(&b, "**%s Priority**\n\n", a.Urgency)
		fmt.Fprintf(&b, "- **Findings:** %s\n", a.Findings)
		fmt.Fprintf(&b, "- **Recommendation:** %s\n\n", a.Recommendation)
		b.WriteString("Next steps:\n\n")
		for _, step := range a.NextSteps {
			fmt.Fprintf(&b, "1. %s\n", step)
		}
		b.WriteString("\n")
	}
	return b.String()
}
