package report

// Urgency grades how soon a finding needs attention
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Risk thresholds on the 0-100 scale
const (
	HighRiskThreshold     = 70.0
	MediumRiskThreshold   = 30.0
	FollowUpRiskThreshold = 50.0
)

// SpecialistRecommendation is included with every result
const SpecialistRecommendation = "Consult with specialist for detailed evaluation"

// UrgencyFor maps a risk score onto an urgency level
func UrgencyFor(risk float64) Urgency {
	switch {
	case risk > HighRiskThreshold:
		return UrgencyHigh
	case risk > MediumRiskThreshold:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// FollowUpInterval returns how soon the next examination should happen
func FollowUpInterval(risk float64) string {
	if risk > FollowUpRiskThreshold {
		return "2 weeks"
	}
	return "3 months"
}

// ScreeningKind returns whether further screening is immediate or routine
func ScreeningKind(risk float64) string {
	if risk > HighRiskThreshold {
		return "immediate"
	}
	return "routine"
}

// Recommendations returns the follow-up advice for a risk score
func Recommendations(risk float64) []string {
	return []string{
		"Schedule follow-up examination within " + FollowUpInterval(risk),
		"Consider additional " + ScreeningKind(risk) + " screening tests",
		SpecialistRecommendation,
	}
}
