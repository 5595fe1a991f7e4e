// Package types defines the core data structures for the hypecycle analysis
// system: evidence records per signal stream, the metrics snapshots computed
// from them, and the lifecycle phase verdicts produced by the rule engine.
package types

// Phase represents one of the five canonical technology adoption lifecycle
// stages, modeled after the Gartner Hype Cycle.
type Phase string

// Lifecycle phase constants, in canonical temporal order.
const (
	// PhaseTechnologyTrigger: a potential breakthrough kicks things off.
	// Early proof-of-concept stories; commercial viability unproven.
	PhaseTechnologyTrigger Phase = "technology_trigger"

	// PhasePeakInflatedExpectations: early publicity produces success
	// stories, often accompanied by scores of failures.
	PhasePeakInflatedExpectations Phase = "peak_inflated_expectations"

	// PhaseTroughDisillusionment: interest wanes as implementations fail
	// to deliver; producers shake out or fail.
	PhaseTroughDisillusionment Phase = "trough_disillusionment"

	// PhaseSlopeEnlightenment: benefits crystallize and second- and
	// third-generation products appear.
	PhaseSlopeEnlightenment Phase = "slope_enlightenment"

	// PhasePlateauProductivity: mainstream adoption takes off; broad
	// market applicability is paying off.
	PhasePlateauProductivity Phase = "plateau_productivity"
)

// CanonicalPhaseOrder is the fixed evaluation and tie-break order for phase
// scoring. When two phases score equally, the one earlier in this order wins.
var CanonicalPhaseOrder = []Phase{
	PhaseTechnologyTrigger,
	PhasePeakInflatedExpectations,
	PhaseTroughDisillusionment,
	PhaseSlopeEnlightenment,
	PhasePlateauProductivity,
}

// IsValidPhase checks if the given value is one of the five canonical phases.
func IsValidPhase(p Phase) bool {
	for _, valid := range CanonicalPhaseOrder {
		if p == valid {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable name for a phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseTechnologyTrigger:
		return "Technology Trigger"
	case PhasePeakInflatedExpectations:
		return "Peak of Inflated Expectations"
	case PhaseTroughDisillusionment:
		return "Trough of Disillusionment"
	case PhaseSlopeEnlightenment:
		return "Slope of Enlightenment"
	case PhasePlateauProductivity:
		return "Plateau of Productivity"
	default:
		return string(p)
	}
}

// Description returns the one-paragraph definition used in reports.
func (p Phase) Description() string {
	switch p {
	case PhaseTechnologyTrigger:
		return "A potential technology breakthrough kicks things off. Early proof-of-concept stories and media interest trigger significant publicity. Often no usable products exist and commercial viability is unproven."
	case PhasePeakInflatedExpectations:
		return "Early publicity produces a number of success stories, often accompanied by scores of failures. Some companies take action; most don't."
	case PhaseTroughDisillusionment:
		return "Interest wanes as experiments and implementations fail to deliver. Producers of the technology shake out or fail. Investment continues only if surviving providers improve their products."
	case PhaseSlopeEnlightenment:
		return "More instances of how the technology can benefit the enterprise start to crystallize and become more widely understood. Second- and third-generation products appear."
	case PhasePlateauProductivity:
		return "Mainstream adoption starts to take off. Criteria for assessing provider viability are more clearly defined. The technology's broad market applicability and relevance are paying off."
	default:
		return ""
	}
}

// Indicators returns the characteristic signals associated with a phase,
// used in report narration.
func (p Phase) Indicators() []string {
	switch p {
	case PhaseTechnologyTrigger:
		return []string{
			"Rapid growth in publication velocity",
			"High percentage of basic science research",
			"Low citation counts (papers too new)",
			"Primarily academic/research venues",
			"Emerging keywords and exploratory language",
		}
	case PhasePeakInflatedExpectations:
		return []string{
			"Peak publication velocity",
			"Accelerating citation growth rate",
			"Mix of basic and applied research",
			"Increasing media coverage from diverse sources",
			"Shift toward applied research and product focus",
		}
	case PhaseTroughDisillusionment:
		return []string{
			"Declining publication velocity",
			"Stagnant or decreasing citation growth",
			"Decline in media mentions",
			"Keywords shift to challenges and limitations",
			"Consolidation among market participants",
		}
	case PhaseSlopeEnlightenment:
		return []string{
			"Gradual increase in publication velocity",
			"Steady, non-explosive citation growth",
			"High percentage of applied research",
			"Focus on practical implementations and case studies",
			"Shift to industry-led activity",
		}
	case PhasePlateauProductivity:
		return []string{
			"Stable publication velocity (plateau)",
			"High citation counts on established work",
			"Predominantly applied research",
			"Focus on incremental improvements and standardization",
			"Consolidated, globally distributed market",
		}
	default:
		return nil
	}
}
