package generator

import "advisor-ai/internal/retriever"

// Fixed confidence values used by the orchestrator.
const (
	// ConfidenceLearned applies when a human-approved answer is reused.
	ConfidenceLearned = 0.9
	// ConfidenceFailure applies to the apology answer after a generation
	// failure.
	ConfidenceFailure = 0.1
)

const (
	baseConfidence = 0.5

	highBonusMin = 0.2
	highBonusMax = 0.45
	highCap      = 0.95

	lowBase   = 0.55
	lowBonus  = 0.10
	lowCap    = 0.65
	lowWebCap = 0.75

	webOnlyBase       = 0.6
	webOnlyPerSnippet = 0.03
	webOnlyCap        = 0.75

	openDomainConfidence = 0.6

	webBonus  = 0.1
	globalCap = 0.98
)

// ConfidenceInput summarizes the grounding that produced an answer.
type ConfidenceInput struct {
	Tier        retriever.Tier
	MeanScore   float64
	WebUsed     bool
	WebSnippets int
}

// Confidence computes the answer confidence from grounding alone. The rules
// are policy, not ML-derived, and deliberately reproducible: the same
// (tier, mean score, web contribution) always yields the same value.
func Confidence(in ConfidenceInput) float64 {
	webContributed := in.WebUsed && in.WebSnippets > 0

	var conf float64
	switch in.Tier {
	case retriever.TierHigh:
		// Bonus grows linearly with mean relevance, floored at +0.2.
		bonus := highBonusMin + 0.5*(in.MeanScore-0.5)
		if bonus < highBonusMin {
			bonus = highBonusMin
		}
		if bonus > highBonusMax {
			bonus = highBonusMax
		}
		conf = min(highCap, baseConfidence+bonus)
		if webContributed {
			conf = min(globalCap, conf+webBonus)
		}

	case retriever.TierLow:
		scaled := in.MeanScore / 0.15
		if scaled > 1 {
			scaled = 1
		}
		conf = min(lowCap, lowBase+lowBonus*scaled)
		if webContributed {
			conf = min(lowWebCap, conf+webBonus)
		}

	default: // TierNone
		if webContributed {
			n := in.WebSnippets
			if n > 5 {
				n = 5
			}
			conf = min(webOnlyCap, webOnlyBase+webOnlyPerSnippet*float64(n))
		} else {
			conf = openDomainConfidence
		}
	}

	return min(globalCap, conf)
}
