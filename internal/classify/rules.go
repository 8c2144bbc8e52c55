package classify

import (
	"fmt"
	"strings"

	"github.com/jonathan/newslens/internal/types"
)

// Evidence is the normalized view of one article that rules inspect.
type Evidence struct {
	Text             string // lower-cased text + content
	Bias             *int
	FactualReporting string

	kw          Keywords
	scored      bool
	misinfo     float64
	misinfoSigs []string
}

// Misinformation returns the soft misinformation score and its signals,
// computing them on first use.
func (e *Evidence) Misinformation() (float64, []string) {
	if !e.scored {
		e.misinfo, e.misinfoSigs = misinformationScore(e.Text, e.kw)
		e.scored = true
	}
	return e.misinfo, e.misinfoSigs
}

// Rule is one step of the priority cascade. Match returns the signals it found
// and the confidence it would assign; no signals means the rule did not fire.
type Rule struct {
	Name   string
	Status types.Status
	Match  func(ev *Evidence) (signals []string, confidence float64)
}

// firstKeyword returns a single signal for the first phrase found in text.
func firstKeyword(text, label string, phrases []string) []string {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return []string{fmt.Sprintf("%s: %q", label, p)}
		}
	}
	return nil
}

// RetractionRule fires on explicit retraction language.
func RetractionRule() Rule {
	return Rule{
		Name:   "explicit-retraction",
		Status: types.StatusRetraction,
		Match: func(ev *Evidence) ([]string, float64) {
			return firstKeyword(ev.Text, "explicit-retraction", ev.kw.Retraction), 0.95
		},
	}
}

// CorrectionRule fires on explicit correction or clarification language.
func CorrectionRule() Rule {
	return Rule{
		Name:   "explicit-correction",
		Status: types.StatusCorrection,
		Match: func(ev *Evidence) ([]string, float64) {
			return firstKeyword(ev.Text, "explicit-correction", ev.kw.Correction), 0.85
		},
	}
}

// UntruthfulSourceRule fires when the source has a MIXED factual reporting rating.
func UntruthfulSourceRule() Rule {
	return Rule{
		Name:   "mixed-factual-reporting",
		Status: types.StatusUntruthfulSource,
		Match: func(ev *Evidence) ([]string, float64) {
			if ev.FactualReporting != types.FactualMixed {
				return nil, 0
			}
			return []string{"mixed-factual-reporting"}, 0.80
		},
	}
}

// BiasedSourceRule fires when the source's bias is at least BiasThreshold from center.
func BiasedSourceRule() Rule {
	return Rule{
		Name:   "biased-source",
		Status: types.StatusBiasedSource,
		Match: func(ev *Evidence) ([]string, float64) {
			if ev.Bias == nil {
				return nil, 0
			}
			b := *ev.Bias
			if b > -types.BiasThreshold && b < types.BiasThreshold {
				return nil, 0
			}
			return []string{fmt.Sprintf("biased-source: %+d", b)}, 0.70
		},
	}
}

// IncitingRule fires on language meant to provoke action.
func IncitingRule() Rule {
	return Rule{
		Name:   "inciting-language",
		Status: types.StatusInciting,
		Match: func(ev *Evidence) ([]string, float64) {
			return firstKeyword(ev.Text, "inciting-language", ev.kw.Inciting), 0.75
		},
	}
}

// MisleadingRule fires when the misinformation score exceeds 0.75.
func MisleadingRule() Rule {
	return Rule{
		Name:   "misleading",
		Status: types.StatusMisleading,
		Match: func(ev *Evidence) ([]string, float64) {
			score, sigs := ev.Misinformation()
			if score <= 0.75 {
				return nil, 0
			}
			return sigs, score
		},
	}
}

// DisputedRule fires when the misinformation score is in [0.55, 0.75] or the
// text carries explicit disputed-claim phrases.
func DisputedRule() Rule {
	return Rule{
		Name:   "disputed",
		Status: types.StatusDisputed,
		Match: func(ev *Evidence) ([]string, float64) {
			score, sigs := ev.Misinformation()
			var out []string
			confidence := 0.6
			if score >= 0.55 && score <= 0.75 {
				out = append(out, sigs...)
				confidence = score
			}
			out = append(out, firstKeyword(ev.Text, "disputed-claim", ev.kw.Disputed)...)
			return out, confidence
		},
	}
}

// SourceRules is the default cascade: editorial retraction and correction
// language first, then source credibility.
func SourceRules() []Rule {
	return []Rule{
		RetractionRule(),
		CorrectionRule(),
		UntruthfulSourceRule(),
		BiasedSourceRule(),
	}
}

// ContentRules is the language-based cascade.
func ContentRules() []Rule {
	return []Rule{
		RetractionRule(),
		CorrectionRule(),
		IncitingRule(),
		MisleadingRule(),
		DisputedRule(),
	}
}

// misinformationScore sums weighted sub-signals, clipped to 1.0.
// Conspiracy language counts at most once.
func misinformationScore(text string, kw Keywords) (float64, []string) {
	var score float64
	var signals []string

	for _, p := range kw.Allegations {
		if strings.Contains(text, p) {
			signals = append(signals, fmt.Sprintf("unsubstantiated: %q", p))
			score += 0.15
		}
	}
	for _, p := range kw.Sensationalism {
		if strings.Contains(text, p) {
			signals = append(signals, fmt.Sprintf("sensationalism: %q", p))
			score += 0.20
		}
	}
	for _, p := range kw.Conspiracy {
		if strings.Contains(text, p) {
			signals = append(signals, fmt.Sprintf("conspiracy-language: %q", p))
			score += 0.25
			break
		}
	}
	for _, p := range kw.FalseExpertise {
		if strings.Contains(text, p) {
			signals = append(signals, fmt.Sprintf("false-expertise: %q", p))
			score += 0.18
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, signals
}
