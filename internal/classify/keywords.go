package classify

// Keywords holds the phrase lists each rule scans for. Phrases are matched as
// lower-case substrings of the combined text and content.
type Keywords struct {
	Retraction []string `yaml:"retraction"`
	Correction []string `yaml:"correction"`
	Inciting   []string `yaml:"inciting"`
	Disputed   []string `yaml:"disputed"`

	Allegations    []string `yaml:"allegations"`
	Sensationalism []string `yaml:"sensationalism"`
	Conspiracy     []string `yaml:"conspiracy"`
	FalseExpertise []string `yaml:"false_expertise"`
}

// DefaultKeywords returns the built-in phrase lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Retraction: []string{
			"retracted", "retraction", "withdrawn", "withdraw", "disavow",
			"incorrect", "false report", "we apologize", "retract our",
			"retract the", "no longer stands", "proved false",
			"factually inaccurate", "formally retracted", "retracted claim",
			"correction notice",
		},
		Correction: []string{
			"correction", "clarification", "clarify", "update", "updated",
			"amended", "amendment", "errata", "editor's note",
			"previous version", "we regret", "should have said",
			"previously stated", "earlier report", "earlier version",
			"clarifies that", "set the record straight",
		},
		Inciting: []string{
			"urgent action", "call to action", "uprising", "rebellion",
			"extreme", "crisis", "emergency", "must act now",
			"immediate action", "join us now", "rise up",
			"take action immediately", "violence", "attack", "overthrow",
		},
		Disputed: []string{
			"disputed", "controversial", "hotly debated", "debate continues",
			"disagreement", "conflicting reports", "conflicting claims",
			"some say", "others claim", "competing narratives",
		},
		Allegations: []string{
			"allegedly", "unconfirmed", "unverified", "sources say",
			"rumors suggest", "it's believed", "might be", "could be",
			"appears to be",
		},
		Sensationalism: []string{
			"shocking", "exclusive", "breaking: major", "you won't believe",
			"doctors hate", "one simple trick", "this one change",
			"this will shock you", "what happens next",
		},
		Conspiracy: []string{
			"conspiracy", "cover-up", "they don't want you to know",
			"hidden truth", "secret agenda", "deep state", "globalists",
			"new world order", "orchestrated",
		},
		FalseExpertise: []string{
			"experts agree", "scientists confirm", "doctors say",
			"health official reveals", "insider reveals", "leaked",
		},
	}
}

// merge fills empty lists from defaults.
func (k Keywords) merge(defaults Keywords) Keywords {
	fill := func(dst *[]string, src []string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&k.Retraction, defaults.Retraction)
	fill(&k.Correction, defaults.Correction)
	fill(&k.Inciting, defaults.Inciting)
	fill(&k.Disputed, defaults.Disputed)
	fill(&k.Allegations, defaults.Allegations)
	fill(&k.Sensationalism, defaults.Sensationalism)
	fill(&k.Conspiracy, defaults.Conspiracy)
	fill(&k.FalseExpertise, defaults.FalseExpertise)
	return k
}
