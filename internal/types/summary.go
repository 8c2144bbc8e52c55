package types

// BiasThreshold is the absolute bias score at which a source counts as biased.
const BiasThreshold = 5

// BiasBands counts articles by editorial-bias band.
type BiasBands struct {
	Biased  int `json:"biased"`
	Neutral int `json:"neutral"`
	Unknown int `json:"unknown"`
}

// Summary aggregates counters over the enriched articles of one search.
// The per-status counters always sum to Total.
type Summary struct {
	Total             int `json:"total"`
	Retractions       int `json:"retractions"`
	Corrections       int `json:"corrections"`
	NewsArticles      int `json:"news_articles"`
	BiasedSources     int `json:"biased_sources"`
	UntruthfulSources int `json:"untruthful_sources"`
	Inciting          int `json:"inciting"`
	Disputed          int `json:"disputed"`
	Misleading        int `json:"misleading"`
	Originals         int `json:"originals"`

	Bias     BiasBands      `json:"bias"`
	ByStatus map[Status]int `json:"by_status"`
}

// Add counts one article into the summary.
func (s *Summary) Add(a *EnrichedArticle) {
	s.Total++
	if s.ByStatus == nil {
		s.ByStatus = make(map[Status]int)
	}

	switch a.Status {
	case StatusRetraction:
		s.Retractions++
	case StatusCorrection:
		s.Corrections++
	case StatusBiasedSource:
		s.BiasedSources++
	case StatusUntruthfulSource:
		s.UntruthfulSources++
	case StatusInciting:
		s.Inciting++
	case StatusDisputed:
		s.Disputed++
	case StatusMisleading:
		s.Misleading++
	case StatusOriginal:
		s.Originals++
	default:
		// Unknown statuses are folded into the default bucket so the
		// counters still sum to Total.
		s.NewsArticles++
	}
	s.ByStatus[a.Status]++

	switch {
	case a.BiasUnknown:
		s.Bias.Unknown++
	case a.Bias >= BiasThreshold || a.Bias <= -BiasThreshold:
		s.Bias.Biased++
	default:
		s.Bias.Neutral++
	}
}

// StatusTotal returns the sum of all per-status counters.
func (s *Summary) StatusTotal() int {
	return s.Retractions + s.Corrections + s.NewsArticles + s.BiasedSources +
		s.UntruthfulSources + s.Inciting + s.Disputed + s.Misleading + s.Originals
}

// Summarize builds a summary over a result set.
func Summarize(articles []EnrichedArticle) Summary {
	s := Summary{ByStatus: map[Status]int{}}
	for i := range articles {
		s.Add(&articles[i])
	}
	return s
}
