package classify

import (
	"sort"
	"strings"

	"github.com/jonathan/newslens/internal/types"
)

// Metrics aggregates classification results into misinformation indicators.
type Metrics struct {
	HighConfidenceIncidents int            `json:"high_confidence_incidents"`
	PotentialMisinformation int            `json:"potential_misinformation"`
	MisdirectedContent      int            `json:"misdirected_content"`
	TopSignals              map[string]int `json:"top_signals"`
}

var incidentStatuses = map[types.Status]bool{
	types.StatusRetraction:       true,
	types.StatusCorrection:       true,
	types.StatusUntruthfulSource: true,
	types.StatusBiasedSource:     true,
	types.StatusInciting:         true,
	types.StatusMisleading:       true,
}

var misinformationStatuses = map[types.Status]bool{
	types.StatusUntruthfulSource: true,
	types.StatusBiasedSource:     true,
	types.StatusMisleading:       true,
	types.StatusDisputed:         true,
}

// ComputeMetrics counts incidents across results. Signal families are keyed
// by the text before the first colon.
func ComputeMetrics(results []Result) Metrics {
	m := Metrics{TopSignals: make(map[string]int)}
	for _, r := range results {
		if incidentStatuses[r.Status] && r.Confidence > 0.80 {
			m.HighConfidenceIncidents++
		}
		if misinformationStatuses[r.Status] && r.Confidence > 0.60 {
			m.PotentialMisinformation++
		}
		if r.Status == types.StatusRetraction {
			m.MisdirectedContent++
		}
		for _, s := range r.Signals {
			family, _, _ := strings.Cut(s, ":")
			m.TopSignals[family]++
		}
	}
	return m
}

// SignalCount is one entry of a ranked signal family list.
type SignalCount struct {
	Family string `json:"family"`
	Count  int    `json:"count"`
}

// RankedSignals returns signal families ordered by count, then name.
func (m Metrics) RankedSignals() []SignalCount {
	out := make([]SignalCount, 0, len(m.TopSignals))
	for f, n := range m.TopSignals {
		out = append(out, SignalCount{Family: f, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Family < out[j].Family
	})
	return out
}

// ResultFromArticle rebuilds a classification result from an enriched article.
func ResultFromArticle(a *types.EnrichedArticle) Result {
	return Result{
		Status:     a.Status,
		Confidence: a.StatusConfidence,
		Reason:     a.StatusReason,
		Signals:    a.StatusSignals,
	}
}
