package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newslens/internal/types"
)

func intPtr(v int) *int { return &v }

func TestClassify_RetractionBeatsBiasedSource(t *testing.T) {
	c := New(TaxonomySource)

	got := c.Classify(Input{Text: "Journal: vaccine study retracted", Bias: intPtr(12)})

	assert.Equal(t, types.StatusRetraction, got.Status)
	assert.GreaterOrEqual(t, got.Confidence, 0.95)
	assert.Equal(t, []string{`explicit-retraction: "retracted"`, "biased-source: +12"}, got.Signals)
	assert.Equal(t, `Detected: explicit-retraction: "retracted"; biased-source: +12`, got.Reason)
}

func TestClassify_DefaultHasNoSignals(t *testing.T) {
	for _, tax := range []Taxonomy{TaxonomySource, TaxonomyContent} {
		t.Run(string(tax), func(t *testing.T) {
			got := New(tax).Classify(Input{Text: "Local bakery opens new store"})

			assert.Contains(t, []types.Status{types.StatusNewsArticle, types.StatusOriginal}, got.Status)
			assert.Equal(t, 1.0, got.Confidence)
			assert.NotNil(t, got.Signals)
			assert.Empty(t, got.Signals)
		})
	}
}

func TestClassify_SourceCascade(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantStatus types.Status
		wantConf   float64
		wantSignal string
	}{
		{
			name:       "retraction in content only",
			in:         Input{Text: "Vaccine study", Content: "The paper has been retracted by its authors."},
			wantStatus: types.StatusRetraction,
			wantConf:   0.95,
			wantSignal: `explicit-retraction: "retracted"`,
		},
		{
			name:       "correction",
			in:         Input{Text: "Editor's note: an earlier version misstated the date"},
			wantStatus: types.StatusCorrection,
			wantConf:   0.85,
			wantSignal: `explicit-correction: "editor's note"`,
		},
		{
			name:       "mixed factual reporting",
			in:         Input{Text: "Senate passes budget", FactualReporting: types.FactualMixed},
			wantStatus: types.StatusUntruthfulSource,
			wantConf:   0.80,
			wantSignal: "mixed-factual-reporting",
		},
		{
			name:       "left bias at threshold",
			in:         Input{Text: "Senate passes budget", Bias: intPtr(-5)},
			wantStatus: types.StatusBiasedSource,
			wantConf:   0.70,
			wantSignal: "biased-source: -5",
		},
		{
			name:       "mixed beats bias",
			in:         Input{Text: "Senate passes budget", Bias: intPtr(20), FactualReporting: types.FactualMixed},
			wantStatus: types.StatusUntruthfulSource,
			wantConf:   0.80,
			wantSignal: "biased-source: +20",
		},
	}

	c := New(TaxonomySource)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.in)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Contains(t, got.Signals, tt.wantSignal)
		})
	}
}

func TestClassify_BiasBelowThresholdIsDefault(t *testing.T) {
	got := New(TaxonomySource).Classify(Input{Text: "Senate passes budget", Bias: intPtr(4), FactualReporting: types.FactualHigh})
	assert.Equal(t, types.StatusNewsArticle, got.Status)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestClassify_ContentCascade(t *testing.T) {
	c := New(TaxonomyContent)

	t.Run("inciting", func(t *testing.T) {
		got := c.Classify(Input{Text: "Protesters call for uprising downtown"})
		assert.Equal(t, types.StatusInciting, got.Status)
		assert.InDelta(t, 0.75, got.Confidence, 1e-9)
		assert.Contains(t, got.Signals, `inciting-language: "uprising"`)
	})

	t.Run("misleading", func(t *testing.T) {
		got := c.Classify(Input{Text: "Shocking exclusive: you won't believe what doctors hate"})
		assert.Equal(t, types.StatusMisleading, got.Status)
		assert.InDelta(t, 0.80, got.Confidence, 1e-9)
		assert.Len(t, got.Signals, 4)
	})

	t.Run("disputed by score", func(t *testing.T) {
		got := c.Classify(Input{Text: "Allegedly leaked memo shows cover-up"})
		assert.Equal(t, types.StatusDisputed, got.Status)
		assert.InDelta(t, 0.58, got.Confidence, 1e-9)
		assert.Contains(t, got.Signals, `conspiracy-language: "cover-up"`)
	})

	t.Run("disputed by phrase", func(t *testing.T) {
		got := c.Classify(Input{Text: "Hotly debated zoning plan goes to council"})
		assert.Equal(t, types.StatusDisputed, got.Status)
		assert.Equal(t, MinSignalConfidence, got.Confidence)
		assert.Equal(t, []string{`disputed-claim: "hotly debated"`}, got.Signals)
	})

	t.Run("retraction dominates language signals", func(t *testing.T) {
		got := c.Classify(Input{Text: "Shocking claim retracted after uprising rumor"})
		assert.Equal(t, types.StatusRetraction, got.Status)
		assert.GreaterOrEqual(t, got.Confidence, 0.95)
	})

	t.Run("bias is ignored", func(t *testing.T) {
		got := c.Classify(Input{Text: "Senate passes budget", Bias: intPtr(25), FactualReporting: types.FactualMixed})
		assert.Equal(t, types.StatusOriginal, got.Status)
	})
}

func TestMisinformationScore(t *testing.T) {
	kw := DefaultKeywords()

	score, sigs := misinformationScore("conspiracy cover-up deep state orchestrated", kw)
	assert.InDelta(t, 0.25, score, 1e-9, "conspiracy counts once")
	assert.Len(t, sigs, 1)

	score, _ = misinformationScore("shocking exclusive you won't believe doctors hate one simple trick allegedly", kw)
	assert.Equal(t, 1.0, score, "score is clipped")

	score, sigs = misinformationScore("nothing to see", kw)
	assert.Zero(t, score)
	assert.Empty(t, sigs)
}

func TestClassify_CustomRules(t *testing.T) {
	c := New(TaxonomySource, WithRules([]Rule{{
		Name:   "always",
		Status: types.StatusDisputed,
		Match: func(*Evidence) ([]string, float64) {
			return []string{"always"}, 0.1
		},
	}}))

	got := c.Classify(Input{Text: "anything"})
	assert.Equal(t, types.StatusDisputed, got.Status)
	assert.Equal(t, MinSignalConfidence, got.Confidence, "confidence is floored when a signal fired")
}

func TestParseTaxonomy(t *testing.T) {
	tax, err := ParseTaxonomy("")
	require.NoError(t, err)
	assert.Equal(t, TaxonomySource, tax)

	tax, err = ParseTaxonomy(" Content ")
	require.NoError(t, err)
	assert.Equal(t, TaxonomyContent, tax)

	_, err = ParseTaxonomy("both")
	var taxErr *TaxonomyError
	assert.ErrorAs(t, err, &taxErr)
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retraction:\n  - pulled the story\n"), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pulled the story"}, kw.Retraction)
	assert.Equal(t, DefaultKeywords().Correction, kw.Correction)

	c := New(TaxonomySource, WithKeywords(kw))
	got := c.Classify(Input{Text: "Outlet pulled the story overnight"})
	assert.Equal(t, types.StatusRetraction, got.Status)

	_, err = LoadKeywords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestComputeMetrics(t *testing.T) {
	results := []Result{
		{Status: types.StatusRetraction, Confidence: 0.95, Signals: []string{`explicit-retraction: "retracted"`, "biased-source: +12"}},
		{Status: types.StatusBiasedSource, Confidence: 0.70, Signals: []string{"biased-source: -8"}},
		{Status: types.StatusUntruthfulSource, Confidence: 0.80, Signals: []string{"mixed-factual-reporting"}},
		{Status: types.StatusNewsArticle, Confidence: 1.0, Signals: []string{}},
	}

	m := ComputeMetrics(results)

	assert.Equal(t, 1, m.HighConfidenceIncidents)
	assert.Equal(t, 2, m.PotentialMisinformation)
	assert.Equal(t, 1, m.MisdirectedContent)
	assert.Equal(t, 2, m.TopSignals["biased-source"])
	assert.Equal(t, 1, m.TopSignals["explicit-retraction"])

	ranked := m.RankedSignals()
	require.Len(t, ranked, 3)
	assert.Equal(t, SignalCount{Family: "biased-source", Count: 2}, ranked[0])
	assert.Equal(t, "explicit-retraction", ranked[1].Family)
}
