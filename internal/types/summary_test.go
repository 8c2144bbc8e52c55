//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_CountsSumToTotal(t *testing.T) {
	articles := []EnrichedArticle{
		{Status: StatusRetraction, Bias: 0},
		{Status: StatusCorrection, Bias: 12},
		{Status: StatusNewsArticle, BiasUnknown: true},
		{Status: StatusBiasedSource, Bias: -7},
		{Status: StatusUntruthfulSource, Bias: 4},
		{Status: StatusInciting, Bias: 5},
		{Status: StatusOriginal, Bias: -4},
		{Status: "something-else", BiasUnknown: true},
	}

	s := Summarize(articles)

	assert.Equal(t, len(articles), s.Total)
	assert.Equal(t, s.Total, s.StatusTotal())
	assert.Equal(t, 1, s.Retractions)
	assert.Equal(t, 1, s.Corrections)
	assert.Equal(t, 2, s.NewsArticles, "unknown statuses fold into news articles")
	assert.Equal(t, 1, s.BiasedSources)
	assert.Equal(t, 1, s.UntruthfulSources)
	assert.Equal(t, 1, s.Inciting)
	assert.Equal(t, 1, s.Originals)

	assert.Equal(t, 3, s.Bias.Biased)
	assert.Equal(t, 3, s.Bias.Neutral)
	assert.Equal(t, 2, s.Bias.Unknown)
	assert.Equal(t, s.Total, s.Bias.Biased+s.Bias.Neutral+s.Bias.Unknown)

	assert.Equal(t, 1, s.ByStatus[StatusRetraction])
	assert.Equal(t, 1, s.ByStatus["something-else"])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.StatusTotal())
	assert.NotNil(t, s.ByStatus)
}

func TestEnrichedArticle_BiasPtr(t *testing.T) {
	known := EnrichedArticle{Bias: -12}
	require.NotNil(t, known.BiasPtr())
	assert.Equal(t, -12, *known.BiasPtr())

	unknown := EnrichedArticle{BiasUnknown: true}
	assert.Nil(t, unknown.BiasPtr())
}

func TestEnrichedArticle_JSONFlattensRawArticle(t *testing.T) {
	a := EnrichedArticle{
		RawArticle: RawArticle{Title: "Storm hits coast", Link: "https://example.com/a"},
		ID:         "abc",
		Status:     StatusNewsArticle,
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Storm hits coast", m["title"])
	assert.Equal(t, "news-article", m["status"])
	assert.NotContains(t, m, "RawArticle")
}
