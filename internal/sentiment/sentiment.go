// Package sentiment scores text polarity against an AFINN-style word lexicon.
package sentiment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/newslens/internal/registry"
)

// Labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Result is the polarity of one text.
type Result struct {
	Score       float64 `json:"score"`
	Comparative float64 `json:"comparative"`
	Label       string  `json:"label"`
}

// Lexicon maps words to valences in [-5, 5]. Negators flip the sign of the next scored word.
type Lexicon struct {
	Words    map[string]int `yaml:"words"`
	Negators []string       `yaml:"negators"`
}

// ParseLexicon parses lexicon YAML.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	for w, v := range lex.Words {
		if v < -5 || v > 5 {
			return nil, fmt.Errorf("lexicon word %q has valence %d outside [-5, 5]", w, v)
		}
	}
	return &lex, nil
}

// LoadLexicon reads lexicon YAML from disk.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// DefaultLexicon returns the embedded lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(registry.Lexicon())
}

// Scorer computes sentiment for text. It is safe for concurrent use.
type Scorer struct {
	words    map[string]int
	negators map[string]struct{}
}

// NewScorer creates a scorer over a lexicon.
func NewScorer(lex *Lexicon) *Scorer {
	s := &Scorer{
		words:    make(map[string]int, len(lex.Words)),
		negators: make(map[string]struct{}, len(lex.Negators)),
	}
	for w, v := range lex.Words {
		s.words[normalizeToken(w)] = v
	}
	for _, n := range lex.Negators {
		s.negators[normalizeToken(n)] = struct{}{}
	}
	return s
}

// Score sums word valences. A negator flips the next scored word; the
// comparative score is the sum divided by the token count.
func (s *Scorer) Score(text string) Result {
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		if tok := normalizeToken(f); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return Result{Label: LabelNeutral}
	}

	score := 0
	negate := false
	for _, tok := range tokens {
		if _, ok := s.negators[tok]; ok {
			negate = true
			continue
		}
		v, ok := s.words[tok]
		if !ok {
			continue
		}
		if negate {
			v = -v
			negate = false
		}
		score += v
	}

	comparative := float64(score) / float64(len(tokens))
	return Result{
		Score:       float64(score),
		Comparative: comparative,
		Label:       label(comparative),
	}
}

func label(comparative float64) string {
	switch {
	case comparative > 0:
		return LabelPositive
	case comparative < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// normalizeToken keeps letters and apostrophes so contractions like "don't" survive.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || r == '\'' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "'")
}
