// Package classify assigns one status per article through an ordered rule cascade.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/newslens/internal/types"
)

// Taxonomy selects which rule cascade a Classifier runs.
type Taxonomy string

const (
	// TaxonomySource classifies into retraction, correction, untruthful-source,
	// biased-source and news-article.
	TaxonomySource Taxonomy = "source"
	// TaxonomyContent classifies into retraction, correction, inciting,
	// misleading, disputed and original.
	TaxonomyContent Taxonomy = "content"
)

// ParseTaxonomy validates a taxonomy name. Empty selects TaxonomySource.
func ParseTaxonomy(s string) (Taxonomy, error) {
	switch Taxonomy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TaxonomySource:
		return TaxonomySource, nil
	case TaxonomyContent:
		return TaxonomyContent, nil
	default:
		return "", &TaxonomyError{Name: s}
	}
}

// Input is what the classifier sees of an article.
type Input struct {
	Text             string // title and description
	Content          string
	Bias             *int
	FactualReporting string
}

// Result is a classification decision with its supporting signals.
type Result struct {
	Status     types.Status `json:"status"`
	Confidence float64      `json:"confidence"`
	Reason     string       `json:"reason"`
	Signals    []string     `json:"signals"`
}

// MinSignalConfidence is the confidence floor applied whenever any rule fired.
const MinSignalConfidence = 0.6

// Classifier evaluates rules in order. The first rule that fires decides the
// status and confidence; every later rule that fires still contributes signals.
type Classifier struct {
	rules         []Rule
	keywords      Keywords
	defaultStatus types.Status
	defaultReason string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithKeywords replaces the phrase lists. Empty lists keep their defaults.
func WithKeywords(kw Keywords) Option {
	return func(c *Classifier) {
		c.keywords = kw.merge(DefaultKeywords())
	}
}

// WithRules replaces the rule cascade.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// New creates a classifier for the given taxonomy.
func New(taxonomy Taxonomy, opts ...Option) *Classifier {
	c := &Classifier{keywords: DefaultKeywords()}
	switch taxonomy {
	case TaxonomyContent:
		c.rules = ContentRules()
		c.defaultStatus = types.StatusOriginal
		c.defaultReason = "Original reporting - no signals detected"
	default:
		c.rules = SourceRules()
		c.defaultStatus = types.StatusNewsArticle
		c.defaultReason = "Standard news article - meets all criteria"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns the no-evidence result.
func (c *Classifier) Default() Result {
	return Result{
		Status:     c.defaultStatus,
		Confidence: 1.0,
		Reason:     c.defaultReason,
		Signals:    []string{},
	}
}

// Classify runs the cascade over one article.
func (c *Classifier) Classify(in Input) Result {
	ev := &Evidence{
		Text:             strings.ToLower(in.Text + " " + in.Content),
		Bias:             in.Bias,
		FactualReporting: in.FactualReporting,
		kw:               c.keywords,
	}

	var (
		winner     *Rule
		confidence float64
		signals    []string
		seen       = make(map[string]struct{})
	)
	for i := range c.rules {
		sigs, conf := c.rules[i].Match(ev)
		if len(sigs) == 0 {
			continue
		}
		if winner == nil {
			winner = &c.rules[i]
			confidence = conf
		}
		for _, s := range sigs {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			signals = append(signals, s)
		}
	}

	if winner == nil {
		return c.Default()
	}

	if confidence < MinSignalConfidence {
		confidence = MinSignalConfidence
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	head := signals
	if len(head) > 2 {
		head = head[:2]
	}
	return Result{
		Status:     winner.Status,
		Confidence: confidence,
		Reason:     "Detected: " + strings.Join(head, "; "),
		Signals:    signals,
	}
}

// LoadKeywords reads phrase lists from a YAML file. Lists missing from the
// file keep their defaults.
func LoadKeywords(path string) (Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("failed to read keywords file: %w", err)
	}
	var kw Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return Keywords{}, fmt.Errorf("failed to parse keywords file: %w", err)
	}
	return kw.merge(DefaultKeywords()), nil
}
