// Package dedup drops off-topic articles by lexical overlap with the combined title vocabulary.
package dedup

import (
	"log"
	"strings"
	"unicode"

	"github.com/jonathan/newslens/internal/types"
)

// MinTokenLength is the shortest token kept by Tokenize.
const MinTokenLength = 3

// Tokenize lowercases text, splits on whitespace, strips non-alphanumerics from
// each word and drops words shorter than MinTokenLength.
func Tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var sb strings.Builder
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				sb.WriteRune(r)
			}
		}
		token := sb.String()
		if len([]rune(token)) < MinTokenLength {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// Vocabulary returns the union of title tokens across articles.
func Vocabulary(articles []types.RawArticle) map[string]struct{} {
	vocab := make(map[string]struct{})
	for i := range articles {
		for tok := range Tokenize(articles[i].Title) {
			vocab[tok] = struct{}{}
		}
	}
	return vocab
}

func overlap(tokens, vocab map[string]struct{}) int {
	n := 0
	for tok := range tokens {
		if _, ok := vocab[tok]; ok {
			n++
		}
	}
	return n
}

// Filter keeps articles whose title shares at least minOverlap tokens with the
// vocabulary of all titles. minOverlap below 1 is treated as 1. An empty
// vocabulary returns the input unchanged.
func Filter(articles []types.RawArticle, minOverlap int) []types.RawArticle {
	if len(articles) == 0 {
		return articles
	}
	if minOverlap < 1 {
		minOverlap = 1
	}

	vocab := Vocabulary(articles)
	if len(vocab) == 0 {
		return articles
	}

	kept := make([]types.RawArticle, 0, len(articles))
	var removed []string
	for _, a := range articles {
		if overlap(Tokenize(a.Title), vocab) >= minOverlap {
			kept = append(kept, a)
			continue
		}
		removed = append(removed, a.Title)
	}

	log.Printf("[dedup] input=%d vocabulary=%d kept=%d removed=%d (min overlap %d)",
		len(articles), len(vocab), len(kept), len(removed), minOverlap)
	if len(removed) > 0 {
		if len(removed) > 3 {
			removed = removed[:3]
		}
		log.Printf("[dedup] example removed: %s", strings.Join(removed, " | "))
	}

	return kept
}

// Stats describes the overlap distribution that Filter acts on.
type Stats struct {
	OverlapCounts  []int   `json:"overlap_counts"`
	Mean           float64 `json:"mean"`
	Min            int     `json:"min"`
	Max            int     `json:"max"`
	BelowThreshold int     `json:"below_threshold"`
}

// ComputeStats returns per-article overlap counts against the title vocabulary.
func ComputeStats(articles []types.RawArticle, minOverlap int) Stats {
	vocab := Vocabulary(articles)
	if len(articles) == 0 || len(vocab) == 0 {
		return Stats{OverlapCounts: []int{}}
	}

	st := Stats{OverlapCounts: make([]int, len(articles))}
	sum := 0
	for i, a := range articles {
		c := overlap(Tokenize(a.Title), vocab)
		st.OverlapCounts[i] = c
		sum += c
		if c < minOverlap {
			st.BelowThreshold++
		}
		if i == 0 || c < st.Min {
			st.Min = c
		}
		if c > st.Max {
			st.Max = c
		}
	}
	st.Mean = float64(sum) / float64(len(articles))
	return st
}

// ReconcileTitles removes articles whose case-folded, trimmed title was already
// seen, keeping the first occurrence. Empty titles are never merged.
func ReconcileTitles(articles []types.RawArticle) []types.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]types.RawArticle, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(strings.TrimSpace(a.Title))
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}
