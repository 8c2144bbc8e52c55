// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/newslens/internal/classify"
	"github.com/jonathan/newslens/internal/dedup"
	"github.com/jonathan/newslens/internal/trends"
	"github.com/jonathan/newslens/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads by rune count; %-*s pads by bytes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintSummary outputs the per-status and bias counters of a search.
func (p *Printer) PrintSummary(terms []string, s types.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Terms:    %s\n", strings.Join(terms, ", ")))
	sb.WriteString(fmt.Sprintf("Articles: %d\n\n", s.Total))

	rows := []struct {
		label string
		n     int
	}{
		{"Retractions", s.Retractions},
		{"Corrections", s.Corrections},
		{"News articles", s.NewsArticles},
		{"Biased sources", s.BiasedSources},
		{"Untruthful sources", s.UntruthfulSources},
		{"Inciting", s.Inciting},
		{"Disputed", s.Disputed},
		{"Misleading", s.Misleading},
		{"Original reporting", s.Originals},
	}
	for _, r := range rows {
		if r.n > 0 {
			sb.WriteString(fmt.Sprintf("  %-20s %d\n", r.label, r.n))
		}
	}
	sb.WriteString(fmt.Sprintf("\nBias: %d biased, %d neutral, %d unknown", s.Bias.Biased, s.Bias.Neutral, s.Bias.Unknown))

	p.printBox("SEARCH SUMMARY", sb.String())
}

// PrintArticles outputs the first enriched articles with status, city and bias.
func (p *Printer) PrintArticles(articles []types.EnrichedArticle) {
	if len(articles) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(articles), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := &articles[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, a.Title))
		bias := "unknown"
		if !a.BiasUnknown {
			bias = fmt.Sprintf("%+d", a.Bias)
		}
		sb.WriteString(fmt.Sprintf("    %s (%.2f) | %s | bias %s | %s\n", a.Status, a.StatusConfidence, a.City, bias, a.SentimentLabel))
		if a.StatusReason != "" && len(a.StatusSignals) > 0 {
			sb.WriteString(fmt.Sprintf("    %s\n", a.StatusReason))
		}
	}
	if len(articles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more articles", len(articles)-maxItemsToShow))
	}

	p.printBox("ENRICHED ARTICLES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDedupStats outputs the title overlap distribution.
func (p *Printer) PrintDedupStats(st dedup.Stats) {
	if len(st.OverlapCounts) == 0 {
		return
	}
	content := fmt.Sprintf("Articles: %d\nOverlap:  mean %.2f, min %d, max %d\nBelow threshold: %d",
		len(st.OverlapCounts), st.Mean, st.Min, st.Max, st.BelowThreshold)
	p.printBox("TITLE OVERLAP", content)
}

// PrintMetrics outputs misinformation indicators and the most common signal families.
func (p *Printer) PrintMetrics(m classify.Metrics) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("High-confidence incidents: %d\n", m.HighConfidenceIncidents))
	sb.WriteString(fmt.Sprintf("Potential misinformation:  %d\n", m.PotentialMisinformation))
	sb.WriteString(fmt.Sprintf("Misdirected content:       %d", m.MisdirectedContent))

	ranked := m.RankedSignals()
	if len(ranked) > 0 {
		sb.WriteString("\n\nTop signals:")
		for _, sc := range ranked[:min(len(ranked), 5)] {
			sb.WriteString(fmt.Sprintf("\n  • %s (%d)", sc.Family, sc.Count))
		}
	}
	p.printBox("MISINFORMATION METRICS", sb.String())
}

// PrintTrendReport outputs statistics and phases of one keyword.
func (p *Printer) PrintTrendReport(r *trends.Report) {
	if r == nil {
		return
	}
	st := r.Statistics

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keyword:   %s (%s)\n", r.Keyword, r.Source))
	sb.WriteString(fmt.Sprintf("Peak:      %.0f", st.PeakIntensity))
	if st.PeakDate != nil {
		sb.WriteString(" on " + st.PeakDate.Format("2006-01-02"))
	}
	sb.WriteString("\n")
	if st.TrendDeathDate != nil && st.TimeToDeathDays != nil {
		sb.WriteString(fmt.Sprintf("Died:      %s (%d days)\n", st.TrendDeathDate.Format("2006-01-02"), *st.TimeToDeathDays))
	} else {
		sb.WriteString("Died:      still active\n")
	}
	sb.WriteString(fmt.Sprintf("Lifespan:  %d days, avg intensity %d\n", st.LifespanDays, st.AvgIntensity))

	if len(r.Phases) > 0 {
		sb.WriteString("\nPhases:\n")
		for _, ph := range r.Phases {
			sb.WriteString(fmt.Sprintf("  %-10s %s → %s  %5.1f  (%dd)\n",
				ph.Phase, ph.StartTime.Format("2006-01-02"), ph.EndTime.Format("2006-01-02"), ph.Intensity, ph.DurationDays))
		}
	}
	if len(r.Regions) > 0 {
		sb.WriteString("\nTop regions:\n")
		for _, reg := range r.Regions[:min(len(r.Regions), 5)] {
			sb.WriteString(fmt.Sprintf("  • %s (%.0f)\n", reg.Region, reg.Value))
		}
	}

	p.printBox("TREND ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComparison outputs one line per analyzed keyword.
func (p *Printer) PrintComparison(analyses []trends.Analysis) {
	if len(analyses) == 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %5s %6s %10s\n", "Keyword", "Peak", "Phases", "Death"))
	for _, a := range analyses {
		death := "-"
		if a.TimeToDeathDays != nil {
			death = fmt.Sprintf("%dd", *a.TimeToDeathDays)
		}
		sb.WriteString(fmt.Sprintf("%-24s %5.0f %6d %10s\n", truncate(a.Keyword, 24), a.PeakValue, len(a.Phases), death))
	}
	p.printBox("TREND COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}
