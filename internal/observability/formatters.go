// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxTitleLength is the longest article title shown before truncation
	maxTitleLength = 45
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = truncate(line, boxWidth-4)
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// ModelSummary describes one TF-IDF model build.
type ModelSummary struct {
	Documents      int
	VocabularySize int
	Fingerprint    uint64
	Duration       time.Duration
	TopTerms       []string
}

// PrintModelSummary outputs the size and fingerprint of a built model.
func (p *Printer) PrintModelSummary(summary *ModelSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Documents:    %d\n", summary.Documents))
	sb.WriteString(fmt.Sprintf("Vocabulary:   %d terms\n", summary.VocabularySize))
	sb.WriteString(fmt.Sprintf("Fingerprint:  %016x\n", summary.Fingerprint))
	sb.WriteString(fmt.Sprintf("Built in:     %s\n", summary.Duration.Round(time.Microsecond)))

	if len(summary.TopTerms) > 0 {
		sb.WriteString("\nSample terms:\n")
		count := min(len(summary.TopTerms), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(summary.TopTerms[:count], ", ")))
		if len(summary.TopTerms) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.TopTerms)-maxItemsToShow))
		}
	}

	p.printBox("TF-IDF MODEL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the top N recommendations with scores and reasons.
func (p *Printer) PrintRecommendations(userID int64, recs []types.Recommendation) {
	p.printRecommendations(fmt.Sprintf("RECOMMENDATIONS FOR USER %d", userID), recs)
}

// PrintSimilar outputs the articles closest in content to articleID.
func (p *Printer) PrintSimilar(articleID int64, recs []types.Recommendation) {
	p.printRecommendations(fmt.Sprintf("SIMILAR TO ARTICLE %d", articleID), recs)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printRecommendations(title string, recs []types.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title+": none")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total recommendations: %d\n\n", len(recs)))

	count := min(len(recs), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := recs[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, truncate(rec.Article.Title, maxTitleLength)))
		sb.WriteString(fmt.Sprintf("    Score: %.3f  [%s/%s]\n", rec.Score, rec.Article.Category, rec.Article.PoliticalBias))
		sb.WriteString(fmt.Sprintf("    %s\n", rec.Reason))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(recs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more articles", len(recs)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPreferences outputs an exported preference summary.
func (p *Printer) PrintPreferences(userID int64, summary *types.PreferenceSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Categories:\n")
	writeList(&sb, summary.PreferredCategories)
	sb.WriteString("\nBias types:\n")
	writeList(&sb, summary.PreferredBiasTypes)
	sb.WriteString(fmt.Sprintf("\nSerialized profile: %d bytes", len(summary.SerializedProfile)))

	p.printBox(fmt.Sprintf("PREFERENCES FOR USER %d", userID), sb.String())
}

// PrintRefresh outputs a smart refresh result.
func (p *Printer) PrintRefresh(userID int64, result *recommend.RefreshResult) {
	if result == nil {
		return
	}
	if result.Message != "" {
		p.printBox("SMART REFRESH", result.Message)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Liked articles: %d\n", result.TotalLikedArticles))
	sb.WriteString(fmt.Sprintf("Categories:     %s\n", strings.Join(result.BasedOnCategories, ", ")))
	sb.WriteString(fmt.Sprintf("Bias types:     %s", strings.Join(result.BasedOnBiasTypes, ", ")))
	p.printBox("SMART REFRESH", sb.String())

	p.PrintRecommendations(userID, result.Recommendations)
}

func writeList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
	}
}
