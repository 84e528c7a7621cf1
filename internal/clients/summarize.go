package clients

import (
	"fmt"
	"strings"
)

const (
	maxInsights       = 10
	maxSummaryExcerpt = 500
)

var insightKeywords = []string{
	"market cap", "technology", "blockchain", "token", "supply", "founder", "launch", "partnership",
}

// Insights returns sentences from the results that mention a key topic.
func Insights(results []SearchResult) []string {
	var insights []string
	for _, r := range results {
		sentences := strings.FieldsFunc(r.Content, func(c rune) bool {
			return c == '.' || c == '!' || c == '?'
		})
		for _, s := range sentences {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			for _, k := range insightKeywords {
				if strings.Contains(s, k) {
					insights = append(insights, s)
					break
				}
			}
		}
	}
	return insights
}

// Summarize condenses search results into a short text.
func Summarize(results []SearchResult) string {
	if len(results) == 0 {
		return "No information found."
	}

	insights := Insights(results)
	if len(insights) == 0 {
		excerpt := []rune(results[0].Content)
		if len(excerpt) > maxSummaryExcerpt {
			excerpt = excerpt[:maxSummaryExcerpt]
		}
		return fmt.Sprintf("Summary from %s: %s", results[0].URL, string(excerpt))
	}

	var sb strings.Builder
	sb.WriteString("Project Insights:\n\n")
	for i, insight := range insights {
		if i == maxInsights {
			break
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, insight))
	}
	return strings.TrimRight(sb.String(), "\n")
}
