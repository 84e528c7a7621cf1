// Package promptbuilder assembles the advisor prompt from conversation history,
// stored knowledge and the user query.
package promptbuilder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vadiminshakov/nova/internal/domain"
)

// DefaultMaxKnowledge entries rendered per knowledge section.
const DefaultMaxKnowledge = 2

// PromptBuilder constructs prompts for the LLM.
type PromptBuilder struct {
	maxKnowledge int
}

// NewPromptBuilder creates a new PromptBuilder instance.
func NewPromptBuilder(maxKnowledge int) *PromptBuilder {
	if maxKnowledge <= 0 {
		maxKnowledge = DefaultMaxKnowledge
	}
	return &PromptBuilder{maxKnowledge: maxKnowledge}
}

// Context contains all data needed for prompt building.
type Context struct {
	Query    string
	History  []domain.ChatMessage
	Planning bool

	// Project detected in the query and knowledge tagged with it.
	Project          string
	ProjectKnowledge []domain.KnowledgeEntry

	// Knowledge matched by investment keywords.
	Related []domain.KnowledgeEntry
}

// Build renders sections in a fixed order: persona, planning directive,
// conversation history, retrieved knowledge, user query.
func (pb *PromptBuilder) Build(c Context) string {
	var sb strings.Builder

	if c.Planning {
		sb.WriteString(planningPersona)
		sb.WriteString(planningSteps)
		sb.WriteString("\n")
		sb.WriteString(planningStructure)
	} else {
		sb.WriteString(advisorPersona)
		sb.WriteString(planningSteps)
		sb.WriteString("\n")
	}

	sb.WriteString(formatHistory(c.History))
	sb.WriteString("\n")

	sb.WriteString("CONTEXT INFORMATION:\n")
	if c.Project != "" {
		if k := pb.formatKnowledge(c.ProjectKnowledge); k != "" {
			sb.WriteString(fmt.Sprintf("Research about %s:\n\n%s\n\n", c.Project, k))
		}
	}
	if k := pb.formatKnowledge(c.Related); k != "" {
		sb.WriteString(fmt.Sprintf("Relevant knowledge:\n\n%s\n\n", k))
	}

	sb.WriteString("\n\nUSER QUERY: ")
	sb.WriteString(c.Query)

	return sb.String()
}

func formatHistory(history []domain.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("RECENT CONVERSATION HISTORY:\n")
	for _, m := range history {
		sb.WriteString(fmt.Sprintf("%s:\n%s\n\n", strings.ToUpper(string(m.Role)), m.Content))
	}
	return sb.String()
}

func (pb *PromptBuilder) formatKnowledge(entries []domain.KnowledgeEntry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i == pb.maxKnowledge {
			break
		}
		sb.WriteString(fmt.Sprintf("Knowledge %d: %s\n\n", i+1, e.Content))
	}
	return sb.String()
}

// IsPlanningMode reports whether the message asks for a structured plan.
func IsPlanningMode(message string) bool {
	lower := strings.ToLower(message)
	if !strings.Contains(lower, "plan") {
		return false
	}
	return strings.Contains(lower, "investment") ||
		strings.Contains(lower, "strategy") ||
		strings.Contains(lower, "portfolio")
}

var projectPatterns = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(domain.CryptoProjects))
	for i, p := range domain.CryptoProjects {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return res
}()

// DetectProject returns the first known crypto project mentioned as a whole word.
func DetectProject(message string) (string, bool) {
	lower := strings.ToLower(message)
	for i, re := range projectPatterns {
		if re.MatchString(lower) {
			return domain.CryptoProjects[i], true
		}
	}
	return "", false
}

// Keywords returns every investment keyword contained in the message.
func Keywords(message string) []string {
	lower := strings.ToLower(message)

	var found []string
	for _, k := range domain.InvestmentKeywords {
		if strings.Contains(lower, k) {
			found = append(found, k)
		}
	}
	return found
}
