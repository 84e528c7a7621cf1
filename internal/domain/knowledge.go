package domain

import (
	"strings"
	"time"
)

// KnowledgeEntry taggable text snippet used to enrich model prompts.
type KnowledgeEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SourceID  string    `json:"source_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeTags lowercases and trims tags, dropping empty and duplicate values.
// Order of first occurrence is preserved.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
