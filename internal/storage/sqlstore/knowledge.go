package sqlstore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/vadiminshakov/nova/internal/domain"
)

// CreateKnowledge stores a knowledge entry. Tags are normalized before storing.
func (s *Store) CreateKnowledge(ctx context.Context, e domain.KnowledgeEntry) (domain.KnowledgeEntry, error) {
	e.Tags = domain.NormalizeTags(e.Tags)
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return domain.KnowledgeEntry{}, domain.DatabaseError("encode knowledge tags", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO knowledge (user_id, source_id, content, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.SourceID, e.Content, string(tags), formatTime(now), formatTime(now))
	if err != nil {
		return domain.KnowledgeEntry{}, domain.DatabaseError("create knowledge", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return domain.KnowledgeEntry{}, domain.DatabaseError("create knowledge", err)
	}

	e.CreatedAt, e.UpdatedAt = now, now
	return e, nil
}

// KnowledgeByTags returns the user's entries sharing at least one tag with tags,
// most recently updated first, without duplicates.
func (s *Store) KnowledgeByTags(ctx context.Context, userID int64, tags []string, limit int) ([]domain.KnowledgeEntry, error) {
	tags = domain.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(tags)+2)
	args = append(args, userID)
	for _, t := range tags {
		args = append(args, t)
	}
	args = append(args, limit)

	query := `
		SELECT k.id, k.user_id, k.source_id, k.content, k.tags, k.created_at, k.updated_at
		FROM knowledge k
		WHERE k.user_id = ? AND EXISTS (
			SELECT 1 FROM json_each(k.tags) t WHERE t.value IN (` + placeholders(len(tags)) + `)
		)
		ORDER BY k.updated_at DESC, k.id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.DatabaseError("get knowledge by tags", err)
	}
	defer rows.Close()

	var entries []domain.KnowledgeEntry
	for rows.Next() {
		var (
			e                domain.KnowledgeEntry
			rawTags          string
			created, updated string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceID, &e.Content, &rawTags, &created, &updated); err != nil {
			return nil, domain.DatabaseError("scan knowledge", err)
		}
		if err := json.Unmarshal([]byte(rawTags), &e.Tags); err != nil {
			return nil, domain.DatabaseError("decode knowledge tags", err)
		}
		e.CreatedAt, e.UpdatedAt = parseTime(created), parseTime(updated)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("iterate knowledge", err)
	}

	return entries, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
