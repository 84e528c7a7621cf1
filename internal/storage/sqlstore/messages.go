package sqlstore

import (
	"context"
	"time"

	"github.com/vadiminshakov/nova/internal/domain"
)

// SaveMessage appends a message to the user's conversation.
func (s *Store) SaveMessage(ctx context.Context, userID int64, role domain.Role, content string) (domain.ChatMessage, error) {
	if !role.Valid() {
		return domain.ChatMessage{}, domain.InvalidInputError("unknown message role %q", role)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(role), content, formatTime(now))
	if err != nil {
		return domain.ChatMessage{}, domain.DatabaseError("save message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.ChatMessage{}, domain.DatabaseError("save message", err)
	}

	return domain.ChatMessage{ID: id, UserID: userID, Role: role, Content: content, CreatedAt: now}, nil
}

// RecentMessages returns the newest limit messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, created_at FROM (
			SELECT id, user_id, role, content, created_at
			FROM messages WHERE user_id = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, userID, limit)
	if err != nil {
		return nil, domain.DatabaseError("get recent messages", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var (
			m       domain.ChatMessage
			role    string
			created string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &role, &m.Content, &created); err != nil {
			return nil, domain.DatabaseError("scan message", err)
		}
		m.Role = domain.Role(role)
		m.CreatedAt = parseTime(created)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("iterate messages", err)
	}

	return messages, nil
}
