// Package sqlstore persists users, conversation messages, knowledge entries
// and investment strategies in SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned by UserByName for unknown usernames.
var ErrUserNotFound = errors.New("user not found")

// Store SQLite-backed persistence.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies migrations.
// ":memory:" opens a private in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, domain.DatabaseError("create data directory", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, domain.DatabaseError("open database", err)
	}
	// sqlite allows a single writer; :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, domain.DatabaseError("ping database", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, domain.DatabaseError("migrate database", err)
	}

	logger.Info("database initialized", zap.String("path", path))

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS knowledge (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			source_id TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (user_id, source_id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS strategies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			strategy_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			steps TEXT NOT NULL DEFAULT '[]',
			requirements TEXT NOT NULL DEFAULT '[]',
			expected_returns TEXT NOT NULL DEFAULT '{}',
			author TEXT NOT NULL,
			version TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (user_id, strategy_id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_user ON knowledge(user_id, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_strategies_user ON strategies(user_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// UserByName returns the user with the given username or ErrUserNotFound.
func (s *Store) UserByName(ctx context.Context, username string) (domain.User, error) {
	var (
		u       domain.User
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.DatabaseError("get user", err)
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, username string) (domain.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)`, username, formatTime(now))
	if err != nil {
		return domain.User{}, domain.DatabaseError("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, domain.DatabaseError("create user", err)
	}
	return domain.User{ID: id, Username: username, CreatedAt: now}, nil
}

// EnsureUser returns the existing user or creates it.
func (s *Store) EnsureUser(ctx context.Context, username string) (domain.User, error) {
	u, err := s.UserByName(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return domain.User{}, err
	}

	s.logger.Info("creating user", zap.String("username", username))
	return s.CreateUser(ctx, username)
}

// fixed width keeps lexicographic order equal to chronological order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
