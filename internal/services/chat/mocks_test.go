package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/vadiminshakov/nova/internal/clients"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/internal/services/pricer"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, numResults int) ([]clients.SearchResult, error) {
	args := m.Called(ctx, query, numResults)
	res, _ := args.Get(0).([]clients.SearchResult)
	return res, args.Error(1)
}

type mockPricer struct {
	mock.Mock
}

func (m *mockPricer) CurrentPrice(ctx context.Context, coinID string) (domain.PriceQuote, error) {
	args := m.Called(ctx, coinID)
	return args.Get(0).(domain.PriceQuote), args.Error(1)
}

func (m *mockPricer) HistoricalPrice(ctx context.Context, coinID, date string) (domain.PriceQuote, error) {
	args := m.Called(ctx, coinID, date)
	return args.Get(0).(domain.PriceQuote), args.Error(1)
}

type fakeCache map[string]pricer.CachedQuote

func (c fakeCache) Cached(coinID string) (pricer.CachedQuote, bool) {
	q, ok := c[coinID]
	return q, ok
}

type fakeJournal struct {
	turns []domain.Turn
	err   error
}

func (j *fakeJournal) Save(turn domain.Turn) (uint64, error) {
	if j.err != nil {
		return 0, j.err
	}
	j.turns = append(j.turns, turn)
	return uint64(len(j.turns)), nil
}

// memStore in-memory Store; failSave makes SaveMessage fail for the given role.
type memStore struct {
	mu         sync.Mutex
	users      map[string]domain.User
	messages   []domain.ChatMessage
	knowledge  []domain.KnowledgeEntry
	strategies []domain.StrategyRecord
	failSave   domain.Role
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]domain.User)}
}

func (s *memStore) EnsureUser(_ context.Context, username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	u := domain.User{ID: int64(len(s.users) + 1), Username: username}
	s.users[username] = u
	return u, nil
}

func (s *memStore) SaveMessage(_ context.Context, userID int64, role domain.Role, content string) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == s.failSave {
		return domain.ChatMessage{}, domain.DatabaseError("save message", context.Canceled)
	}
	m := domain.ChatMessage{ID: int64(len(s.messages) + 1), UserID: userID, Role: role, Content: content}
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *memStore) RecentMessages(_ context.Context, userID int64, limit int) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memStore) CreateKnowledge(_ context.Context, e domain.KnowledgeEntry) (domain.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = int64(len(s.knowledge) + 1)
	e.Tags = domain.NormalizeTags(e.Tags)
	s.knowledge = append(s.knowledge, e)
	return e, nil
}

func (s *memStore) KnowledgeByTags(_ context.Context, userID int64, tags []string, limit int) ([]domain.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.KnowledgeEntry
	for i := len(s.knowledge) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.knowledge[i]
		if e.UserID == userID && sharesTag(e.Tags, tags) {
			out = append(out, e)
		}
	}
	return out, nil
}

func sharesTag(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

func (s *memStore) CreateStrategy(_ context.Context, r domain.StrategyRecord) (domain.StrategyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = int64(len(s.strategies) + 1)
	s.strategies = append(s.strategies, r)
	return r, nil
}

func (s *memStore) Strategies(_ context.Context, userID int64) ([]domain.StrategyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.StrategyRecord
	for i := len(s.strategies) - 1; i >= 0; i-- {
		if s.strategies[i].UserID == userID {
			out = append(out, s.strategies[i])
		}
	}
	return out, nil
}

func (s *memStore) roles() []domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Role, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Role
	}
	return out
}
