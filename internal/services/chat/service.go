// Package chat implements the conversation orchestrator: it classifies each
// message, answers price questions, stores strategies and otherwise asks the
// language model, persisting both sides of every turn.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/clients"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/internal/services/pricer"
	"github.com/vadiminshakov/nova/internal/services/pricereport"
	"github.com/vadiminshakov/nova/internal/services/promptbuilder"
	"github.com/vadiminshakov/nova/internal/services/router"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultHistoryLimit  = 10
	DefaultSearchResults = 3
)

// Store persistence collaborator.
type Store interface {
	EnsureUser(ctx context.Context, username string) (domain.User, error)
	SaveMessage(ctx context.Context, userID int64, role domain.Role, content string) (domain.ChatMessage, error)
	RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.ChatMessage, error)
	CreateKnowledge(ctx context.Context, e domain.KnowledgeEntry) (domain.KnowledgeEntry, error)
	KnowledgeByTags(ctx context.Context, userID int64, tags []string, limit int) ([]domain.KnowledgeEntry, error)
	CreateStrategy(ctx context.Context, r domain.StrategyRecord) (domain.StrategyRecord, error)
	Strategies(ctx context.Context, userID int64) ([]domain.StrategyRecord, error)
}

// Journal records completed turns.
type Journal interface {
	Save(turn domain.Turn) (uint64, error)
}

// QuoteCache last good quotes, consulted when the price source fails.
type QuoteCache interface {
	Cached(coinID string) (pricer.CachedQuote, bool)
}

// Deps collaborators of the Service. Cache and Journal are optional.
type Deps struct {
	Store   Store
	LLM     clients.LLMClient
	Search  clients.Searcher
	Prices  pricer.Pricer
	Cache   QuoteCache
	Journal Journal
}

// Options tunes the Service.
type Options struct {
	HistoryLimit   int
	KnowledgeLimit int
	SearchResults  int
	// Research enables a search call for projects without stored knowledge.
	Research bool
	// Bands overrides the default support/resistance multipliers.
	Bands *pricereport.Policy
}

// Service chat orchestrator shared by all users.
type Service struct {
	store   Store
	llm     clients.LLMClient
	search  clients.Searcher
	prices  pricer.Pricer
	cache   QuoteCache
	journal Journal

	router  *router.Router
	prompts *promptbuilder.PromptBuilder
	policy  pricereport.Policy
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	users  map[string]domain.User
	lookup singleflight.Group
}

// NewService creates the orchestrator.
func NewService(deps Deps, opts Options, logger *zap.Logger) (*Service, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("chat: store is required")
	case deps.LLM == nil:
		return nil, errors.New("chat: LLM client is required")
	case deps.Prices == nil:
		return nil, errors.New("chat: pricer is required")
	case deps.Search == nil:
		return nil, errors.New("chat: search client is required")
	}

	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.KnowledgeLimit <= 0 {
		opts.KnowledgeLimit = promptbuilder.DefaultMaxKnowledge
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = DefaultSearchResults
	}
	policy := pricereport.DefaultPolicy()
	if opts.Bands != nil {
		policy = *opts.Bands
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:   deps.Store,
		llm:     deps.LLM,
		search:  deps.Search,
		prices:  deps.Prices,
		cache:   deps.Cache,
		journal: deps.Journal,
		router:  router.New(),
		prompts: promptbuilder.NewPromptBuilder(opts.KnowledgeLimit),
		policy:  policy,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		users:   make(map[string]domain.User),
	}, nil
}

// Agent returns a conversation handle bound to username.
func (s *Service) Agent(ctx context.Context, username string) (*Agent, error) {
	u, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}
	return &Agent{svc: s, user: u}, nil
}

// ProcessMessage answers one message from username.
func (s *Service) ProcessMessage(ctx context.Context, username, message string) (string, error) {
	u, err := s.user(ctx, username)
	if err != nil {
		return "", err
	}
	return s.process(ctx, u, message)
}

func (s *Service) user(ctx context.Context, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.InvalidInputError("username is required")
	}

	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if ok {
		return u, nil
	}

	// concurrent first messages of one user share a single store round-trip
	v, err, _ := s.lookup.Do(username, func() (any, error) {
		u, err := s.store.EnsureUser(ctx, username)
		if err != nil {
			return domain.User{}, err
		}
		s.mu.Lock()
		s.users[username] = u
		s.mu.Unlock()
		return u, nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return v.(domain.User), nil
}

type state string

const (
	stateClassifying       state = "classifying"
	stateResolvingPrice    state = "resolving_price"
	stateExtractStrategy   state = "extracting_strategy"
	stateAssemblingContext state = "assembling_context"
	statePersisting        state = "persisting"
	stateIdle              state = "idle"
)

// tracker logs state transitions of one turn.
type tracker struct {
	logger *zap.Logger
	user   string
	cur    state
}

func (t *tracker) enter(to state) {
	t.logger.Debug("turn state",
		zap.String("user", t.user),
		zap.String("from", string(t.cur)),
		zap.String("to", string(to)),
	)
	t.cur = to
}

func (s *Service) process(ctx context.Context, u domain.User, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.InvalidInputError("message is empty")
	}

	if _, err := s.store.SaveMessage(ctx, u.ID, domain.RoleUser, message); err != nil {
		return "", err
	}

	st := &tracker{logger: s.logger, user: u.Username, cur: stateIdle}
	st.enter(stateClassifying)
	intent := s.router.Route(message)
	s.logger.Info("message classified",
		zap.String("user", u.Username),
		zap.String("intent", string(intent.Kind)),
		zap.String("coin", intent.Coin),
	)

	var (
		response string
		err      error
	)
	switch {
	case intent.IsPriceIntent():
		st.enter(stateResolvingPrice)
		response = s.resolvePrice(ctx, intent)
	case intent.Kind == router.KindStrategyCreation:
		st.enter(stateExtractStrategy)
		response, err = s.createStrategy(ctx, u, message)
	default:
		st.enter(stateAssemblingContext)
		response, err = s.answer(ctx, u, message)
	}
	if err != nil {
		st.enter(stateIdle)
		return "", err
	}

	st.enter(statePersisting)
	if _, err := s.store.SaveMessage(ctx, u.ID, domain.RoleAssistant, response); err != nil {
		return "", err
	}
	s.journalTurn(u, intent, message, response)
	st.enter(stateIdle)

	return response, nil
}

func (s *Service) journalTurn(u domain.User, intent router.Intent, request, response string) {
	if s.journal == nil {
		return
	}
	turn := domain.Turn{
		ID:        uuid.NewString(),
		Username:  u.Username,
		Intent:    string(intent.Kind),
		Coin:      intent.Coin,
		Request:   request,
		Response:  response,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.journal.Save(turn); err != nil {
		s.logger.Warn("failed to journal turn", zap.String("user", u.Username), zap.Error(err))
	}
}

// Agent conversation of a single user.
type Agent struct {
	svc  *Service
	user domain.User
}

// Username owner of the conversation.
func (a *Agent) Username() string {
	return a.user.Username
}

// ProcessMessage answers one message.
func (a *Agent) ProcessMessage(ctx context.Context, message string) (string, error) {
	return a.svc.process(ctx, a.user, message)
}
