package chat

import (
	"context"
	"fmt"

	"github.com/vadiminshakov/nova/internal/clients"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/internal/services/promptbuilder"
	"github.com/vadiminshakov/nova/internal/services/router"
	"go.uber.org/zap"
)

// answer asks the LLM with history and stored knowledge as context.
func (s *Service) answer(ctx context.Context, u domain.User, message string) (string, error) {
	history, err := s.store.RecentMessages(ctx, u.ID, s.opts.HistoryLimit)
	if err != nil {
		s.logger.Warn("failed to load conversation history", zap.String("user", u.Username), zap.Error(err))
		history = nil
	}

	pc := promptbuilder.Context{
		Query:    message,
		History:  history,
		Planning: promptbuilder.IsPlanningMode(message),
	}

	if !router.IsStrategyRequest(message) {
		if project, ok := promptbuilder.DetectProject(message); ok {
			pc.Project = project
			pc.ProjectKnowledge = s.projectKnowledge(ctx, u, project)
		}
	}

	if keywords := promptbuilder.Keywords(message); len(keywords) > 0 {
		related, err := s.store.KnowledgeByTags(ctx, u.ID, keywords, s.opts.KnowledgeLimit)
		if err != nil {
			return "", err
		}
		pc.Related = related
	}
	if mentionsStrategies(message) {
		pc.Related = append(s.savedStrategies(ctx, u), pc.Related...)
	}

	prompt := s.prompts.Build(pc)
	s.logger.Debug("prompt assembled",
		zap.String("user", u.Username),
		zap.Bool("planning", pc.Planning),
		zap.Int("history", len(history)),
		zap.Int("prompt_len", len(prompt)),
	)

	return s.llm.Complete(ctx, promptbuilder.SystemPrompt, prompt)
}

// projectKnowledge returns stored knowledge about project, researching it
// first when enabled and nothing is stored. Failures are logged and swallowed.
func (s *Service) projectKnowledge(ctx context.Context, u domain.User, project string) []domain.KnowledgeEntry {
	entries, err := s.store.KnowledgeByTags(ctx, u.ID, []string{project}, s.opts.KnowledgeLimit)
	if err != nil {
		s.logger.Warn("failed to load project knowledge", zap.String("project", project), zap.Error(err))
		return nil
	}
	if len(entries) > 0 || !s.opts.Research {
		return entries
	}

	entry, err := s.research(ctx, u, project)
	if err != nil {
		s.logger.Warn("project research failed", zap.String("project", project), zap.Error(err))
		return nil
	}
	return []domain.KnowledgeEntry{entry}
}

func (s *Service) research(ctx context.Context, u domain.User, project string) (domain.KnowledgeEntry, error) {
	query := clients.NewQueryBuilder(project).WithAspects("details", "tokenomics", "technology").Build()
	results, err := s.search.Search(ctx, query, s.opts.SearchResults)
	if err != nil {
		return domain.KnowledgeEntry{}, err
	}
	if len(results) == 0 {
		return domain.KnowledgeEntry{}, domain.ExternalAPIError(0, "no search results for "+project, nil)
	}

	entry := domain.KnowledgeEntry{
		UserID:   u.ID,
		SourceID: fmt.Sprintf("%s_research_%d", project, s.now().Unix()),
		Content:  clients.Summarize(results),
		Tags:     []string{project, "research", "search"},
	}
	saved, err := s.store.CreateKnowledge(ctx, entry)
	if err != nil {
		// the summary is still usable for this turn
		s.logger.Warn("failed to store research", zap.String("project", project), zap.Error(err))
		return entry, nil
	}
	return saved, nil
}
