package sqlstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vadiminshakov/nova/internal/domain"
)

// CreateStrategy stores a new strategy record.
func (s *Store) CreateStrategy(ctx context.Context, r domain.StrategyRecord) (domain.StrategyRecord, error) {
	tags, err := json.Marshal(nonNil(r.Tags))
	if err != nil {
		return domain.StrategyRecord{}, domain.DatabaseError("encode strategy tags", err)
	}
	steps, err := json.Marshal(nonNil(r.Steps))
	if err != nil {
		return domain.StrategyRecord{}, domain.DatabaseError("encode strategy steps", err)
	}
	reqs, err := json.Marshal(nonNil(r.Requirements))
	if err != nil {
		return domain.StrategyRecord{}, domain.DatabaseError("encode strategy requirements", err)
	}
	returns := r.ExpectedReturns
	if len(returns) == 0 {
		returns = domain.DefaultExpectedReturns
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO strategies (
			user_id, strategy_id, name, category, description, risk_level,
			tags, steps, requirements, expected_returns, author, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.StrategyID, r.Name, r.Category, r.Description, r.RiskLevel,
		string(tags), string(steps), string(reqs), string(returns), r.Author, r.Version,
		formatTime(now), formatTime(now))
	if err != nil {
		return domain.StrategyRecord{}, domain.DatabaseError("create strategy", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return domain.StrategyRecord{}, domain.DatabaseError("create strategy", err)
	}

	r.ExpectedReturns = returns
	r.CreatedAt, r.UpdatedAt = now, now
	return r, nil
}

// Strategies lists the user's strategies, newest first.
func (s *Store) Strategies(ctx context.Context, userID int64) ([]domain.StrategyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, strategy_id, name, category, description, risk_level,
			tags, steps, requirements, expected_returns, author, version, created_at, updated_at
		FROM strategies WHERE user_id = ?
		ORDER BY id DESC`, userID)
	if err != nil {
		return nil, domain.DatabaseError("list strategies", err)
	}
	defer rows.Close()

	var out []domain.StrategyRecord
	for rows.Next() {
		var (
			r                          domain.StrategyRecord
			tags, steps, reqs, returns string
			created, updated           string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.StrategyID, &r.Name, &r.Category, &r.Description, &r.RiskLevel,
			&tags, &steps, &reqs, &returns, &r.Author, &r.Version, &created, &updated); err != nil {
			return nil, domain.DatabaseError("scan strategy", err)
		}
		for _, f := range []struct {
			raw string
			dst *[]string
		}{{tags, &r.Tags}, {steps, &r.Steps}, {reqs, &r.Requirements}} {
			if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
				return nil, domain.DatabaseError("decode strategy", err)
			}
		}
		r.ExpectedReturns = json.RawMessage(returns)
		r.CreatedAt, r.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("iterate strategies", err)
	}

	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
