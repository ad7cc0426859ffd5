package rounddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements Repository using bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new round repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetRoundWithMatches loads the full round graph in deterministic order.
func (r *Impl) GetRoundWithMatches(ctx context.Context, db bun.IDB, roundID string) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Relation("Matches", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("match_number ASC, id ASC")
		}).
		Relation("Matches.Teams", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("team_number ASC, id ASC")
		}).
		Relation("Matches.Teams.Players", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("user_id ASC")
		}).
		Relation("Matches.Sets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("set_number ASC")
		}).
		Where("r.id = ?", roundID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rounddb.GetRoundWithMatches: %w", err)
	}
	return round, nil
}

// LockRound takes a transaction-scoped advisory lock keyed by the round id.
// Outside a transaction the lock is released as soon as the statement returns.
func (r *Impl) LockRound(ctx context.Context, db bun.IDB, roundID string) error {
	db = r.resolveDB(db)
	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", roundID).Exec(ctx); err != nil {
		return fmt.Errorf("rounddb.LockRound: %w", err)
	}
	return nil
}

// UpsertRoundOutcomes writes outcomes in one statement. level_change is left alone on conflict.
func (r *Impl) UpsertRoundOutcomes(ctx context.Context, db bun.IDB, outcomes []*RoundOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for _, o := range outcomes {
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		o.UpdatedAt = now
	}
	_, err := db.NewInsert().
		Model(&outcomes).
		On("CONFLICT (round_id, user_id) DO UPDATE").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rounddb.UpsertRoundOutcomes: %w", err)
	}
	return nil
}

// GetRoundOutcomes returns the outcomes stored for a round.
func (r *Impl) GetRoundOutcomes(ctx context.Context, db bun.IDB, roundID string) ([]*RoundOutcome, error) {
	db = r.resolveDB(db)
	var outcomes []*RoundOutcome
	err := db.NewSelect().
		Model(&outcomes).
		Where("round_id = ?", roundID).
		Order("user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rounddb.GetRoundOutcomes: %w", err)
	}
	return outcomes, nil
}

// SaveRound inserts the round and every child row.
func (r *Impl) SaveRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		return fmt.Errorf("rounddb.SaveRound: round: %w", err)
	}
	for _, m := range round.Matches {
		m.RoundID = round.ID
		if _, err := db.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("rounddb.SaveRound: match %s: %w", m.ID, err)
		}
		for _, t := range m.Teams {
			t.MatchID = m.ID
			if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
				return fmt.Errorf("rounddb.SaveRound: team %s: %w", t.ID, err)
			}
			for _, p := range t.Players {
				p.TeamID = t.ID
			}
			if len(t.Players) > 0 {
				if _, err := db.NewInsert().Model(&t.Players).Exec(ctx); err != nil {
					return fmt.Errorf("rounddb.SaveRound: players of team %s: %w", t.ID, err)
				}
			}
		}
		for _, s := range m.Sets {
			s.MatchID = m.ID
		}
		if len(m.Sets) > 0 {
			if _, err := db.NewInsert().Model(&m.Sets).Exec(ctx); err != nil {
				return fmt.Errorf("rounddb.SaveRound: sets of match %s: %w", m.ID, err)
			}
		}
	}
	return nil
}
