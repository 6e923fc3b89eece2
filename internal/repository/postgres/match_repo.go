package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/OliverWarwick/terminal-bot/internal/model"
)

// MatchRepo persists self-play match results and per-turn traces.
// Grounded on the teacher's GameRepo (internal/repository/postgres),
// same QueryRowContext/Scan shape, new schema.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateMatch inserts a new match row and returns it.
func (r *MatchRepo) CreateMatch(ctx context.Context, seed int64, p1Strategy, p2Strategy string) (*model.MatchResult, error) {
	var m model.MatchResult
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO matches (seed, p1_strategy, p2_strategy, winner)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, seed, p1_strategy, p2_strategy, winner, total_turns,
		           final_p1_health, final_p2_health, created_at, finished_at`,
		seed, p1Strategy, p2Strategy, -1,
	).Scan(&m.ID, &m.Seed, &m.P1Strategy, &m.P2Strategy, &m.Winner, &m.TotalTurns,
		&m.FinalP1Health, &m.FinalP2Health, &m.CreatedAt, &m.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return &m, nil
}

// FinishMatch records a completed match's outcome.
func (r *MatchRepo) FinishMatch(ctx context.Context, matchID string, winner int, totalTurns int, finalP1Health, finalP2Health float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches
		 SET winner = $2, total_turns = $3, final_p1_health = $4, final_p2_health = $5, finished_at = now()
		 WHERE id = $1`,
		matchID, winner, totalTurns, finalP1Health, finalP2Health,
	)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	return nil
}

// SaveRound persists one turn's post-state for later replay.
func (r *MatchRepo) SaveRound(ctx context.Context, matchID string, turn int, stateAfter json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO match_rounds (match_id, turn, state_after) VALUES ($1, $2, $3)`,
		matchID, turn, []byte(stateAfter),
	)
	if err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	return nil
}

// ListRecent returns the most recently finished matches, newest first.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.MatchResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, seed, p1_strategy, p2_strategy, winner, total_turns,
		        final_p1_health, final_p2_health, created_at, finished_at
		 FROM matches
		 WHERE finished_at IS NOT NULL
		 ORDER BY finished_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent matches: %w", err)
	}
	defer rows.Close()

	var out []model.MatchResult
	for rows.Next() {
		var m model.MatchResult
		if err := rows.Scan(&m.ID, &m.Seed, &m.P1Strategy, &m.P2Strategy, &m.Winner, &m.TotalTurns,
			&m.FinalP1Health, &m.FinalP2Health, &m.CreatedAt, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
