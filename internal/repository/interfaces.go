package repository

import (
	"context"
	"encoding/json"

	"github.com/OliverWarwick/terminal-bot/internal/model"
)

// MatchRepository persists self-play match results and, optionally, a
// per-turn trace for replay. Grounded on the teacher's GameRepository +
// PhaseRepository pair, collapsed to the two record types a self-play
// harness actually needs.
type MatchRepository interface {
	CreateMatch(ctx context.Context, seed int64, p1Strategy, p2Strategy string) (*model.MatchResult, error)
	FinishMatch(ctx context.Context, matchID string, winner int, totalTurns int, finalP1Health, finalP2Health float64) error
	SaveRound(ctx context.Context, matchID string, turn int, stateAfter json.RawMessage) error
	ListRecent(ctx context.Context, limit int) ([]model.MatchResult, error)
}

// JobQueue dispatches self-play match jobs to a worker fleet over
// Redis. Grounded on the teacher's GameCache (redis-backed live state)
// but repurposed from "live game state cache" to "work queue": workers
// block-pop a job, play it out, and push the result back through
// MatchRepository rather than through Redis itself.
type JobQueue interface {
	Enqueue(ctx context.Context, job MatchJob) error
	Dequeue(ctx context.Context) (*MatchJob, error)
	Len(ctx context.Context) (int64, error)
}

// MatchJob is one unit of self-play work: a seed plus the two opening
// books to pit against each other.
type MatchJob struct {
	Seed       int64  `json:"seed"`
	P1Strategy string `json:"p1_strategy"`
	P2Strategy string `json:"p2_strategy"`
}
