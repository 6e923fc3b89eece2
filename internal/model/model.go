// Package model holds the persisted record types for the self-play
// arena (cmd/arena): a MatchResult per completed game and, optionally, a
// MatchRound per turn for post-hoc replay/debugging. These replace the
// teacher's Diplomacy-specific User/Game/Phase/Order/Message records,
// which had no tower-defense analog (see DESIGN.md).
package model

import (
	"encoding/json"
	"time"
)

// MatchResult is one completed bot-vs-bot game.
type MatchResult struct {
	ID           string    `json:"id"`
	Seed         int64     `json:"seed"`
	P1Strategy   string    `json:"p1_strategy"` // opening book name used by player 1
	P2Strategy   string    `json:"p2_strategy"`
	Winner       int       `json:"winner"` // 0 = p1, 1 = p2, -1 = draw/turn cap
	TotalTurns   int       `json:"total_turns"`
	FinalP1Health float64  `json:"final_p1_health"`
	FinalP2Health float64  `json:"final_p2_health"`
	CreatedAt    time.Time `json:"created_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// MatchRound is one turn's snapshot within a match, kept for optional
// post-hoc replay. StateAfter is the JSON round summary cmd/arena
// writes after the turn: both players' health and the live unit counts
// per owner and kind (not the full game map), following the pattern of
// the teacher's Phase.StateBefore/StateAfter.
type MatchRound struct {
	ID         string          `json:"id"`
	MatchID    string          `json:"match_id"`
	Turn       int             `json:"turn"`
	StateAfter json.RawMessage `json:"state_after"`
	CreatedAt  time.Time       `json:"created_at"`
}
