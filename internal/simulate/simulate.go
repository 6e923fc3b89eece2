// Package simulate implements the deterministic action-frame simulator
// (spec.md §4.6): the central per-frame loop that applies shielding,
// moves mobile units on their cadence, handles end-of-path events, and
// resolves attacks. It must reproduce the external engine's rules
// precisely; this is the hardest and most exercised part of the
// repository, driven almost exclusively by internal/candidates and
// internal/deliberate's forward-simulation search.
package simulate

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
	"github.com/OliverWarwick/terminal-bot/internal/pathfind"
	"github.com/OliverWarwick/terminal-bot/internal/targeting"
)

// MaxFrames is the hard safety cap against pathological loops, per
// spec.md §4.6 and confirmed against original_source/keith-ball-algo's
// simulate_one_turn (SPEC_FULL.md §12).
const MaxFrames = 1000

// Result summarizes the outcome of simulating one turn to completion.
type Result struct {
	Frames       int
	MyHealthLost float64
	OppHealthLost float64
	MyHealth     float64
	OppHealth    float64
	Diverged     bool
	DivergeNote  string
}

// Simulator runs the per-frame loop over a GameMap. Owner 0 is "my"
// side for scoring purposes; owner 1 is the opponent.
type Simulator struct {
	Log zerolog.Logger
}

// New returns a Simulator using a no-op (disabled) logger by default;
// callers that want divergence warnings surfaced should set Log.
func New() *Simulator {
	return &Simulator{Log: zerolog.Nop()}
}

// RunTurn simulates one full turn deterministically from the
// post-deployment state g, mutating g in place, and returns a summary.
// Callers that must preserve their original state (e.g. the search in
// internal/deliberate) must pass a clone — RunTurn itself never clones.
func (s *Simulator) RunTurn(g *gamemap.GameMap, myHealth, oppHealth float64) Result {
	res := Result{MyHealth: myHealth, OppHealth: oppHealth}
	structuresDestroyedPrev := false

	for frame := 0; frame < MaxFrames; frame++ {
		res.Frames = frame + 1

		s.shieldPhase(g)

		selfDestructQueue, structuresDestroyedThisFrame, scoredMy, scoredOpp := s.movementPhase(g, frame, structuresDestroyedPrev, &res)
		res.MyHealth -= float64(scoredOpp) // opponent units scoring on my edge cost me health
		res.OppHealth -= float64(scoredMy)
		res.MyHealthLost += float64(scoredOpp)
		res.OppHealthLost += float64(scoredMy)

		structuresDestroyedPrev = structuresDestroyedThisFrame

		sdStruct := s.selfDestructPhase(g, selfDestructQueue)
		if sdStruct {
			structuresDestroyedPrev = true
		}

		if s.attackPhase(g) {
			// Affects only the next frame's repath decision (spec.md §4.6 step 5).
			structuresDestroyedPrev = true
		}

		if s.noMobileUnitsAlive(g) && frame > 0 {
			anyMoved := scoredMy+scoredOpp > 0
			if !anyMoved {
				break
			}
		}
		if s.noMobileUnitsAlive(g) {
			break
		}
	}

	return res
}

// shieldPhase: for each Support, for each mobile unit within its shield
// range not yet shielded by that Support, add shield_per_unit to health.
func (s *Simulator) shieldPhase(g *gamemap.GameMap) {
	for _, u := range g.AllUnits() {
		if u.Kind != catalog.Support || !u.IsAlive() {
			continue
		}
		stats := catalog.StatsFor(u.Kind, u.Upgraded)
		if stats.ShieldRange <= 0 {
			continue
		}
		for _, m := range g.UnitsInRange(u.Cell, stats.ShieldRange) {
			if !m.Kind.IsMobile() || m.Owner != u.Owner || !m.IsAlive() {
				continue
			}
			if m.ShieldedBy[u.ID] {
				continue
			}
			m.Health += stats.ShieldPerUnit
			m.ShieldedBy[u.ID] = true
		}
	}
}

// movementPhase iterates cells in fixed lexicographic order; structures
// copy unchanged, mobile units decide whether this is their step frame.
// Returns the set of cells queued for self-destruct this frame and
// whether any structure was destroyed as a *direct result of scoring*
// (never — scoring never destroys structures; kept for signature
// symmetry with the other phases) plus scored-unit counts per side.
func (s *Simulator) movementPhase(g *gamemap.GameMap, frame int, repathNeeded bool, res *Result) (queue []*gamemap.Unit, structuresDestroyed bool, scoredMy, scoredOpp int) {
	for _, u := range g.AllUnits() {
		if !u.Kind.IsMobile() || !u.IsAlive() {
			continue
		}
		stats := catalog.StatsFor(u.Kind, u.Upgraded)
		cadence := stats.StepsPerFrame()
		if cadence <= 0 {
			continue
		}
		if !(frame == 0 || frame%cadence == 0) {
			continue
		}

		if repathNeeded {
			pathfind.Repath(g, u)
		}

		if len(u.CurrentPath) == 0 {
			u.CurrentPath = pathfind.ComputePath(g, u.Cell, u.TargetEdge)
		}

		atTerminal := u.Cell == u.CurrentPath[len(u.CurrentPath)-1]
		if atTerminal {
			if arena.IsOnOpponentEdge(u.Cell, u.Owner) {
				if u.Owner == 0 {
					scoredMy++
				} else {
					scoredOpp++
				}
				g.RemoveOne(u.Cell, u)
			} else {
				u.Queued = true
				queue = append(queue, u)
			}
			continue
		}

		idx := indexOf(u.CurrentPath, u.Cell)
		if idx < 0 || idx+1 >= len(u.CurrentPath) {
			// divergence: current cell not found in its own path
			s.Log.Warn().Str("unit", u.Kind.String()).Msg("simulator divergence: unit cell missing from path")
			continue
		}
		next := u.CurrentPath[idx+1]
		g.RemoveOne(u.Cell, u)
		g.AddExistingUnit(u, next)
	}
	return queue, false, scoredMy, scoredOpp
}

func indexOf(path []arena.Cell, c arena.Cell) int {
	for i, p := range path {
		if p == c {
			return i
		}
	}
	return -1
}

// selfDestructPhase detonates every queued unit that has traveled at
// least 5 Manhattan cells from its spawn, damaging nearby units within
// Euclidean radius 1.5 by 1.5x its max health.
func (s *Simulator) selfDestructPhase(g *gamemap.GameMap, queue []*gamemap.Unit) (structuresDestroyed bool) {
	for _, u := range queue {
		if arena.ManhattanDistance(u.Cell, u.InitialCell) < 5 {
			g.RemoveOne(u.Cell, u)
			continue
		}
		dmg := 1.5 * u.MaxHealth
		for _, victim := range g.UnitsInRange(u.Cell, 1.5) {
			if victim == u || victim.Cell == u.Cell {
				continue
			}
			victim.Health -= dmg
			if victim.Health <= 0 {
				g.RemoveOne(victim.Cell, victim)
				if victim.Kind.IsStructure() {
					structuresDestroyed = true
				}
			}
		}
		g.RemoveOne(u.Cell, u)
	}
	return structuresDestroyed
}

// attackPhase resolves targeting and damage for every live unit with an
// attack range, in fixed cell order. Removal mid-phase is visible to
// later attackers in the same frame.
func (s *Simulator) attackPhase(g *gamemap.GameMap) (structuresDestroyed bool) {
	for _, u := range g.AllUnits() {
		if !u.IsAlive() {
			continue
		}
		stats := catalog.StatsFor(u.Kind, u.Upgraded)
		if stats.AttackRange <= 0 {
			continue
		}
		if targeting.ApplyAttack(g, u) {
			structuresDestroyed = true
		}
	}
	return structuresDestroyed
}

func (s *Simulator) noMobileUnitsAlive(g *gamemap.GameMap) bool {
	for _, u := range g.AllUnits() {
		if u.Kind.IsMobile() && u.IsAlive() {
			return false
		}
	}
	return true
}

// Divergence formats a simulator-internal assertion failure as an
// error. RunTurn does not produce one: when a unit's cell is missing
// from its own path, movementPhase logs a Warn line and leaves that
// unit where it is for the frame, the simulation runs on, and
// Result.Diverged stays false, so the candidate is still scored.
type Divergence struct {
	Frame int
	Note  string
}

func (d *Divergence) Error() string {
	return fmt.Sprintf("simulator divergence at frame %d: %s", d.Frame, d.Note)
}
