// Package candidates enumerates plausible spawn plans (spec.md §4.8):
// scout rush, demolisher rush, scout/demolisher split, and interceptor
// spoilers, anchored on reachable spawn cells. The shape — a small set
// of named generator functions whose outputs are pooled, deduplicated,
// and later scored by forward simulation — is grounded on the teacher's
// internal/bot/strategy_hard.go generateCandidates, which combines
// several named candidate generators (targeted, aggressive, defensive,
// expansionist...) into one pool before scoring.
package candidates

import (
	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
	"github.com/OliverWarwick/terminal-bot/internal/pathfind"
)

// Spawn is one atomic unit placement within a plan. TargetEdge is only
// meaningful for mobile kinds; it records the opponent edge the unit
// should path toward, computed once at candidate-generation time so
// every replay of a plan (including into a cloned scratch map) sends
// the unit the same way instead of defaulting to its owner's own
// friendly edge.
type Spawn struct {
	Kind       catalog.Kind
	Cell       arena.Cell
	Count      int
	TargetEdge arena.Edge
}

// Plan is an ordered list of Spawn entries: one atomic deployment choice.
type Plan struct {
	Name    string
	Spawns  []Spawn
}

// splitTable maps MP budget (4..20) to (scoutCount, demolisherCount) per
// spec.md §4.8. MP >= 21 follows the divisor rule implemented below.
var splitTable = map[int][2]int{
	4: {3, 0}, 5: {4, 0}, 6: {2, 1}, 7: {3, 1}, 8: {4, 1},
	9: {3, 2}, 10: {4, 2}, 11: {5, 2}, 12: {4, 3}, 13: {5, 3},
	14: {6, 3}, 15: {5, 4}, 16: {6, 4}, 17: {7, 4}, 18: {6, 5},
	19: {7, 5}, 20: {8, 5},
}

// splitCounts returns (scouts, demolishers) for the given MP budget.
func splitCounts(mp int) (int, int) {
	if mp < 4 {
		return 0, 0
	}
	if c, ok := splitTable[mp]; ok {
		return c[0], c[1]
	}
	// MP >= 21: roughly 60% MP on scouts, 40% on demolishers (3 MP each).
	scouts := (mp * 6 / 10)
	demos := (mp - scouts) / 3
	return scouts, demos
}

// bestSpawnEdgeCell picks, among owner's friendly edge cells, the one
// whose computed path reaches the opponent edge (not a mid-board
// self-destruct), preferring the shortest such path. Returns ok=false
// if every friendly edge cell's path stalls mid-board.
func bestSpawnEdgeCell(g *gamemap.GameMap, owner int) (arena.Cell, arena.Edge, bool) {
	var best arena.Cell
	var bestEdge arena.Edge
	bestLen := -1
	found := false

	for _, friendlyEdge := range arena.FriendlyEdgesFor(owner) {
		for _, c := range arena.EdgeSet(friendlyEdge) {
			if g.ContainsStructure(c) {
				continue
			}
			for _, targetEdge := range arena.OpponentEdgesFor(owner) {
				path := pathfind.ComputePath(g, c, targetEdge)
				terminal := path[len(path)-1]
				if !arena.IsOnOpponentEdge(terminal, owner) {
					continue
				}
				if !found || len(path) < bestLen {
					best = c
					bestEdge = targetEdge
					bestLen = len(path)
					found = true
				}
			}
		}
	}
	return best, bestEdge, found
}

// ScoutRush emits a single-wave all-scout plan from the best-surviving
// friendly spawn cell.
func ScoutRush(g *gamemap.GameMap, owner int, mp int) (Plan, bool) {
	cell, edge, ok := bestSpawnEdgeCell(g, owner)
	if !ok || mp < 1 {
		return Plan{}, false
	}
	stats := catalog.StatsFor(catalog.Scout, false)
	count := int(float64(mp) / stats.CostMP)
	if count < 1 {
		return Plan{}, false
	}
	return Plan{Name: "scout_rush", Spawns: []Spawn{{Kind: catalog.Scout, Cell: cell, Count: count, TargetEdge: edge}}}, true
}

// DemolisherRush emits a single-wave all-demolisher plan using the same
// anchoring rule as ScoutRush.
func DemolisherRush(g *gamemap.GameMap, owner int, mp int) (Plan, bool) {
	cell, edge, ok := bestSpawnEdgeCell(g, owner)
	if !ok || mp < 1 {
		return Plan{}, false
	}
	stats := catalog.StatsFor(catalog.Demolisher, false)
	count := int(float64(mp) / stats.CostMP)
	if count < 1 {
		return Plan{}, false
	}
	return Plan{Name: "demolisher_rush", Spawns: []Spawn{{Kind: catalog.Demolisher, Cell: cell, Count: count, TargetEdge: edge}}}, true
}

// ScoutDemolisherSplit emits a mixed wave per the MP-indexed split table.
func ScoutDemolisherSplit(g *gamemap.GameMap, owner int, mp int) (Plan, bool) {
	cell, edge, ok := bestSpawnEdgeCell(g, owner)
	if !ok {
		return Plan{}, false
	}
	scouts, demos := splitCounts(mp)
	if scouts == 0 && demos == 0 {
		return Plan{}, false
	}
	var spawns []Spawn
	if scouts > 0 {
		spawns = append(spawns, Spawn{Kind: catalog.Scout, Cell: cell, Count: scouts, TargetEdge: edge})
	}
	if demos > 0 {
		spawns = append(spawns, Spawn{Kind: catalog.Demolisher, Cell: cell, Count: demos, TargetEdge: edge})
	}
	return Plan{Name: "scout_demolisher_split", Spawns: spawns}, true
}

// InterceptorSpoilers places 1-3 interceptors (tiered by the opponent's
// known MP) on friendly edge cells chosen to maximize intersection with
// likely enemy paths (approximated here as the friendly cells nearest
// the midline, where most rush paths converge).
func InterceptorSpoilers(g *gamemap.GameMap, owner int, opponentMP int) (Plan, bool) {
	tier := 1
	switch {
	case opponentMP >= 15:
		tier = 3
	case opponentMP >= 8:
		tier = 2
	}

	cells := candidateFriendlyCells(g, owner)
	if len(cells) == 0 {
		return Plan{}, false
	}
	if tier > len(cells) {
		tier = len(cells)
	}

	var spawns []Spawn
	for i := 0; i < tier; i++ {
		spawns = append(spawns, Spawn{Kind: catalog.Interceptor, Cell: cells[i], Count: 1, TargetEdge: nearestOpponentEdge(g, owner, cells[i])})
	}
	return Plan{Name: "interceptor_spoilers", Spawns: spawns}, true
}

// nearestOpponentEdge picks the opponent edge whose computed path from
// cell actually terminates on an opponent edge, preferring the shortest
// such path — the same rule bestSpawnEdgeCell applies per friendly-edge
// cell, but evaluated for one already-chosen cell.
func nearestOpponentEdge(g *gamemap.GameMap, owner int, cell arena.Cell) arena.Edge {
	opponentEdges := arena.OpponentEdgesFor(owner)
	best := opponentEdges[0]
	bestLen := -1
	for _, targetEdge := range opponentEdges {
		path := pathfind.ComputePath(g, cell, targetEdge)
		terminal := path[len(path)-1]
		if !arena.IsOnOpponentEdge(terminal, owner) {
			continue
		}
		if bestLen == -1 || len(path) < bestLen {
			best = targetEdge
			bestLen = len(path)
		}
	}
	return best
}

// candidateFriendlyCells returns owner's open friendly edge cells sorted
// by horizontal distance |x-14| from the board's vertical center line
// (a cheap proxy for
// "maximal intersection with likely enemy paths").
func candidateFriendlyCells(g *gamemap.GameMap, owner int) []arena.Cell {
	mid := arena.Size / 2
	var open []arena.Cell
	for _, e := range arena.FriendlyEdgesFor(owner) {
		for _, c := range arena.EdgeSet(e) {
			if !g.ContainsStructure(c) {
				open = append(open, c)
			}
		}
	}
	for i := 1; i < len(open); i++ {
		key := open[i]
		j := i - 1
		for j >= 0 && distToMid(open[j], mid) > distToMid(key, mid) {
			open[j+1] = open[j]
			j--
		}
		open[j+1] = key
	}
	return open
}

func distToMid(c arena.Cell, mid int) int {
	d := c.X - mid
	if d < 0 {
		d = -d
	}
	return d
}

// GenerateAll builds the small finite catalog of attack plans for owner
// given the current post-build state and MP budget, dropping any
// candidate that cannot legally spawn. opponentMP is used only to tier
// interceptor spoilers when they're requested separately by the caller
// (spec.md §4.9's interceptor-response step calls InterceptorSpoilers on
// its own, against a fixed opponent plan).
func GenerateAll(g *gamemap.GameMap, owner int, mp int) []Plan {
	var out []Plan
	if p, ok := ScoutRush(g, owner, mp); ok {
		out = append(out, p)
	}
	if p, ok := DemolisherRush(g, owner, mp); ok {
		out = append(out, p)
	}
	if p, ok := ScoutDemolisherSplit(g, owner, mp); ok {
		out = append(out, p)
	}
	return out
}

// MirrorEdge returns the opponent-side edge that mirrors a friendly
// edge, used to build a symmetric opponent catalog from our own spawn
// rules by reflecting coordinates (spec.md §6 coordinate convention).
func MirrorEdge(e arena.Edge) arena.Edge {
	switch e {
	case arena.EdgeTopRight:
		return arena.EdgeBottomLeft
	case arena.EdgeTopLeft:
		return arena.EdgeBottomRight
	case arena.EdgeBottomLeft:
		return arena.EdgeTopRight
	default:
		return arena.EdgeTopLeft
	}
}

// GenerateOpponentCatalog mirrors GenerateAll from the opponent's
// perspective (owner 1 when we are owner 0, or vice versa). GameMap
// cells are used as they are: cmd/bot places both players' wire units
// at their reported coordinates, internal/protocol does not reflect
// them, and no reflection is applied here either. This only anchors on
// the opponent's own friendly edges via FriendlyEdgesFor(opponentOwner).
func GenerateOpponentCatalog(g *gamemap.GameMap, opponentOwner int, opponentMP int) []Plan {
	return GenerateAll(g, opponentOwner, opponentMP)
}
