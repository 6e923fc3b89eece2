// Package pathfind computes, from a source cell, the full cell sequence
// a mobile unit would traverse toward its assigned target edge. It is
// exposed as an independently testable module per spec.md §9's open
// question on path tie-breaking ("faithful reproduction requires
// consulting the engine... expose path generation as a testable module").
package pathfind

import (
	"sort"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

// cardinalOrder is the fixed order of the four unit steps, used by
// orderedNeighbors only as the final tiebreak once progress toward the
// target edge is equal.
// Decision recorded in SPEC_FULL.md §13: Up, Right, Down, Left.
var cardinalOrder = []arena.Cell{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: 0}}

// blocked reports whether a cell is impassable: out of arena or holding
// a live structure.
func blocked(g *gamemap.GameMap, c arena.Cell) bool {
	if !arena.InArena(c) {
		return true
	}
	return g.ContainsStructure(c)
}

// ComputePath returns the full cell sequence a unit at source would
// traverse toward targetEdge. If no path exists, the result is the
// single-cell sequence [source] (the unit will self-destruct there).
func ComputePath(g *gamemap.GameMap, source arena.Cell, targetEdge arena.Edge) []arena.Cell {
	if !arena.InArena(source) {
		return []arena.Cell{source}
	}

	dist := map[arena.Cell]int{source: 0}
	prev := map[arena.Cell]arena.Cell{}
	queue := []arena.Cell{source}

	targets := map[arena.Cell]bool{}
	for _, c := range arena.EdgeSet(targetEdge) {
		targets[c] = true
	}

	var reached arena.Cell
	found := false

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if targets[cur] && !blocked(g, cur) {
			reached = cur
			found = true
			break
		}

		neighbors := orderedNeighbors(cur, targetEdge)
		for _, n := range neighbors {
			if blocked(g, n) && n != source {
				continue
			}
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			prev[n] = cur
			queue = append(queue, n)
		}
	}

	if !found {
		return []arena.Cell{source}
	}

	var path []arena.Cell
	for c := reached; ; {
		path = append(path, c)
		p, ok := prev[c]
		if !ok {
			break
		}
		c = p
	}
	// reverse into source->...->reached order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// orderedNeighbors returns cur's four cardinal neighbors ordered by the
// tie-breaking policy decided in SPEC_FULL.md §13: prefer the direction
// that decreases remaining distance to targetEdge the most; on further
// ties, the fixed cardinal order (Up, Right, Down, Left).
func orderedNeighbors(cur arena.Cell, targetEdge arena.Edge) []arena.Cell {
	type scored struct {
		cell     arena.Cell
		priority int
		order    int
	}
	edgeCenter := edgeCentroid(targetEdge)
	var scoredList []scored
	for i, d := range cardinalOrder {
		n := arena.Cell{X: cur.X + d.X, Y: cur.Y + d.Y}
		before := arena.ManhattanDistance(cur, edgeCenter)
		after := arena.ManhattanDistance(n, edgeCenter)
		scoredList = append(scoredList, scored{cell: n, priority: after - before, order: i})
	}
	sort.SliceStable(scoredList, func(i, j int) bool {
		if scoredList[i].priority != scoredList[j].priority {
			return scoredList[i].priority < scoredList[j].priority
		}
		return scoredList[i].order < scoredList[j].order
	})
	out := make([]arena.Cell, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.cell
	}
	return out
}

// edgeCentroid returns the rough center of an edge set, used only to
// rank neighbor directions by progress made toward it.
func edgeCentroid(e arena.Edge) arena.Cell {
	cells := arena.EdgeSet(e)
	if len(cells) == 0 {
		return arena.Cell{}
	}
	sx, sy := 0, 0
	for _, c := range cells {
		sx += c.X
		sy += c.Y
	}
	return arena.Cell{X: sx / len(cells), Y: sy / len(cells)}
}

// Repath recomputes u's path from its current cell using its retained
// target edge. Invoked after any structure is destroyed during a frame.
func Repath(g *gamemap.GameMap, u *gamemap.Unit) {
	u.CurrentPath = ComputePath(g, u.Cell, u.TargetEdge)
}
