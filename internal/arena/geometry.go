// Package arena describes the static geometry of the 28x28 diamond-shaped
// playfield: which cells are in bounds, which edge each cell belongs to,
// and the distance/range queries everything else in the engine is built on.
package arena

import "math"

// Size is the width and height of the board's bounding square.
const Size = 28

// half is the board's center offset used by the diamond inclusion test.
const half = float64(Size-1) / 2.0

// Cell is a single board coordinate. Zero value (0,0) is not necessarily
// in-arena; always check InArena before using a Cell constructed by hand.
type Cell struct {
	X, Y int
}

// Edge names the four diamond edges, grouped by which player's mobile
// units spawn on them.
type Edge int

const (
	EdgeTopRight Edge = iota
	EdgeTopLeft
	EdgeBottomLeft
	EdgeBottomRight
)

var allEdges = [4]Edge{EdgeTopRight, EdgeTopLeft, EdgeBottomLeft, EdgeBottomRight}

// geometry is computed once at package init and never mutated afterward.
var (
	inArenaTable [Size][Size]bool
	edgeTables   [4][]Cell
	edgeOf       = map[Cell]Edge{}
)

func init() {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if diamondContains(x, y) {
				inArenaTable[x][y] = true
			}
		}
	}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if !inArenaTable[x][y] {
				continue
			}
			if e, ok := classifyEdge(x, y); ok {
				edgeTables[e] = append(edgeTables[e], Cell{x, y})
				edgeOf[Cell{x, y}] = e
			}
		}
	}
}

// diamondContains reports whether (x, y) lies inside the diamond: the
// Manhattan distance from the board center (13.5, 13.5) is at most 14,
// so rows 0 and 27 hold 2 cells each and rows 13 and 14 hold all 28
// (the classic Terminal board shape: two half-diamonds stacked corner
// to corner).
func diamondContains(x, y int) bool {
	fx, fy := float64(x)-half, float64(y)-half
	return math.Abs(fx)+math.Abs(fy) <= half+0.5
}

// classifyEdge reports which of the four outer diamond edges a boundary
// cell sits on. A cell is a spawn/scoring edge cell if one step away
// from the center along x, or one step away along y, would leave the
// diamond; this gives each of the four edges 14 cells.
func classifyEdge(x, y int) (Edge, bool) {
	if !diamondContains(x, y) {
		return 0, false
	}
	top := y >= Size/2
	right := x >= Size/2
	onBoundary := !diamondContains(x+sign(x, right), y) ||
		!diamondContains(x, y+sign(y, top))
	if !onBoundary {
		return 0, false
	}
	switch {
	case top && right:
		return EdgeTopRight, true
	case top && !right:
		return EdgeTopLeft, true
	case !top && !right:
		return EdgeBottomLeft, true
	default:
		return EdgeBottomRight, true
	}
}

func sign(_ int, positive bool) int {
	if positive {
		return 1
	}
	return -1
}

// InArena reports whether c lies inside the playable diamond.
func InArena(c Cell) bool {
	if c.X < 0 || c.X >= Size || c.Y < 0 || c.Y >= Size {
		return false
	}
	return inArenaTable[c.X][c.Y]
}

// EdgeSet returns the cells on the named diamond edge. The returned
// slice must not be mutated by callers.
func EdgeSet(which Edge) []Cell {
	return edgeTables[which]
}

// EdgeOf reports which edge a boundary cell belongs to, if any.
func EdgeOf(c Cell) (Edge, bool) {
	e, ok := edgeOf[c]
	return e, ok
}

// Distance returns the Euclidean distance between two cells, used for
// attack and shield range checks.
func Distance(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanDistance returns the taxicab distance between two cells, used
// for the self-destruct travel-distance eligibility check.
func ManhattanDistance(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CellsInRadius returns all in-arena cells within Euclidean distance
// radius of center, in a fixed lexicographic (x, y) order. The caller's
// slice is freshly allocated; hot-path callers that run this often
// should route through a GameMap-level cache (see internal/gamemap),
// which is where the O(radius^2)-without-allocation requirement lives.
func CellsInRadius(center Cell, radius float64) []Cell {
	var out []Cell
	r := int(math.Ceil(radius))
	for x := center.X - r; x <= center.X+r; x++ {
		for y := center.Y - r; y <= center.Y+r; y++ {
			c := Cell{x, y}
			if !InArena(c) {
				continue
			}
			if Distance(center, c) <= radius {
				out = append(out, c)
			}
		}
	}
	return out
}

// OpponentEdgesFor returns the edge set a mobile unit owned by owner
// scores on: the two edges on the far side of the board from its own
// spawn edges.
func OpponentEdgesFor(owner int) []Edge {
	if owner == 0 {
		return []Edge{EdgeTopLeft, EdgeTopRight}
	}
	return []Edge{EdgeBottomLeft, EdgeBottomRight}
}

// FriendlyEdgesFor returns the edge set owner's mobile units spawn from.
func FriendlyEdgesFor(owner int) []Edge {
	if owner == 0 {
		return []Edge{EdgeBottomLeft, EdgeBottomRight}
	}
	return []Edge{EdgeTopLeft, EdgeTopRight}
}

// IsOnOpponentEdge reports whether c is a scoring cell for a mobile unit
// owned by owner.
func IsOnOpponentEdge(c Cell, owner int) bool {
	e, ok := EdgeOf(c)
	if !ok {
		return false
	}
	for _, oe := range OpponentEdgesFor(owner) {
		if oe == e {
			return true
		}
	}
	return false
}

// Reflect maps a wire-reported opponent coordinate onto our local frame
// and vice versa: reflect(reflect(c)) == c for every in-arena c.
func Reflect(c Cell) Cell {
	return Cell{Size - 1 - c.X, Size - 1 - c.Y}
}
