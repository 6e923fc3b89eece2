// Package gamemap holds the per-cell unit occupancy the rest of the
// engine mutates every frame: a mapping from each in-arena cell to an
// ordered list of units currently there.
package gamemap

import (
	"fmt"
	"math"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
)

// Unit is a structure or mobile unit occupying a cell. Ordinary Go
// struct, not an arena/index scheme: GameMap (below) holds units by
// pointer in per-cell slices, and GameMap.Clone copies each unit into a
// new struct.
type Unit struct {
	ID       int
	Kind     catalog.Kind
	Upgraded bool
	Owner    int
	Health   float64
	MaxHealth float64
	Cell     arena.Cell

	// Mobile-only fields.
	InitialCell     arena.Cell
	CurrentPath     []arena.Cell
	ShieldedBy      map[int]bool // Support unit ID -> shielded, per spec §9 open-question decision
	TargetEdge      arena.Edge
	Queued          bool // queued for self-destruct this frame
}

// IsAlive reports whether the unit still has positive health.
func (u *Unit) IsAlive() bool { return u.Health > 0 }

// GameMap is a mapping from each in-arena cell to an ordered list of
// units. Insertion order within a cell is stable; multiple mobile units
// may share a cell, a structure occupies its cell alone.
type GameMap struct {
	cells   map[arena.Cell][]*Unit
	nextID  int

	// rangeScratch is a reusable buffer for in-range cell queries
	// (shield/targeting/self-destruct run one of these every frame per
	// unit): cellsInRange truncates and refills it in place instead of
	// allocating a fresh slice on every call, per spec.md §4.3's
	// O(radius^2)-without-allocation requirement.
	rangeScratch []arena.Cell
}

// New returns an empty game map.
func New() *GameMap {
	return &GameMap{cells: make(map[arena.Cell][]*Unit)}
}

// UnitsAt returns the units at c in insertion order. The returned slice
// must not be mutated by callers; use RemoveOne/AddExistingUnit instead.
func (g *GameMap) UnitsAt(c arena.Cell) []*Unit {
	return g.cells[c]
}

// ContainsStructure reports whether a structure occupies c.
func (g *GameMap) ContainsStructure(c arena.Cell) bool {
	for _, u := range g.cells[c] {
		if u.Kind.IsStructure() && u.IsAlive() {
			return true
		}
	}
	return false
}

// AddUnit creates and places a new unit of kind at c for owner, failing
// if a structure would overlap a structure.
func (g *GameMap) AddUnit(kind catalog.Kind, c arena.Cell, owner int, upgraded bool) (*Unit, error) {
	if !arena.InArena(c) {
		return nil, fmt.Errorf("gamemap: cell %v is not in arena", c)
	}
	if kind.IsStructure() && g.ContainsStructure(c) {
		return nil, fmt.Errorf("gamemap: structure already occupies %v", c)
	}
	stats := catalog.StatsFor(kind, upgraded)
	g.nextID++
	u := &Unit{
		ID:          g.nextID,
		Kind:        kind,
		Upgraded:    upgraded,
		Owner:       owner,
		Health:      stats.Health,
		MaxHealth:   stats.Health,
		Cell:        c,
		InitialCell: c,
		ShieldedBy:  map[int]bool{},
	}
	if kind.IsMobile() {
		// Default to the first of owner's opponent edges
		// (OpponentEdgesFor(owner)[0]); callers that already
		// know a more specific route (e.g. candidates.Spawn.TargetEdge)
		// overwrite this after AddUnit returns.
		u.TargetEdge = arena.OpponentEdgesFor(owner)[0]
	}
	g.cells[c] = append(g.cells[c], u)
	return u, nil
}

// AddExistingUnit places an already-constructed unit at c, used by the
// simulator to rebuild successor maps frame-to-frame without
// reallocating Unit values.
func (g *GameMap) AddExistingUnit(u *Unit, c arena.Cell) {
	u.Cell = c
	g.cells[c] = append(g.cells[c], u)
}

// RemoveOne removes a specific unit (by identity) from its cell.
func (g *GameMap) RemoveOne(c arena.Cell, u *Unit) {
	units := g.cells[c]
	for i, existing := range units {
		if existing == u {
			g.cells[c] = append(units[:i], units[i+1:]...)
			if len(g.cells[c]) == 0 {
				delete(g.cells, c)
			}
			return
		}
	}
}

// AllUnits returns every unit on the map in fixed lexicographic cell
// order, then insertion order within a cell — the ordering spec.md §5
// requires to be stable and observable.
func (g *GameMap) AllUnits() []*Unit {
	var out []*Unit
	for x := 0; x < arena.Size; x++ {
		for y := 0; y < arena.Size; y++ {
			c := arena.Cell{X: x, Y: y}
			out = append(out, g.cells[c]...)
		}
	}
	return out
}

// cellsInRange fills g.rangeScratch with every in-arena cell within
// Euclidean radius of center, in lexicographic order, reusing the
// buffer's backing array across calls rather than allocating one per
// call. The returned slice is only valid until the next call to
// cellsInRange on this GameMap.
func (g *GameMap) cellsInRange(center arena.Cell, radius float64) []arena.Cell {
	g.rangeScratch = g.rangeScratch[:0]
	r := int(math.Ceil(radius))
	for x := center.X - r; x <= center.X+r; x++ {
		for y := center.Y - r; y <= center.Y+r; y++ {
			c := arena.Cell{X: x, Y: y}
			if !arena.InArena(c) {
				continue
			}
			if arena.Distance(center, c) <= radius {
				g.rangeScratch = append(g.rangeScratch, c)
			}
		}
	}
	return g.rangeScratch
}

// LocationsInRange returns all in-arena cells within radius of center,
// in lexicographic order. This is the hot-path range query exercised
// every frame by shields, targeting, and self-destruct; it walks the
// bounding box directly rather than scanning the whole board. The
// returned slice aliases GameMap-owned scratch storage and is only
// valid until the next LocationsInRange/UnitsInRange call.
func (g *GameMap) LocationsInRange(center arena.Cell, radius float64) []arena.Cell {
	return g.cellsInRange(center, radius)
}

// UnitsInRange returns all live units within Euclidean radius of center.
func (g *GameMap) UnitsInRange(center arena.Cell, radius float64) []*Unit {
	var out []*Unit
	for _, c := range g.cellsInRange(center, radius) {
		for _, u := range g.cells[c] {
			if u.IsAlive() {
				out = append(out, u)
			}
		}
	}
	return out
}

// Clone returns a deep copy of the map suitable for simulation: a fresh
// cells map and fresh Unit values, so mutating the clone never affects
// the original (spec.md §8 "the deep copy used for simulation never
// mutates the caller's state").
func (g *GameMap) Clone() *GameMap {
	out := &GameMap{cells: make(map[arena.Cell][]*Unit, len(g.cells)), nextID: g.nextID}
	for c, units := range g.cells {
		cloned := make([]*Unit, len(units))
		for i, u := range units {
			cu := *u
			cu.CurrentPath = append([]arena.Cell(nil), u.CurrentPath...)
			cu.ShieldedBy = make(map[int]bool, len(u.ShieldedBy))
			for k, v := range u.ShieldedBy {
				cu.ShieldedBy[k] = v
			}
			cloned[i] = &cu
		}
		out.cells[c] = cloned
	}
	return out
}

// CloneInto resets dst to a deep copy of g, reusing dst's backing map
// where possible to avoid allocating a fresh map on every simulation
// step — the arena-backed "bulk reset" shape spec.md §5 recommends
// over per-cell heap allocation.
func (g *GameMap) CloneInto(dst *GameMap) {
	for c := range dst.cells {
		delete(dst.cells, c)
	}
	if dst.cells == nil {
		dst.cells = make(map[arena.Cell][]*Unit, len(g.cells))
	}
	dst.nextID = g.nextID
	for c, units := range g.cells {
		cloned := make([]*Unit, len(units))
		for i, u := range units {
			cu := *u
			cu.CurrentPath = append([]arena.Cell(nil), u.CurrentPath...)
			cu.ShieldedBy = make(map[int]bool, len(u.ShieldedBy))
			for k, v := range u.ShieldedBy {
				cu.ShieldedBy[k] = v
			}
			cloned[i] = &cu
		}
		dst.cells[c] = cloned
	}
}
