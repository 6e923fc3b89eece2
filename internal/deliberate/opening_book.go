// Opening book data. spec.md §1 explicitly excludes the exact opening
// layout from the hard core ("any comparable opening satisfies the
// design"), so this is carried forward only as a concrete, swappable
// default — the coordinates are the ones hand-picked in
// original_source/defensive-algo/algo_strategy.py, adapted to the
// buildqueue.Placement shape and selectable by name via
// config.Config.OpeningBook (SPEC_FULL.md §12).
package deliberate

import (
	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/buildqueue"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
)

// OpeningBook is a named, ordered set of opening placements, lowest
// priority (built first) to highest.
type OpeningBook struct {
	Name   string
	Walls  []arena.Cell
	Turrets []arena.Cell
	Supports []arena.Cell
}

var defaultWalls = []arena.Cell{
	{X: 0, Y: 13}, {X: 25, Y: 13}, {X: 26, Y: 13}, {X: 27, Y: 13}, {X: 24, Y: 12},
	{X: 2, Y: 11}, {X: 23, Y: 11}, {X: 3, Y: 10}, {X: 4, Y: 9}, {X: 21, Y: 9},
	{X: 5, Y: 8}, {X: 20, Y: 8}, {X: 6, Y: 7}, {X: 19, Y: 7}, {X: 7, Y: 6},
	{X: 18, Y: 6}, {X: 8, Y: 5}, {X: 17, Y: 5}, {X: 9, Y: 4}, {X: 16, Y: 4},
	{X: 10, Y: 3}, {X: 11, Y: 3}, {X: 12, Y: 3}, {X: 13, Y: 3}, {X: 14, Y: 3}, {X: 15, Y: 3},
}

var defaultTurrets = []arena.Cell{
	{X: 1, Y: 12}, {X: 2, Y: 12}, {X: 22, Y: 12}, {X: 23, Y: 12}, {X: 22, Y: 11},
}

var defaultSupports = []arena.Cell{
	{X: 14, Y: 2},
}

// DefaultOpeningBook is the bundled default opening, registered for
// lookup by name "default".
var DefaultOpeningBook = OpeningBook{
	Name:     "default",
	Walls:    defaultWalls,
	Turrets:  defaultTurrets,
	Supports: defaultSupports,
}

var openingBooks = map[string]OpeningBook{
	"default": DefaultOpeningBook,
}

// OpeningBookByName looks up a registered opening book, falling back to
// DefaultOpeningBook when name is unrecognized.
func OpeningBookByName(name string) OpeningBook {
	if ob, ok := openingBooks[name]; ok {
		return ob
	}
	return DefaultOpeningBook
}

// Placements expands the opening book into build-queue placements with
// cost-ascending priorities: walls first, then turrets, then supports,
// matching the original's build order (walls before turrets before
// supports, per original_source/defensive-algo/algo_strategy.py).
func (ob OpeningBook) Placements() []buildqueue.Placement {
	var out []buildqueue.Placement
	priority := 0.0
	for _, c := range ob.Walls {
		out = append(out, buildqueue.Placement{Kind: buildqueue.PlacementBuild, UnitKind: catalog.Wall, Cell: c, Priority: priority})
		priority++
	}
	for _, c := range ob.Turrets {
		out = append(out, buildqueue.Placement{Kind: buildqueue.PlacementBuild, UnitKind: catalog.Turret, Cell: c, Priority: priority})
		priority++
	}
	for _, c := range ob.Supports {
		out = append(out, buildqueue.Placement{Kind: buildqueue.PlacementBuild, UnitKind: catalog.Support, Cell: c, Priority: priority})
		priority++
	}
	return out
}

// CriticalInfrastructure returns the placements that make up the
// invariant defensive backbone — by default, every opening-book
// placement (matching the original's base_defences, which is the union
// of wall_list and turrent_list; this implementation folds supports in
// too since a lost Support degrades the whole shield plan).
func (ob OpeningBook) CriticalInfrastructure() []buildqueue.Placement {
	return ob.Placements()
}
