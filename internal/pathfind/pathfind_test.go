package pathfind

import (
	"testing"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

func TestComputePath_StartsAtSourceAndEndsOnTargetEdge(t *testing.T) {
	g := gamemap.New()
	source := arena.Cell{X: 13, Y: 0}
	path := ComputePath(g, source, arena.EdgeTopRight)

	if len(path) == 0 || path[0] != source {
		t.Fatalf("path must start at source %v, got %v", source, path)
	}
	last := path[len(path)-1]
	if e, ok := arena.EdgeOf(last); !ok || e != arena.EdgeTopRight {
		t.Errorf("path should end on the target edge, ended at %v", last)
	}
}

func TestComputePath_ConsecutiveCellsAreAdjacent(t *testing.T) {
	g := gamemap.New()
	source := arena.Cell{X: 13, Y: 0}
	path := ComputePath(g, source, arena.EdgeTopLeft)
	for i := 1; i < len(path); i++ {
		if arena.ManhattanDistance(path[i-1], path[i]) != 1 {
			t.Fatalf("path step %d->%d is not a single cardinal move: %v -> %v", i-1, i, path[i-1], path[i])
		}
	}
}

func TestComputePath_NoPathReturnsSingleCellSource(t *testing.T) {
	source := arena.Cell{X: 13, Y: 13}
	g := gamemap.New()
	if e, ok := arena.EdgeOf(source); ok {
		t.Fatalf("test setup expects a non-edge source cell, but %v is on edge %v", source, e)
	}

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c := arena.Cell{X: source.X + dx, Y: source.Y + dy}
			if arena.InArena(c) {
				g.AddUnit(catalog.Wall, c, 0, false)
			}
		}
	}

	path := ComputePath(g, source, arena.EdgeTopRight)
	if len(path) != 1 || path[0] != source {
		t.Errorf("expected a fully boxed-in unit to get the single-cell stub path, got %v", path)
	}
}

func TestRepath_UpdatesUnitCurrentPath(t *testing.T) {
	g := gamemap.New()
	u, err := g.AddUnit(catalog.Scout, arena.Cell{X: 13, Y: 0}, 0, false)
	if err != nil {
		t.Fatalf("place scout: %v", err)
	}
	u.TargetEdge = arena.EdgeTopRight

	Repath(g, u)
	if len(u.CurrentPath) == 0 {
		t.Fatal("expected Repath to populate CurrentPath")
	}
	if u.CurrentPath[0] != u.Cell {
		t.Errorf("CurrentPath should start at the unit's current cell %v, got %v", u.Cell, u.CurrentPath[0])
	}
}
