package arena

import "testing"

func TestReflect_Involutive(t *testing.T) {
	cells := []Cell{{X: 0, Y: 13}, {X: 27, Y: 14}, {X: 13, Y: 13}, {X: 5, Y: 22}}
	for _, c := range cells {
		got := Reflect(Reflect(c))
		if got != c {
			t.Errorf("Reflect(Reflect(%v)) = %v, want %v", c, got, c)
		}
	}
}

func TestReflect_Corners(t *testing.T) {
	if got := Reflect(Cell{X: 0, Y: 0}); got != (Cell{X: 27, Y: 27}) {
		t.Errorf("Reflect(0,0) = %v, want (27,27)", got)
	}
}

func TestInArena_DiamondBoundary(t *testing.T) {
	if !InArena(Cell{X: 13, Y: 13}) {
		t.Error("center-ish cell should be in arena")
	}
	if InArena(Cell{X: 0, Y: 0}) {
		t.Error("corner cell should be outside the diamond")
	}
	if InArena(Cell{X: -1, Y: 13}) {
		t.Error("negative coordinate should be outside the arena")
	}
}

func TestEdgeOf_FriendlyOpponentDisjoint(t *testing.T) {
	for _, owner := range []int{0, 1} {
		friendly := FriendlyEdgesFor(owner)
		opponent := OpponentEdgesFor(owner)
		for _, fe := range friendly {
			for _, oe := range opponent {
				if fe == oe {
					t.Fatalf("owner %d: friendly edge %v overlaps opponent edge", owner, fe)
				}
			}
		}
	}
}

func TestManhattanDistance_Symmetric(t *testing.T) {
	a := Cell{X: 3, Y: 9}
	b := Cell{X: 10, Y: 2}
	if ManhattanDistance(a, b) != ManhattanDistance(b, a) {
		t.Error("Manhattan distance should be symmetric")
	}
	if ManhattanDistance(a, a) != 0 {
		t.Error("distance to self should be zero")
	}
}

func FuzzReflect_Involutive(f *testing.F) {
	f.Add(0, 13)
	f.Add(27, 14)
	f.Add(13, 13)
	f.Add(-5, 40)
	f.Fuzz(func(t *testing.T, x, y int) {
		c := Cell{X: x, Y: y}
		if got := Reflect(Reflect(c)); got != c {
			t.Errorf("Reflect(Reflect(%v)) = %v, want %v", c, got, c)
		}
	})
}

func TestCellsInRadius_ExcludesOutOfRange(t *testing.T) {
	center := Cell{X: 13, Y: 13}
	cells := CellsInRadius(center, 1.5)
	for _, c := range cells {
		if Distance(center, c) > 1.5+1e-9 {
			t.Errorf("cell %v is outside radius 1.5 from %v", c, center)
		}
	}
}
