package simulate

import (
	"testing"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

func TestRunTurn_EmptyMapTerminatesAtFrameOne(t *testing.T) {
	g := gamemap.New()
	sim := New()
	res := sim.RunTurn(g, 30, 30)

	if res.Frames != 1 {
		t.Errorf("expected an empty map to terminate at frame 1, got %d", res.Frames)
	}
	if res.MyHealth != 30 || res.OppHealth != 30 {
		t.Errorf("expected health unchanged with no units, got my=%v opp=%v", res.MyHealth, res.OppHealth)
	}
}

func TestRunTurn_ScoutAlreadyOnOpponentEdgeScoresImmediately(t *testing.T) {
	g := gamemap.New()
	edgeCell := arena.EdgeSet(arena.EdgeTopRight)[0]
	u, err := g.AddUnit(catalog.Scout, edgeCell, 0, false)
	if err != nil {
		t.Fatalf("place scout: %v", err)
	}
	u.TargetEdge = arena.EdgeTopRight

	sim := New()
	res := sim.RunTurn(g, 30, 30)

	if res.OppHealth != 29 {
		t.Errorf("expected opponent to lose 1 health from the scored scout, got %v", res.OppHealth)
	}
	if res.MyHealth != 30 {
		t.Errorf("expected owner 0's own health untouched, got %v", res.MyHealth)
	}
}

func TestRunTurn_NeverExceedsMaxFrames(t *testing.T) {
	g := gamemap.New()
	u, err := g.AddUnit(catalog.Scout, arena.Cell{X: 13, Y: 0}, 0, false)
	if err != nil {
		t.Fatalf("place scout: %v", err)
	}
	u.TargetEdge = arena.EdgeTopRight

	sim := New()
	res := sim.RunTurn(g, 30, 30)
	if res.Frames > MaxFrames {
		t.Errorf("simulation ran %d frames, exceeding the %d cap", res.Frames, MaxFrames)
	}
}

func TestRunTurn_HealthNeverIncreases(t *testing.T) {
	g := gamemap.New()
	for i := 0; i < 3; i++ {
		u, err := g.AddUnit(catalog.Scout, arena.Cell{X: 13 + i, Y: 1}, 0, false)
		if err != nil {
			t.Fatalf("place scout %d: %v", i, err)
		}
		u.TargetEdge = arena.EdgeTopRight
	}

	sim := New()
	res := sim.RunTurn(g, 30, 30)
	if res.MyHealth > 30 {
		t.Errorf("my health must never increase during simulation, got %v", res.MyHealth)
	}
	if res.OppHealth > 30 {
		t.Errorf("opponent health must never increase during simulation, got %v", res.OppHealth)
	}
}

func TestShieldPhase_ShieldsEachMobileUnitOncePerSupport(t *testing.T) {
	g := gamemap.New()
	support, err := g.AddUnit(catalog.Support, arena.Cell{X: 13, Y: 13}, 0, false)
	if err != nil {
		t.Fatalf("place support: %v", err)
	}
	mobile, err := g.AddUnit(catalog.Scout, arena.Cell{X: 13, Y: 14}, 0, false)
	if err != nil {
		t.Fatalf("place scout: %v", err)
	}
	before := mobile.Health

	sim := New()
	sim.shieldPhase(g)
	sim.shieldPhase(g)

	stats := catalog.StatsFor(catalog.Support, false)
	want := before + stats.ShieldPerUnit
	if mobile.Health != want {
		t.Errorf("expected shield applied exactly once despite two shieldPhase calls, got health %v want %v", mobile.Health, want)
	}
	_ = support
}

func TestSelfDestructPhase_NoDamageBelowTravelThreshold(t *testing.T) {
	g := gamemap.New()
	u, err := g.AddUnit(catalog.Interceptor, arena.Cell{X: 13, Y: 13}, 0, false)
	if err != nil {
		t.Fatalf("place interceptor: %v", err)
	}
	victim, err := g.AddUnit(catalog.Scout, arena.Cell{X: 13, Y: 14}, 1, false)
	if err != nil {
		t.Fatalf("place victim: %v", err)
	}
	before := victim.Health

	sim := New()
	sim.selfDestructPhase(g, []*gamemap.Unit{u})

	if victim.Health != before {
		t.Errorf("expected no self-destruct damage when travel distance is under 5, victim health changed from %v to %v", before, victim.Health)
	}
	if units := g.UnitsAt(u.Cell); len(units) != 0 {
		t.Error("expected the self-destructing unit removed from the map regardless of travel distance")
	}
}

// FuzzRunTurn_Deterministic checks spec.md §8's determinism property:
// two simulators stepping through identically-built maps from the same
// seed must reach byte-identical results, regardless of the seed.
func FuzzRunTurn_Deterministic(f *testing.F) {
	f.Add(0)
	f.Add(3)
	f.Add(26)
	f.Fuzz(func(t *testing.T, seed int) {
		build := func() *gamemap.GameMap {
			g := gamemap.New()
			col := 1 + (seed%26+26)%26 // keep within the 1..26 in-arena column band
			for i := 0; i < 3; i++ {
				u, err := g.AddUnit(catalog.Scout, arena.Cell{X: col, Y: i}, 0, false)
				if err != nil {
					continue
				}
				u.TargetEdge = arena.EdgeTopRight
			}
			return g
		}

		first := New().RunTurn(build(), 30, 30)
		second := New().RunTurn(build(), 30, 30)

		if first != second {
			t.Errorf("identical inputs produced divergent results: %+v vs %+v", first, second)
		}
	})
}

func TestSelfDestructPhase_DamagesNearbyUnitsPastThreshold(t *testing.T) {
	g := gamemap.New()
	u, err := g.AddUnit(catalog.Interceptor, arena.Cell{X: 20, Y: 13}, 0, false)
	if err != nil {
		t.Fatalf("place interceptor: %v", err)
	}
	u.InitialCell = arena.Cell{X: 13, Y: 13} // 7 Manhattan cells traveled
	victim, err := g.AddUnit(catalog.Scout, arena.Cell{X: 20, Y: 14}, 1, false)
	if err != nil {
		t.Fatalf("place victim: %v", err)
	}

	sim := New()
	sim.selfDestructPhase(g, []*gamemap.Unit{u})

	if victim.IsAlive() {
		t.Errorf("expected self-destruct damage (1.5x max health) to kill the nearby low-health victim, health now %v", victim.Health)
	}
}
