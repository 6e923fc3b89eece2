package eval

import (
	"testing"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

func TestScore_MonotoneInOwnHealth(t *testing.T) {
	g := gamemap.New()
	low := Score(g, 0, 10, 20, nil)
	high := Score(g, 0, 20, 20, nil)
	if !(high > low) {
		t.Errorf("expected score to increase with own health: low=%v high=%v", low, high)
	}
}

func TestScore_MonotoneInOwnTurretCount(t *testing.T) {
	g := gamemap.New()
	base := Score(g, 0, 20, 20, nil)

	g.AddUnit(catalog.Turret, arena.Cell{X: 13, Y: 13}, 0, false)
	withTurret := Score(g, 0, 20, 20, nil)

	if !(withTurret > base) {
		t.Errorf("expected score to increase with an extra owned turret: base=%v withTurret=%v", base, withTurret)
	}
}

func TestScore_OpponentStructuresLowerScore(t *testing.T) {
	g := gamemap.New()
	base := Score(g, 0, 20, 20, nil)

	g.AddUnit(catalog.Turret, arena.Cell{X: 13, Y: 13}, 1, false)
	withOppTurret := Score(g, 0, 20, 20, nil)

	if !(withOppTurret < base) {
		t.Errorf("expected score to decrease with an opponent turret: base=%v withOppTurret=%v", base, withOppTurret)
	}
}

func TestScore_NilAdjusterLeavesBaseUnchanged(t *testing.T) {
	g := gamemap.New()
	if got := Score(g, 0, 15, 10, nil); got != 5 {
		t.Errorf("expected base health delta score 5, got %v", got)
	}
}

type stubAdjuster struct{ delta float64 }

func (s stubAdjuster) Adjust(g *gamemap.GameMap, owner int, base float64) float64 { return s.delta }

func TestScore_AdjusterAddsToBase(t *testing.T) {
	g := gamemap.New()
	base := Score(g, 0, 15, 10, nil)
	adjusted := Score(g, 0, 15, 10, stubAdjuster{delta: 2.5})
	if adjusted != base+2.5 {
		t.Errorf("expected adjuster's delta added to base score: base=%v adjusted=%v", base, adjusted)
	}
}
