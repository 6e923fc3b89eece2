package buildqueue

import (
	"testing"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

func TestQueue_DrainsLowestPriorityFirst(t *testing.T) {
	q := New()
	low := Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: arena.Cell{X: 13, Y: 13}, Priority: 5}
	high := Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: arena.Cell{X: 14, Y: 13}, Priority: 1}
	q.Push(low)
	q.Push(high)

	g := gamemap.New()
	sp := 100.0
	res := Drain(q, g, 0, &sp)

	if len(res.Applied) != 2 {
		t.Fatalf("expected both placements applied, got %d", len(res.Applied))
	}
	if res.Applied[0].Cell != high.Cell {
		t.Errorf("expected lowest-priority placement drained first, got %v", res.Applied[0].Cell)
	}
}

func TestQueue_FIFOTiebreakOnEqualPriority(t *testing.T) {
	q := New()
	first := Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: arena.Cell{X: 13, Y: 13}, Priority: 1}
	second := Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: arena.Cell{X: 14, Y: 13}, Priority: 1}
	q.Push(first)
	q.Push(second)

	g := gamemap.New()
	sp := 100.0
	res := Drain(q, g, 0, &sp)

	if len(res.Applied) != 2 || res.Applied[0].Cell != first.Cell || res.Applied[1].Cell != second.Cell {
		t.Errorf("expected FIFO order among equal-priority entries, got %+v", res.Applied)
	}
}

func TestDrain_StopsAndRequeuesOnUnaffordable(t *testing.T) {
	q := New()
	q.Push(Placement{Kind: PlacementBuild, UnitKind: catalog.Turret, Cell: arena.Cell{X: 13, Y: 13}, Priority: 1})
	q.Push(Placement{Kind: PlacementBuild, UnitKind: catalog.Turret, Cell: arena.Cell{X: 14, Y: 13}, Priority: 2})

	g := gamemap.New()
	sp := 0.0 // cannot afford anything
	res := Drain(q, g, 0, &sp)

	if len(res.Applied) != 0 {
		t.Errorf("expected no placements applied with zero SP, got %d", len(res.Applied))
	}
	if !res.Stopped {
		t.Error("expected Drain to report Stopped on unaffordable head")
	}
	if q.Len() != 2 {
		t.Errorf("expected the unaffordable placement requeued, queue len = %d", q.Len())
	}
}

func TestDrain_UpgradeSpendsAndMarksUnit(t *testing.T) {
	g := gamemap.New()
	cell := arena.Cell{X: 13, Y: 13}
	g.AddUnit(catalog.Turret, cell, 0, false)

	q := New()
	q.Push(Placement{Kind: PlacementUpgrade, UnitKind: catalog.Turret, Cell: cell, Priority: 1})

	sp := 100.0
	res := Drain(q, g, 0, &sp)

	if len(res.Applied) != 1 {
		t.Fatalf("expected the upgrade applied, got %d", len(res.Applied))
	}
	u := g.UnitsAt(cell)[0]
	if !u.Upgraded {
		t.Error("expected the turret marked upgraded")
	}
	want := catalog.StatsFor(catalog.Turret, true).UpgradeCostSP
	if sp != 100.0-want {
		t.Errorf("expected sp spent = %v, got remaining %v", want, sp)
	}
}

func TestDrain_UpgradeOfAlreadyUpgradedUnitIsANoOp(t *testing.T) {
	g := gamemap.New()
	cell := arena.Cell{X: 13, Y: 13}
	u, _ := g.AddUnit(catalog.Turret, cell, 0, false)
	u.Upgraded = true
	upgradedStats := catalog.StatsFor(catalog.Turret, true)
	u.MaxHealth = upgradedStats.Health
	u.Health = upgradedStats.Health

	q := New()
	q.Push(Placement{Kind: PlacementUpgrade, UnitKind: catalog.Turret, Cell: cell, Priority: 1})

	sp := 100.0
	res := Drain(q, g, 0, &sp)

	if len(res.Applied) != 1 {
		t.Fatalf("expected the no-op upgrade still reported applied, got %d", len(res.Applied))
	}
	if sp != 100.0 {
		t.Errorf("expected no SP spent re-upgrading an already-upgraded unit, sp = %v", sp)
	}
	if u.Health != upgradedStats.Health {
		t.Errorf("expected health unchanged by a repeated upgrade, got %v want %v", u.Health, upgradedStats.Health)
	}
}

func TestDrain_UpgradeOfEmptyCellRequeuesAsBuild(t *testing.T) {
	g := gamemap.New()
	cell := arena.Cell{X: 13, Y: 13}

	q := New()
	q.Push(Placement{Kind: PlacementUpgrade, UnitKind: catalog.Turret, Cell: cell, Priority: 1})

	sp := 100.0
	res := Drain(q, g, 0, &sp)

	if len(res.Applied) != 0 {
		t.Errorf("expected no placement applied for an upgrade of an empty cell, got %d", len(res.Applied))
	}
	if q.Len() != 1 {
		t.Fatalf("expected a synthetic build requeued, queue len = %d", q.Len())
	}
}

func TestStandingUpgrades_SkipsMissingExcisedAndAlreadyUpgraded(t *testing.T) {
	c := NewCriticalSet()
	built := arena.Cell{X: 13, Y: 13}
	missing := arena.Cell{X: 14, Y: 13}
	excised := arena.Cell{X: 15, Y: 13}
	alreadyUpgraded := arena.Cell{X: 16, Y: 13}
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: built, Priority: 2})
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: missing, Priority: 1})
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: excised, Priority: 0})
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: alreadyUpgraded, Priority: 3})
	c.ThunderStrike([]arena.Cell{excised})

	g := gamemap.New()
	g.AddUnit(catalog.Wall, built, 0, false)
	g.AddUnit(catalog.Wall, excised, 0, false)
	u, _ := g.AddUnit(catalog.Wall, alreadyUpgraded, 0, false)
	u.Upgraded = true

	ups := c.StandingUpgrades(g)
	if len(ups) != 1 || ups[0].Cell != built {
		t.Errorf("expected exactly one upgrade for the standing, non-excised, non-upgraded member, got %+v", ups)
	}
}

func TestReconcile_ReenqueuesMissingCriticalMembers(t *testing.T) {
	c := NewCriticalSet()
	cell := arena.Cell{X: 13, Y: 13}
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: cell, Priority: 0})

	q := New()
	g := gamemap.New()

	reenqueued := Reconcile(c, q, g)
	if len(reenqueued) != 1 {
		t.Fatalf("expected the missing critical wall reenqueued, got %d", len(reenqueued))
	}
	if q.Len() != 1 {
		t.Errorf("expected queue to contain the reenqueued placement, len = %d", q.Len())
	}
}

func TestReconcile_SkipsExcisedMembersDuringThunderStrike(t *testing.T) {
	c := NewCriticalSet()
	cell := arena.Cell{X: 13, Y: 13}
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: cell, Priority: 0})
	c.ThunderStrike([]arena.Cell{cell})

	q := New()
	g := gamemap.New()

	reenqueued := Reconcile(c, q, g)
	if len(reenqueued) != 0 {
		t.Errorf("expected an excised member to be skipped during thunder strike, got %+v", reenqueued)
	}

	c.EndThunderStrike()
	reenqueued = Reconcile(c, q, g)
	if len(reenqueued) != 1 {
		t.Errorf("expected the member restored after EndThunderStrike, got %+v", reenqueued)
	}
}

func TestReconcile_SkipsMembersAlreadyPresent(t *testing.T) {
	c := NewCriticalSet()
	cell := arena.Cell{X: 13, Y: 13}
	c.Add(Placement{Kind: PlacementBuild, UnitKind: catalog.Wall, Cell: cell, Priority: 0})

	g := gamemap.New()
	g.AddUnit(catalog.Wall, cell, 0, false)
	q := New()

	reenqueued := Reconcile(c, q, g)
	if len(reenqueued) != 0 {
		t.Errorf("expected no reenqueue when the structure is already standing, got %+v", reenqueued)
	}
}
