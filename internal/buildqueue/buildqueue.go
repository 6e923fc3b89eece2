// Package buildqueue implements the Defense Build Queue (spec.md §4.7):
// a min-heap of (priority, placement) with FIFO tie-breaking, plus
// critical-infrastructure reconciliation and thunder-strike mode. The
// heap shape is grounded on the teacher's container/heap-based
// comboHeap in internal/bot/search_util.go — same "binary heap of
// scored entries with deterministic tie-break" pattern, different
// payload.
package buildqueue

import (
	"container/heap"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

// PlacementKind distinguishes a fresh build from an upgrade of an
// existing structure.
type PlacementKind int

const (
	PlacementBuild PlacementKind = iota
	PlacementUpgrade
)

// Placement is a tagged record for the build queue.
type Placement struct {
	Kind     PlacementKind
	UnitKind catalog.Kind
	Cell     arena.Cell
	Priority float64 // lower = earlier
}

// entry wraps a Placement with an insertion sequence number so that
// equal-priority entries pop in FIFO order — per spec.md §9's explicit
// instruction ("pick stable and document it").
type entry struct {
	placement Placement
	seq       int
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].placement.Priority != h[j].placement.Priority {
		return h[i].placement.Priority < h[j].placement.Priority
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is the priority-ordered set of pending placements.
type Queue struct {
	h       entryHeap
	seq     int
	storedPriority map[arena.Cell]float64 // per spec.md §4.7: remember priority_of(placement)
}

// New returns an empty build queue.
func New() *Queue {
	return &Queue{storedPriority: map[arena.Cell]float64{}}
}

// Push enqueues a placement, recording its priority for future re-enqueue.
func (q *Queue) Push(p Placement) {
	heap.Push(&q.h, entry{placement: p, seq: q.seq})
	q.seq++
	q.storedPriority[p.Cell] = p.Priority
}

// PriorityOf returns the recorded priority for cell, or ok=false if
// nothing has ever been placed there.
func (q *Queue) PriorityOf(c arena.Cell) (float64, bool) {
	p, ok := q.storedPriority[c]
	return p, ok
}

// Len reports the number of pending placements.
func (q *Queue) Len() int { return q.h.Len() }

// DrainResult reports what happened in one Drain call.
type DrainResult struct {
	Applied []Placement
	Stopped bool // true if draining stopped early (affordability or legality)
}

// Drain pops placements lowest-priority-first and applies them against
// g, spending from sp, until affordability fails (the item is pushed
// back and draining stops — spec.md: "do not skip-and-continue") or the
// queue empties.
func Drain(q *Queue, g *gamemap.GameMap, owner int, sp *float64) DrainResult {
	var res DrainResult
	for q.Len() > 0 {
		top := heap.Pop(&q.h).(entry)
		p := top.placement

		switch p.Kind {
		case PlacementBuild:
			stats := catalog.StatsFor(p.UnitKind, false)
			if stats.CostSP > *sp {
				heap.Push(&q.h, top)
				res.Stopped = true
				return res
			}
			if !arena.InArena(p.Cell) || g.ContainsStructure(p.Cell) {
				// Legality failure that isn't affordability: re-queue and stop.
				heap.Push(&q.h, top)
				res.Stopped = true
				return res
			}
			if _, err := g.AddUnit(p.UnitKind, p.Cell, owner, false); err != nil {
				heap.Push(&q.h, top)
				res.Stopped = true
				return res
			}
			*sp -= stats.CostSP
			res.Applied = append(res.Applied, p)

		case PlacementUpgrade:
			units := g.UnitsAt(p.Cell)
			if len(units) == 0 {
				// Cell is empty: push a synthetic Build at slightly higher
				// priority (i.e. drained sooner) and stop this iteration.
				heap.Push(&q.h, entry{
					placement: Placement{Kind: PlacementBuild, UnitKind: p.UnitKind, Cell: p.Cell, Priority: p.Priority - 0.001},
					seq:       q.seq,
				})
				q.seq++
				res.Stopped = true
				return res
			}
			u := units[0]
			if u.Upgraded {
				// Already upgraded: no-op per spec.md §8, not a re-charge.
				res.Applied = append(res.Applied, p)
				continue
			}
			stats := catalog.StatsFor(u.Kind, true)
			if stats.UpgradeCostSP > *sp {
				heap.Push(&q.h, top)
				res.Stopped = true
				return res
			}
			*sp -= stats.UpgradeCostSP
			u.Upgraded = true
			fresh := catalog.StatsFor(u.Kind, true)
			u.MaxHealth = fresh.Health
			u.Health = fresh.Health
			res.Applied = append(res.Applied, p)
		}
	}
	return res
}

// CriticalSet names the structures treated as invariant defense: the
// hand-picked backbone that gets eagerly re-enqueued whenever missing.
type CriticalSet struct {
	members map[arena.Cell]Placement
	excised map[arena.Cell]bool // thunder-strike: temporarily excised members
}

// NewCriticalSet returns an empty critical-infrastructure set.
func NewCriticalSet() *CriticalSet {
	return &CriticalSet{members: map[arena.Cell]Placement{}, excised: map[arena.Cell]bool{}}
}

// Add registers a placement as part of the critical infrastructure.
func (c *CriticalSet) Add(p Placement) {
	c.members[p.Cell] = p
}

// ThunderStrike temporarily excises the given front-edge wall cells
// from the critical set, opening a hole for an offensive push.
func (c *CriticalSet) ThunderStrike(cells []arena.Cell) {
	for _, cell := range cells {
		c.excised[cell] = true
	}
}

// EndThunderStrike restores all excised members to the critical set.
func (c *CriticalSet) EndThunderStrike() {
	c.excised = map[arena.Cell]bool{}
}

// StandingUpgrades returns Upgrade placements, at each member's recorded
// priority, for critical-infrastructure cells that are currently built
// and not yet upgraded — the wiring spec.md §4.7's Upgrade operation
// needs to ever actually run during play rather than sit unreachable
// behind Drain's PlacementUpgrade case. Entries are ordered by priority
// then cell for a stable, deterministic enqueue order.
func (c *CriticalSet) StandingUpgrades(g *gamemap.GameMap) []Placement {
	var out []Placement
	for cell, p := range c.members {
		if c.excised[cell] {
			continue
		}
		units := g.UnitsAt(cell)
		if len(units) == 0 || units[0].Upgraded {
			continue
		}
		out = append(out, Placement{Kind: PlacementUpgrade, UnitKind: p.UnitKind, Cell: cell, Priority: p.Priority})
	}
	for i := 1; i < len(out); i++ {
		key := out[i]
		j := i - 1
		for j >= 0 && less(key, out[j]) {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = key
	}
	return out
}

func less(a, b Placement) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.Cell.X != b.Cell.X {
		return a.Cell.X < b.Cell.X
	}
	return a.Cell.Y < b.Cell.Y
}

// Reconcile checks the live map against the critical set and re-enqueues
// any missing member at its stored priority (or the set's own recorded
// priority if the queue has since forgotten it, e.g. after a fresh
// clone).
func Reconcile(c *CriticalSet, q *Queue, g *gamemap.GameMap) []Placement {
	var reenqueued []Placement
	for cell, p := range c.members {
		if c.excised[cell] {
			continue
		}
		if g.ContainsStructure(cell) {
			continue
		}
		priority := p.Priority
		if stored, ok := q.PriorityOf(cell); ok {
			priority = stored
		}
		placement := Placement{Kind: PlacementBuild, UnitKind: p.UnitKind, Cell: cell, Priority: priority}
		q.Push(placement)
		reenqueued = append(reenqueued, placement)
	}
	return reenqueued
}
