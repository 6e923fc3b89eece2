// Package targeting implements the engine's 5-rule attack target
// selection and damage application (spec.md §4.5). Kept as an
// independently unit-tested module per the spec's design note: any
// divergence found in live play should be resolved against the
// engine's documentation, not guessed at.
package targeting

import (
	"sort"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

// SelectTarget picks attacker's current target among all live enemy
// units within its attack range, per spec.md §4.5 rule (a)-(e). Returns
// nil if there is no eligible target.
func SelectTarget(g *gamemap.GameMap, attacker *gamemap.Unit) *gamemap.Unit {
	stats := catalog.StatsFor(attacker.Kind, attacker.Upgraded)
	if stats.AttackRange <= 0 {
		return nil
	}

	candidates := g.UnitsInRange(attacker.Cell, stats.AttackRange)
	var enemies []*gamemap.Unit
	for _, u := range candidates {
		if u.Owner != attacker.Owner && u.IsAlive() {
			enemies = append(enemies, u)
		}
	}
	if len(enemies) == 0 {
		return nil
	}

	sort.SliceStable(enemies, func(i, j int) bool {
		return rankLess(attacker, enemies[i], enemies[j])
	})
	return enemies[0]
}

// rankLess reports whether a outranks (is preferred over) b as a target
// for attacker, per spec.md §4.5: (a) mobile before structure, (b)
// closer before farther, (c) lower health before higher, (d) farther
// into the defender's territory, (e) nearer a diamond edge.
func rankLess(attacker, a, b *gamemap.Unit) bool {
	am, bm := a.Kind.IsMobile(), b.Kind.IsMobile()
	if am != bm {
		return am
	}

	da, db := arena.Distance(attacker.Cell, a.Cell), arena.Distance(attacker.Cell, b.Cell)
	if da != db {
		return da < db
	}

	if a.Health != b.Health {
		return a.Health < b.Health
	}

	depthA, depthB := depthInto(attacker.Owner, a), depthInto(attacker.Owner, b)
	if depthA != depthB {
		return depthA > depthB
	}

	return nearestEdgeDistance(a) < nearestEdgeDistance(b)
}

// depthInto scores how far a defending unit (relative to attacker's
// owner) sits into its own territory: y descending for owner 0's
// targets (i.e. defender owner 1, whose home is high y), ascending for
// owner 1's targets.
func depthInto(attackerOwner int, target *gamemap.Unit) int {
	if attackerOwner == 0 {
		return target.Cell.Y
	}
	return -target.Cell.Y
}

// nearestEdgeDistance returns the Manhattan distance from u's cell to
// the nearest diamond edge cell, used as the final tiebreak.
func nearestEdgeDistance(u *gamemap.Unit) int {
	best := -1
	for e := arena.EdgeTopRight; e <= arena.EdgeBottomRight; e++ {
		for _, c := range arena.EdgeSet(e) {
			d := arena.ManhattanDistance(u.Cell, c)
			if best < 0 || d < best {
				best = d
			}
		}
	}
	return best
}

// ApplyAttack resolves one attacker's attack this frame: selects a
// target, applies the appropriate damage, and removes it if its health
// falls to zero or below. Returns whether a structure was destroyed
// (the simulator uses this to decide whether to repath next frame).
func ApplyAttack(g *gamemap.GameMap, attacker *gamemap.Unit) (structureDestroyed bool) {
	target := SelectTarget(g, attacker)
	if target == nil {
		return false
	}
	stats := catalog.StatsFor(attacker.Kind, attacker.Upgraded)
	var dmg float64
	if target.Kind.IsMobile() {
		dmg = stats.DamageVsMobile
	} else {
		dmg = stats.DamageVsStructure
	}
	target.Health -= dmg
	if target.Health <= 0 {
		g.RemoveOne(target.Cell, target)
		if target.Kind.IsStructure() {
			return true
		}
	}
	return false
}
