// Package eval implements the deterministic scoring function used to
// rank simulated end states (spec.md §4.9), plus an optional neural
// adjuster (internal/eval/neural) that blends additively into the score
// when a model is configured. The hand-weighted formula remains the
// default and the contract: total, deterministic, and monotone in
// own-health and own-structure counts.
package eval

import (
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

// Adjuster optionally nudges a base score. Implemented by
// internal/eval/neural.Model; nil means "no adjustment".
type Adjuster interface {
	Adjust(g *gamemap.GameMap, owner int, base float64) float64
}

// Score computes spec.md §4.9's scoring function:
//
//	score = (my_health - enemy_health)
//	      + 0.3*(my_turrets - opp_turrets)
//	      + 0.2*(my_supports - opp_supports)
//	      + 0.1*(my_walls - opp_walls)
//
// owner is "my" side. If adj is non-nil its output is added to the
// base score; a nil or failing adjuster never changes the result.
func Score(g *gamemap.GameMap, owner int, myHealth, oppHealth float64, adj Adjuster) float64 {
	myTurrets, oppTurrets := 0, 0
	mySupports, oppSupports := 0, 0
	myWalls, oppWalls := 0, 0

	for _, u := range g.AllUnits() {
		if !u.IsAlive() {
			continue
		}
		mine := u.Owner == owner
		switch u.Kind {
		case catalog.Turret:
			if mine {
				myTurrets++
			} else {
				oppTurrets++
			}
		case catalog.Support:
			if mine {
				mySupports++
			} else {
				oppSupports++
			}
		case catalog.Wall:
			if mine {
				myWalls++
			} else {
				oppWalls++
			}
		}
	}

	base := (myHealth - oppHealth) +
		0.3*float64(myTurrets-oppTurrets) +
		0.2*float64(mySupports-oppSupports) +
		0.1*float64(myWalls-oppWalls)

	if adj == nil {
		return base
	}
	return base + adj.Adjust(g, owner, base)
}
