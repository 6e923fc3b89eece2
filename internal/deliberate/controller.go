// Package deliberate implements the Deliberation Controller (spec.md
// §4.9): the per-turn orchestrator that reconciles critical
// infrastructure, drains the build queue, searches candidate attacks
// and interceptor responses under a wall-clock budget using the
// action-frame simulator, and commits the best plan found. The
// time-budgeted candidate search is grounded on the teacher's
// internal/bot/search_util.go searchTopN: deadline checked between
// candidates, each candidate simulated on its own Clone() of the map,
// deterministic tie-break (lowest candidate index wins).
package deliberate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/buildqueue"
	"github.com/OliverWarwick/terminal-bot/internal/candidates"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/eval"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
	"github.com/OliverWarwick/terminal-bot/internal/simulate"
	"github.com/OliverWarwick/terminal-bot/internal/telemetry"
)

// Controller holds the in-memory scratch state retained across turns
// within a single game: the build queue, the critical-infrastructure
// set, and the scored-on-locations log (spec.md §6 "within a game it
// retains in-memory scratch"; the scored-on log is supplemented from
// original_source per SPEC_FULL.md §12).
type Controller struct {
	Log       zerolog.Logger
	Telemetry *telemetry.Broadcaster
	Adjuster  eval.Adjuster

	Queue    *buildqueue.Queue
	Critical *buildqueue.CriticalSet
	Opening  OpeningBook

	RepairBudget      time.Duration
	InterceptorBudget time.Duration
	AttackBudget      time.Duration

	scoredOnLocations []arena.Cell
	thunderReady      bool
}

// NewController builds a Controller seeded with ob's opening book as
// the initial critical infrastructure.
func NewController(ob OpeningBook, repairBudget, interceptorBudget, attackBudget time.Duration) *Controller {
	c := &Controller{
		Queue:             buildqueue.New(),
		Critical:          buildqueue.NewCriticalSet(),
		Opening:           ob,
		RepairBudget:      repairBudget,
		InterceptorBudget: interceptorBudget,
		AttackBudget:      attackBudget,
		Log:               zerolog.Nop(),
	}
	for _, p := range ob.CriticalInfrastructure() {
		c.Critical.Add(p)
	}
	return c
}

// TurnPlan summarizes everything the controller decided to do this turn.
type TurnPlan struct {
	BuildsApplied       []buildqueue.Placement
	InterceptorPlacements []candidates.Spawn
	Attack              *candidates.Plan
}

// RunTurn executes spec.md §4.9's five steps against g, mutating g with
// the committed build placements and interceptor spawns (the attack
// plan itself is returned for the caller to submit as spawn commands,
// since spec.md's wire protocol issues spawns as outbound commands
// rather than direct map mutation).
func (c *Controller) RunTurn(ctx context.Context, g *gamemap.GameMap, myHealth, oppHealth, mySP, myMP, oppMP float64, turn int) TurnPlan {
	var plan TurnPlan

	// Step 1: reconcile critical infrastructure, drain the build queue.
	buildqueue.Reconcile(c.Critical, c.Queue, g)
	sp := mySP
	drain := buildqueue.Drain(c.Queue, g, 0, &sp)
	plan.BuildsApplied = append(plan.BuildsApplied, drain.Applied...)

	// Step 1b: queue an upgrade for every critical-infrastructure member
	// that is standing but not yet upgraded (at that member's priority),
	// then drain again with the SP that is left.
	for _, up := range c.Critical.StandingUpgrades(g) {
		c.Queue.Push(up)
	}
	upgradeDrain := buildqueue.Drain(c.Queue, g, 0, &sp)
	plan.BuildsApplied = append(plan.BuildsApplied, upgradeDrain.Applied...)

	// Step 2: opportunistic fills if SP remains.
	if sp > 0 {
		fills := c.opportunisticFills(g, sp)
		for _, f := range fills {
			if u, err := g.AddUnit(f.UnitKind, f.Cell, 0, false); err == nil {
				sp -= catalog.StatsFor(f.UnitKind, false).CostSP
				plan.BuildsApplied = append(plan.BuildsApplied, f)
				_ = u
			}
		}
	}

	// Step 3: interceptor response.
	interceptDeadline := time.Now().Add(c.InterceptorBudget)
	plan.InterceptorPlacements = c.interceptorResponse(g, oppMP, interceptDeadline)
	for _, sp2 := range plan.InterceptorPlacements {
		if u, err := g.AddUnit(sp2.Kind, sp2.Cell, 0, false); err == nil {
			u.TargetEdge = sp2.TargetEdge
		}
	}

	// Step 4: our attack.
	if myMP >= 6 {
		attackDeadline := time.Now().Add(c.AttackBudget)
		plan.Attack = c.chooseAttack(g, myHealth, oppHealth, myMP, attackDeadline)
	}

	if c.Telemetry != nil {
		c.Telemetry.Publish(telemetry.Event{Type: "turn_decided", Turn: turn, Data: plan})
	}
	return plan
}

// opportunisticFills places walls at random in-bounds open cells,
// weighted toward columns behind a recent breach (per SPEC_FULL.md
// §12's scored-on-locations supplement and spec.md §4.9's "random
// in-bounds cells weighted toward under-defended columns"). Each pick
// is a weighted random draw over the remaining open cells rather than
// a fixed priority order, so repeated calls within a game don't always
// fill the same column first.
func (c *Controller) opportunisticFills(g *gamemap.GameMap, sp float64) []buildqueue.Placement {
	wallCost := catalog.StatsFor(catalog.Wall, false).CostSP
	var out []buildqueue.Placement

	open, weight := c.underDefendedColumns(g)
	for len(open) > 0 && sp >= wallCost {
		i := weightedPick(open, weight)
		cell := open[i]
		open = append(open[:i], open[i+1:]...)
		if g.ContainsStructure(cell) {
			continue
		}
		out = append(out, buildqueue.Placement{Kind: buildqueue.PlacementBuild, UnitKind: catalog.Wall, Cell: cell})
		sp -= wallCost
	}
	return out
}

// weightedPick draws a random index from cells, where a cell's weight
// is 1 plus its column's breach count, so under-defended columns are
// more likely but every open cell retains a nonzero chance.
func weightedPick(cells []arena.Cell, weight map[int]int) int {
	if len(cells) == 1 {
		return 0
	}
	if len(weight) == 0 {
		// No recorded breaches: every cell is equally likely, so skip the
		// cumulative-weight walk and draw uniformly.
		return randIntn(len(cells))
	}
	total := 0.0
	cum := make([]float64, len(cells))
	for i, c := range cells {
		total += float64(weight[c.X] + 1)
		cum[i] = total
	}
	r := randFloat64() * total
	for i, c := range cum {
		if r < c {
			return i
		}
	}
	return len(cells) - 1
}

// underDefendedColumns returns owner 0's open friendly-edge cells
// alongside a per-column breach-weight map (cells behind a recent
// scored-on location weighted higher).
func (c *Controller) underDefendedColumns(g *gamemap.GameMap) ([]arena.Cell, map[int]int) {
	weight := map[int]int{}
	for _, loc := range c.scoredOnLocations {
		weight[loc.X]++
	}

	var open []arena.Cell
	for _, e := range arena.FriendlyEdgesFor(0) {
		for _, cell := range arena.EdgeSet(e) {
			if !g.ContainsStructure(cell) {
				open = append(open, cell)
			}
		}
	}
	return open, weight
}

// RecordBreach appends a scored-on location to the rolling log, capping
// it at a small fixed window so old breaches stop influencing fills.
func (c *Controller) RecordBreach(cell arena.Cell) {
	c.scoredOnLocations = append(c.scoredOnLocations, cell)
	const window = 10
	if len(c.scoredOnLocations) > window {
		c.scoredOnLocations = c.scoredOnLocations[len(c.scoredOnLocations)-window:]
	}
}

// interceptorResponse implements spec.md §4.9 step 3: deep-copy the
// state, enumerate the opponent's candidate attacks, score each with
// the simulator, pick their best-for-them plan, then enumerate our
// interceptor options against that fixed opponent plan and pick the
// best for us.
func (c *Controller) interceptorResponse(g *gamemap.GameMap, oppMP float64, deadline time.Time) []candidates.Spawn {
	scratch := g.Clone()
	oppPlans := candidates.GenerateOpponentCatalog(scratch, 1, int(oppMP))
	if len(oppPlans) == 0 {
		return nil
	}

	var worstForUs *candidates.Plan
	worstScore := 0.0
	for i, p := range oppPlans {
		if time.Now().After(deadline) {
			break
		}
		trial := scratch.Clone()
		applyPlan(trial, p, 1)
		sim := simulate.New()
		res := sim.RunTurn(trial, 0, 0)
		score := eval.Score(trial, 0, res.MyHealth, res.OppHealth, c.Adjuster)
		if worstForUs == nil || score < worstScore {
			worstScore = score
			pp := oppPlans[i]
			worstForUs = &pp
		}
	}
	if worstForUs == nil {
		return nil
	}

	best := candidates.Plan{}
	bestScore := -1e18
	found := false
	for _, tier := range []int{1, 2, 3} {
		if time.Now().After(deadline) {
			break
		}
		p, ok := candidates.InterceptorSpoilers(scratch, 0, tierToMP(tier))
		if !ok {
			continue
		}
		trial := scratch.Clone()
		applyPlan(trial, p, 0)
		applyPlan(trial, *worstForUs, 1)
		sim := simulate.New()
		res := sim.RunTurn(trial, 0, 0)
		score := eval.Score(trial, 0, res.MyHealth, res.OppHealth, c.Adjuster)
		if !found || score > bestScore {
			bestScore = score
			best = p
			found = true
		}
	}
	if !found {
		return nil
	}
	return best.Spawns
}

func tierToMP(tier int) int {
	switch tier {
	case 3:
		return 15
	case 2:
		return 8
	default:
		return 1
	}
}

// chooseAttack implements spec.md §4.9 step 4: enumerate our attack
// candidates, simulate each under deadline, and commit the one with the
// highest eval.Score among those that lower the opponent's health by
// more than 0.5 or are lethal.
func (c *Controller) chooseAttack(g *gamemap.GameMap, myHealth, oppHealth, myMP float64, deadline time.Time) *candidates.Plan {
	plans := candidates.GenerateAll(g, 0, int(myMP))
	var best *candidates.Plan
	bestScore := 0.0

	for i, p := range plans {
		if time.Now().After(deadline) {
			break
		}
		trial := g.Clone()
		applyPlan(trial, p, 0)
		sim := simulate.New()
		res := sim.RunTurn(trial, myHealth, oppHealth)
		damage := oppHealth - res.OppHealth
		lethal := res.OppHealth <= 0
		if damage > 0.5 || lethal {
			score := eval.Score(trial, 0, res.MyHealth, res.OppHealth, c.Adjuster)
			if best == nil || score > bestScore {
				bestScore = score
				pp := plans[i]
				best = &pp
			}
		}
	}
	return best
}

// applyPlan spawns a plan's units onto g for owner, skipping any spawn
// that fails legality (per spec.md §4.8: "illegal candidates are
// dropped" applies per-spawn when replaying a plan into a mutated copy).
func applyPlan(g *gamemap.GameMap, p candidates.Plan, owner int) {
	for _, s := range p.Spawns {
		for i := 0; i < s.Count; i++ {
			if u, err := g.AddUnit(s.Kind, s.Cell, owner, false); err == nil && s.Kind.IsMobile() {
				u.TargetEdge = s.TargetEdge
			}
		}
	}
}

// BeginThunderStrike excises the given front-edge wall cells from the
// critical set, per spec.md §4.7's thunder-strike mode, to allow an
// offensive hole to form for a coming turn's attack.
func (c *Controller) BeginThunderStrike(cells []arena.Cell) {
	c.Critical.ThunderStrike(cells)
	c.thunderReady = true
}

// EndThunderStrike restores the critical set to its full backbone.
func (c *Controller) EndThunderStrike() {
	c.Critical.EndThunderStrike()
	c.thunderReady = false
}
