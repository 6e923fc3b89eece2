// Package catalog holds the immutable per-unit-kind stats the rest of the
// engine consults. The catalog is process-global after startup: an
// immutable value passed by reference, never mutated shared state (spec
// design note "Global constants").
package catalog

// Kind tags a unit as one of the six kinds. The first three are
// structures (stationary, blocking); the latter three are mobile.
type Kind int

const (
	Wall Kind = iota
	Support
	Turret
	Scout
	Demolisher
	Interceptor
)

func (k Kind) String() string {
	switch k {
	case Wall:
		return "Wall"
	case Support:
		return "Support"
	case Turret:
		return "Turret"
	case Scout:
		return "Scout"
	case Demolisher:
		return "Demolisher"
	case Interceptor:
		return "Interceptor"
	default:
		return "Unknown"
	}
}

// IsStructure reports whether k is stationary and blocking.
func (k Kind) IsStructure() bool {
	return k == Wall || k == Support || k == Turret
}

// IsMobile reports whether k moves along a path each turn.
func (k Kind) IsMobile() bool {
	return !k.IsStructure()
}

// Stats holds the immutable numeric profile of one (kind, upgraded) pair.
type Stats struct {
	CostSP             float64
	CostMP             float64
	Health             float64
	AttackRange        float64
	ShieldRange        float64
	DamageVsMobile     float64
	DamageVsStructure  float64
	Speed              float64 // steps per frame, expressed as a fraction <= 1
	ShieldPerUnit       float64
	UpgradeCostSP      float64 // additional SP to upgrade an existing structure of this kind
}

// StepsPerFrame returns the cadence denominator for a mobile unit's
// speed: a unit steps on frame f iff f == 0 or f mod denom == 0.
func (s Stats) StepsPerFrame() int {
	if s.Speed <= 0 {
		return 0
	}
	denom := int(1.0/s.Speed + 0.5)
	if denom < 1 {
		denom = 1
	}
	return denom
}

// table is indexed [kind][upgraded]; populated by default in init and
// replaceable wholesale via LoadFromWire when a Config message arrives.
var table = defaultTable()

func defaultTable() map[Kind][2]Stats {
	return map[Kind][2]Stats{
		Wall: {
			{CostSP: 1, Health: 75, DamageVsMobile: 0, DamageVsStructure: 0},
			{CostSP: 1, UpgradeCostSP: 3, Health: 150},
		},
		Support: {
			{CostSP: 4, Health: 30, ShieldRange: 3.5, ShieldPerUnit: 3},
			{CostSP: 4, UpgradeCostSP: 4, Health: 30, ShieldRange: 6, ShieldPerUnit: 6},
		},
		Turret: {
			{CostSP: 2, Health: 75, AttackRange: 2.5, DamageVsMobile: 5, DamageVsStructure: 5},
			{CostSP: 2, UpgradeCostSP: 4, Health: 150, AttackRange: 3.5, DamageVsMobile: 10, DamageVsStructure: 10},
		},
		Scout: {
			{CostMP: 1, Health: 15, AttackRange: 3.5, DamageVsMobile: 2, DamageVsStructure: 2, Speed: 1},
			{CostMP: 1, Health: 15, AttackRange: 3.5, DamageVsMobile: 2, DamageVsStructure: 2, Speed: 1},
		},
		Demolisher: {
			{CostMP: 3, Health: 5, AttackRange: 4.5, DamageVsMobile: 0, DamageVsStructure: 16, Speed: 0.5},
			{CostMP: 3, Health: 5, AttackRange: 4.5, DamageVsMobile: 0, DamageVsStructure: 16, Speed: 0.5},
		},
		Interceptor: {
			{CostMP: 1, Health: 40, AttackRange: 4.5, DamageVsMobile: 3, DamageVsStructure: 3, Speed: 0.25},
			{CostMP: 1, Health: 40, AttackRange: 4.5, DamageVsMobile: 3, DamageVsStructure: 3, Speed: 0.25},
		},
	}
}

// StatsFor returns the immutable stats for (kind, upgraded).
func StatsFor(kind Kind, upgraded bool) Stats {
	idx := 0
	if upgraded {
		idx = 1
	}
	return table[kind][idx]
}

// WireUnitInfo mirrors one entry of Config.unitInformation on the wire.
type WireUnitInfo struct {
	Shorthand         string  `json:"shorthand"`
	Cost              float64 `json:"cost"`
	Cost2             float64 `json:"cost2"`
	Health            float64 `json:"health"`
	AttackRange       float64 `json:"attackRange"`
	ShieldRange       float64 `json:"shieldRange"`
	ShieldPerUnit     float64 `json:"shieldPerUnit"`
	DamageI           float64 `json:"damageI"`
	DamageF           float64 `json:"damageF"`
	Speed             float64 `json:"speed"`
}

// wireOrder is the order in which the engine's Config.unitInformation
// lists the six base kinds, per spec.md §6.
var wireOrder = [6]Kind{Wall, Support, Turret, Scout, Demolisher, Interceptor}

// LoadFromWire replaces the process-global table with stats parsed from
// the engine's Config message. Every kind gets both a base and an
// upgraded entry; the upgraded entry is a copy of the base numbers,
// except that a structure's CostSP becomes the reported cost2. No other
// upgrade deltas (health, range, damage) are read from the payload.
func LoadFromWire(units []WireUnitInfo) {
	if len(units) < 6 {
		return
	}
	next := map[Kind][2]Stats{}
	for i, kind := range wireOrder {
		u := units[i]
		base := Stats{
			CostSP:            costSPFor(kind, u.Cost),
			CostMP:            costMPFor(kind, u.Cost),
			Health:            u.Health,
			AttackRange:       u.AttackRange,
			ShieldRange:       u.ShieldRange,
			DamageVsMobile:    u.DamageI,
			DamageVsStructure: u.DamageF,
			Speed:             u.Speed,
			ShieldPerUnit:     u.ShieldPerUnit,
			UpgradeCostSP:     u.Cost2,
		}
		upgraded := base
		if kind.IsStructure() {
			upgraded.CostSP = u.Cost2
		}
		next[kind] = [2]Stats{base, upgraded}
	}
	table = next
}

func costSPFor(kind Kind, cost float64) float64 {
	if kind.IsStructure() {
		return cost
	}
	return 0
}

func costMPFor(kind Kind, cost float64) float64 {
	if kind.IsMobile() {
		return cost
	}
	return 0
}

// ShorthandFor returns the wire shorthand string for a kind. Outbound
// commands are written with integer spawn codes (internal/protocol),
// not with this shorthand.
func ShorthandFor(kind Kind) string {
	switch kind {
	case Wall:
		return "FF"
	case Support:
		return "EF"
	case Turret:
		return "DF"
	case Scout:
		return "PI"
	case Demolisher:
		return "EI"
	case Interceptor:
		return "SI"
	default:
		return ""
	}
}
