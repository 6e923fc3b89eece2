package deliberate

import "math/rand"

// rng is the package-level random source used for opportunistic fills.
// When nil, functions delegate to the global math/rand default. Mirrors
// the teacher's internal/bot/rand.go SeedBotRng pattern: seed it once at
// startup (from config.Config.Seed) for reproducible benchmarks, leave
// it nil for ordinary play.
var rng *rand.Rand

// SeedRNG sets a deterministic random source. A zero seed leaves the
// default global source in place (non-deterministic), matching how
// config.Config.Seed == 0 is treated as "unset".
func SeedRNG(seed int64) {
	if seed == 0 {
		rng = nil
		return
	}
	rng = rand.New(rand.NewSource(seed))
}

func randFloat64() float64 {
	if rng != nil {
		return rng.Float64()
	}
	return rand.Float64()
}

func randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	if rng != nil {
		return rng.Intn(n)
	}
	return rand.Intn(n)
}
