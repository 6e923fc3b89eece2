// Package neural provides an optional neural-network-backed adjuster
// for internal/eval's deterministic scoring function. It is grounded on
// the teacher's internal/bot/strategy_gonnx.go: same model-loading call
// (gonnx.NewModelFromFile), same board-encoding-then-Run shape, but
// encoding a tower-defense board position instead of a Diplomacy one,
// and consuming a single scalar value-head output instead of policy
// logits.
package neural

import (
	"fmt"
	"sync"

	gonnx "github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

// NumFeatures is the per-cell feature width of the board tensor: one
// one-hot slot per unit kind for each of the two owners, plus a
// normalized health channel.
const NumFeatures = catalogKinds*2 + 1

const catalogKinds = 6

// Model wraps a loaded value-head ONNX model. A nil *Model (returned on
// load failure) is never constructed by Load; callers get an error
// instead and should fall back to the deterministic score alone, per
// SPEC_FULL.md §11.
type Model struct {
	value *gonnx.Model
	mu    sync.Mutex
}

// Load reads a value-head ONNX model from path. Callers should treat any
// error as "disable the adjuster, log at Warn, continue with the
// deterministic score" — never as fatal.
func Load(path string) (*Model, error) {
	m, err := gonnx.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("neural: load model %s: %w", path, err)
	}
	return &Model{value: m}, nil
}

// Adjust implements eval.Adjuster: it encodes the board from owner's
// perspective, runs the value head, and returns the first value of its
// "value" output, unscaled, as an additive nudge to the deterministic
// score. Any inference failure returns 0 (no adjustment) rather than
// erroring; Adjust itself logs nothing.
func (m *Model) Adjust(g *gamemap.GameMap, owner int, base float64) float64 {
	if m == nil || m.value == nil {
		return 0
	}

	board := encodeBoard(g, owner)
	boardTensor := tensor.New(
		tensor.WithShape(1, arena.Size*arena.Size, NumFeatures),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(board),
	)
	ownerTensor := tensor.New(
		tensor.WithShape(1),
		tensor.Of(tensor.Int64),
		tensor.WithBacking([]int64{int64(owner)}),
	)

	inputs := gonnx.Tensors{
		"board": boardTensor,
		"owner": ownerTensor,
	}

	m.mu.Lock()
	outputs, err := m.value.Run(inputs)
	m.mu.Unlock()
	if err != nil {
		return 0
	}

	out, ok := outputs["value"]
	if !ok {
		return 0
	}

	switch d := out.Data().(type) {
	case []float32:
		if len(d) == 0 {
			return 0
		}
		return float64(d[0])
	case []float64:
		if len(d) == 0 {
			return 0
		}
		return d[0]
	default:
		return 0
	}
}

// encodeBoard flattens the game map into a dense per-cell feature
// vector: a one-hot (kind, owner-relative) slot plus a normalized
// health fraction, in fixed lexicographic (x, y) cell order matching
// every other observable ordering in this engine.
func encodeBoard(g *gamemap.GameMap, owner int) []float32 {
	out := make([]float32, arena.Size*arena.Size*NumFeatures)
	idx := 0
	for x := 0; x < arena.Size; x++ {
		for y := 0; y < arena.Size; y++ {
			base := idx * NumFeatures
			for _, u := range g.UnitsAt(arena.Cell{X: x, Y: y}) {
				if !u.IsAlive() {
					continue
				}
				slot := int(u.Kind)
				if u.Owner != owner {
					slot += catalogKinds
				}
				out[base+slot] = 1
				if u.MaxHealth > 0 {
					out[base+catalogKinds*2] = float32(u.Health / u.MaxHealth)
				}
			}
			idx++
		}
	}
	return out
}
