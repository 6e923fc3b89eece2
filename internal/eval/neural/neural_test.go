package neural

import (
	"testing"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
)

func TestLoad_MissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/path/model.onnx"); err == nil {
		t.Error("expected an error loading a model from a nonexistent path")
	}
}

func TestModel_AdjustOnNilModelReturnsZero(t *testing.T) {
	var m *Model
	g := gamemap.New()
	if got := m.Adjust(g, 0, 5); got != 0 {
		t.Errorf("expected a nil *Model to adjust by 0, got %v", got)
	}
}

func TestEncodeBoard_MarksOwnerRelativeSlotAndHealthFraction(t *testing.T) {
	g := gamemap.New()
	cell := arena.Cell{X: 13, Y: 13}
	u, err := g.AddUnit(catalog.Turret, cell, 0, false)
	if err != nil {
		t.Fatalf("place turret: %v", err)
	}
	u.Health = u.MaxHealth / 2

	board := encodeBoard(g, 0)
	idx := cell.X*arena.Size + cell.Y
	base := idx * NumFeatures
	slot := int(catalog.Turret)
	if board[base+slot] != 1 {
		t.Error("expected the owned-turret one-hot slot set for the owning perspective")
	}
	healthFraction := board[base+catalogKinds*2]
	if healthFraction < 0.49 || healthFraction > 0.51 {
		t.Errorf("expected a ~0.5 health fraction encoded, got %v", healthFraction)
	}
}

func TestEncodeBoard_OpponentUnitUsesShiftedSlot(t *testing.T) {
	g := gamemap.New()
	cell := arena.Cell{X: 13, Y: 13}
	if _, err := g.AddUnit(catalog.Turret, cell, 1, false); err != nil {
		t.Fatalf("place turret: %v", err)
	}

	board := encodeBoard(g, 0)
	idx := cell.X*arena.Size + cell.Y
	base := idx * NumFeatures
	ownSlot := int(catalog.Turret)
	oppSlot := ownSlot + catalogKinds
	if board[base+oppSlot] != 1 {
		t.Error("expected an opponent-owned unit encoded in the shifted slot")
	}
	if board[base+ownSlot] != 0 {
		t.Error("expected the owner's own slot left unset for an opponent unit")
	}
}
