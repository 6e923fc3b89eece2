// Package protocol implements the line-delimited JSON channel to the
// external game engine (spec.md §6): parsing Config/turn-state/
// action-frame messages and serializing outbound spawn/upgrade/removal
// commands. The line-oriented read loop follows the same
// read-a-line/json.Unmarshal/dispatch shape as the teacher's WebSocket
// read loop in internal/bot/client.go, adapted from a socket to stdio.
package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
)

// ErrMalformedMessage is wrapped by the positional-array decoders below
// when an inbound document doesn't match the engine's wire shape
// (spec.md §7's malformed-input error kind). Callers can check for it
// with errors.Is instead of string-matching the decode error.
var ErrMalformedMessage = errors.New("protocol: malformed message")

// SpawnCode is the wire integer identifying a command kind, per
// spec.md §6's mapping: 0=Wall..5=Interceptor, 6=Remove, 7=Upgrade.
type SpawnCode int

const (
	CodeWall SpawnCode = iota
	CodeSupport
	CodeTurret
	CodeScout
	CodeDemolisher
	CodeInterceptor
	CodeRemove
	CodeUpgrade
)

// KindForCode maps a wire spawn code to the internal unit kind. Remove
// and Upgrade are not unit kinds; callers must special-case them.
func KindForCode(code SpawnCode) (catalog.Kind, bool) {
	switch code {
	case CodeWall:
		return catalog.Wall, true
	case CodeSupport:
		return catalog.Support, true
	case CodeTurret:
		return catalog.Turret, true
	case CodeScout:
		return catalog.Scout, true
	case CodeDemolisher:
		return catalog.Demolisher, true
	case CodeInterceptor:
		return catalog.Interceptor, true
	default:
		return 0, false
	}
}

// CodeForKind is the inverse of KindForCode, used when emitting spawn
// commands.
func CodeForKind(k catalog.Kind) SpawnCode {
	switch k {
	case catalog.Wall:
		return CodeWall
	case catalog.Support:
		return CodeSupport
	case catalog.Turret:
		return CodeTurret
	case catalog.Scout:
		return CodeScout
	case catalog.Demolisher:
		return CodeDemolisher
	default:
		return CodeInterceptor
	}
}

// ConfigMessage is the engine's one-time startup document.
type ConfigMessage struct {
	Debug struct {
	} `json:"debug,omitempty"`
	Config struct {
		UnitInformation []catalog.WireUnitInfo `json:"unitInformation"`
	} `json:"config"`
}

// TurnState is the inbound document when turnInfo[0] == 0: the full
// game state at the start of a turn.
type TurnState struct {
	TurnInfo []int `json:"turnInfo"`
	P1Stats  []float64 `json:"p1Stats"` // [health, SP, MP, bits]
	P2Stats  []float64 `json:"p2Stats"`
	P1Units  [][]WireUnitEntry `json:"p1Units"` // indexed by spawn code, 0..5
	P2Units  [][]WireUnitEntry `json:"p2Units"`
}

// WireUnitEntry is one placed-unit record within p1Units/p2Units.
type WireUnitEntry struct {
	X         float64
	Y         float64
	Health    float64
	ID        string
	Upgraded  bool
}

// UnmarshalJSON decodes the engine's positional array form
// [x, y, health, id, upgraded?].
func (e *WireUnitEntry) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 4 {
		return fmt.Errorf("%w: unit entry has %d fields, want >= 4", ErrMalformedMessage, len(raw))
	}
	e.X, _ = raw[0].(float64)
	e.Y, _ = raw[1].(float64)
	e.Health, _ = raw[2].(float64)
	if s, ok := raw[3].(string); ok {
		e.ID = s
	}
	if len(raw) > 4 {
		if b, ok := raw[4].(bool); ok {
			e.Upgraded = b
		}
	}
	return nil
}

// ActionFrameState is the inbound document when turnInfo[0] == 1: a
// per-frame incremental update.
type ActionFrameState struct {
	TurnInfo []int `json:"turnInfo"`
	Events   struct {
		Breach []BreachEvent `json:"breach"`
		Spawn  []SpawnEvent  `json:"spawn"`
	} `json:"events"`
}

// BreachEvent is [location, _, _, _, owner] on the wire.
type BreachEvent struct {
	Location arena.Cell
	Owner    int // 1 = self, 2 = opponent, per spec.md §6
}

func (b *BreachEvent) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 5 {
		return fmt.Errorf("%w: breach event has %d fields, want >= 5", ErrMalformedMessage, len(raw))
	}
	loc, ok := raw[0].([]any)
	if !ok || len(loc) < 2 {
		return fmt.Errorf("%w: breach event location malformed", ErrMalformedMessage)
	}
	x, _ := loc[0].(float64)
	y, _ := loc[1].(float64)
	b.Location = arena.Cell{X: int(x), Y: int(y)}
	if owner, ok := raw[4].(float64); ok {
		b.Owner = int(owner)
	}
	return nil
}

// SpawnEvent is [location, type_code, id, owner] on the wire.
type SpawnEvent struct {
	Location arena.Cell
	Code     SpawnCode
	ID       string
	Owner    int
}

func (s *SpawnEvent) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 4 {
		return fmt.Errorf("%w: spawn event has %d fields, want >= 4", ErrMalformedMessage, len(raw))
	}
	loc, ok := raw[0].([]any)
	if !ok || len(loc) < 2 {
		return fmt.Errorf("%w: spawn event location malformed", ErrMalformedMessage)
	}
	x, _ := loc[0].(float64)
	y, _ := loc[1].(float64)
	s.Location = arena.Cell{X: int(x), Y: int(y)}
	if code, ok := raw[1].(float64); ok {
		s.Code = SpawnCode(code)
	}
	if id, ok := raw[2].(string); ok {
		s.ID = id
	}
	if owner, ok := raw[3].(float64); ok {
		s.Owner = int(owner)
	}
	return nil
}

// ReflectWireOwner converts the wire's 1=self/2=opponent convention to
// the internal 0/1 convention (0 = self).
func ReflectWireOwner(wireOwner int) int {
	if wireOwner == 1 {
		return 0
	}
	return 1
}

// InboundKind tags which of the three inbound document shapes a line is.
type InboundKind int

const (
	InboundConfig InboundKind = iota
	InboundTurnState
	InboundActionFrame
	InboundUnknown
)

// PeekKind inspects turnInfo[0] (and the absence of turnInfo for the
// Config document) to classify a raw inbound line without fully
// decoding it, per spec.md §6.
func PeekKind(line []byte) InboundKind {
	var probe struct {
		TurnInfo []int `json:"turnInfo"`
		Config   *struct{} `json:"config"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return InboundUnknown
	}
	if probe.Config != nil {
		return InboundConfig
	}
	if len(probe.TurnInfo) == 0 {
		return InboundUnknown
	}
	switch probe.TurnInfo[0] {
	case 0:
		return InboundTurnState
	case 1:
		return InboundActionFrame
	default:
		return InboundUnknown
	}
}

// Reader reads line-delimited JSON documents from the engine.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r with a line scanner sized for large turn-state
// documents.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &Reader{scanner: sc}
}

// ReadLine returns the next raw JSON line, or io.EOF when the channel
// closes.
func (r *Reader) ReadLine() ([]byte, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("protocol: read line: %w", err)
		}
		return nil, io.EOF
	}
	line := append([]byte(nil), r.scanner.Bytes()...)
	return line, nil
}

// Command is one outbound directive: a spawn, an upgrade, or a removal.
type Command struct {
	Code SpawnCode
	Cell arena.Cell
}

// Writer serializes outbound commands, one JSON line per command, plus
// a final end-of-turn line, matching the engine's expected framing.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for outbound command writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteCommand emits one spawn/upgrade/removal command.
func (w *Writer) WriteCommand(cmd Command) error {
	payload := []any{shorthandOrCode(cmd.Code), cmd.Cell.X, cmd.Cell.Y}
	return w.writeLine(payload)
}

func shorthandOrCode(code SpawnCode) int {
	return int(code)
}

// EndTurn emits the engine's end-of-turn sentinel line.
func (w *Writer) EndTurn() error {
	return w.writeLine([]string{})
}

func (w *Writer) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("protocol: marshal command: %w", err)
	}
	if _, err := w.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("protocol: write command: %w", err)
	}
	return nil
}
