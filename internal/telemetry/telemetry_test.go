package telemetry

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestPublish_NoSubscribersIsANoOp(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	// Must not panic or block with zero connected subscribers.
	b.Publish(Event{Type: "turn_decided", Turn: 1})
}

func TestMustEncode_MarshalsCleanly(t *testing.T) {
	data := MustEncode(zerolog.Nop(), map[string]int{"turn": 3})
	if string(data) != `{"turn":3}` {
		t.Errorf("MustEncode = %s, want %s", data, `{"turn":3}`)
	}
}

func TestMustEncode_UnmarshalableValueReturnsNil(t *testing.T) {
	data := MustEncode(zerolog.Nop(), make(chan int))
	if data != nil {
		t.Errorf("expected nil payload for an unmarshalable value, got %s", data)
	}
}
