// Package telemetry runs an optional debug WebSocket broadcaster that
// streams each turn's committed plan (a "turn_decided" event) to any
// connected spectator tooling. Per spec.md §6 the engine link itself is
// a fixed stdin/stdout line channel, so gorilla/websocket (the
// teacher's transport for real-time game events, see
// internal/bot/client.go/orchestrator.go) is repurposed here as a
// one-way publish-to-subscribers fan-out instead of a bidirectional
// game protocol.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is one telemetry record broadcast to connected subscribers.
type Event struct {
	Type string `json:"type"` // "turn_decided" is the type the controller publishes
	Turn int    `json:"turn"`
	Data any    `json:"data,omitempty"`
}

// Broadcaster fans Events out to any number of connected WebSocket
// subscribers. With no connected subscribers Publish does nothing. A
// nil *Broadcaster cannot be published to; the controller checks its
// Telemetry field for nil before publishing.
type Broadcaster struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader
	mu       sync.Mutex
	subs     map[*websocket.Conn]chan Event
}

// NewBroadcaster returns a Broadcaster ready to accept subscriber
// connections via ServeHTTP.
func NewBroadcaster(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		log:  log,
		subs: make(map[*websocket.Conn]chan Event),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades an inbound request to a WebSocket and registers it
// as a telemetry subscriber until it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn().Err(err).Msg("telemetry: websocket upgrade failed")
		return
	}

	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[conn] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// Publish broadcasts ev to every connected subscriber. Slow subscribers
// are dropped rather than allowed to block the deliberation loop.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Debug().Msg("telemetry: subscriber channel full, dropping event")
			delete(b.subs, conn)
			close(ch)
		}
	}
}

// MustEncode is a convenience for building Event.Data from an arbitrary
// value when the caller already knows it marshals cleanly; encoding
// failures are logged and degrade to a nil payload rather than panic.
func MustEncode(log zerolog.Logger, v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: encode payload failed")
		return nil
	}
	return data
}
