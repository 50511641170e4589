// Package rpcglue is the interface-only seam between the deterministic core
// and the JSON-RPC/WebSocket transport, which spec §1/§7 puts deliberately
// out of scope: "the core consumes the [transport's] interfaces" rather
// than implementing them. The core only ever depends on the Publisher
// interface below; a concrete transport (full JSON-RPC method set, auth,
// subscriptions) is the host binary's concern, not the core's.
//
// Event names follow the teacher's websocket notification-command naming
// (rpc/jsonrpc/types/chainsvrwscmds.go: NotifyBlocksCmd,
// NotifyNewTransactionsCmd, ...) — a fixed, closed set of notification
// kinds rather than a free-form topic string.
package rpcglue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/animicaorg/animica-node/internal/idhash"
)

// EventKind enumerates the notifications the core can emit. New kinds are
// always appended.
type EventKind string

const (
	EventBlockAccepted EventKind = "blockaccepted"
	EventTxAdmitted    EventKind = "txadmitted"
	EventJobStatus     EventKind = "jobstatus"
)

// BlockAcceptedPayload accompanies EventBlockAccepted.
type BlockAcceptedPayload struct {
	Height uint64        `json:"height"`
	Hash   idhash.Digest `json:"hash"`
}

// TxAdmittedPayload accompanies EventTxAdmitted.
type TxAdmittedPayload struct {
	TxHash idhash.Digest `json:"txHash"`
}

// JobStatusPayload accompanies EventJobStatus.
type JobStatusPayload struct {
	JobID  idhash.Digest `json:"jobId"`
	Status string        `json:"status"`
}

// Event is one notification the core hands to its transport.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload"`
}

// Publisher is the only transport capability the core depends on. The
// core never dials, listens, or authenticates — it only publishes events
// and lets the injected Publisher decide what to do with them.
type Publisher interface {
	Publish(Event) error
}

// NopPublisher discards every event. It is the zero-dependency default
// for running the core with no attached transport (e.g. in tests, or the
// animicad CLI, which attaches none).
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }

// Hub is a minimal gorilla/websocket fan-out Publisher: every accepted
// connection receives every published event as a JSON text frame. It is
// deliberately thin — no subscription filtering, no JSON-RPC method
// dispatch, no authentication — those belong to the out-of-scope
// transport layer this package only stubs a seam for.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub builds an empty connection fan-out hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Add registers an already-upgraded connection to receive future events.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Remove stops sending events to conn and closes it.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

// Publish implements Publisher: it JSON-encodes ev once and writes it to
// every connected client in turn, dropping (and removing) any connection
// whose write fails. Writes carry no deadline, so a slow client delays
// delivery to the clients after it.
func (h *Hub) Publish(ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rpcglue: marshal event: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
	return nil
}
