package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"live-auction/internal/snapshot"
	"live-auction/utils"
)

// Server -> client event types. The envelope set is closed: anything else is
// a programming error, not a wire message.
const (
	EventSnapshot    = "snapshot"
	EventBidUpdate   = "bid_update"
	EventOfferUpdate = "offer_update"
	EventPong        = "pong"
)

// Envelope is the single message shape pushed to viewers.
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	AuctionID string `json:"auctionId"`
}

// clientMessage is the only client -> server shape the hub reads. Unknown
// types are ignored, not errors.
type clientMessage struct {
	Type string `json:"type"`
}

// Relay fans mutation events out to other instances. A nil relay means
// single-instance deployment.
type Relay interface {
	Publish(auctionID, event string) error
}

// Hub owns the per-auction rooms and every live viewer connection. It is an
// explicitly constructed instance: Run starts its timers, cancelling the
// context closes every socket.
type Hub struct {
	snapshots *snapshot.Builder
	relay     Relay
	upgrader  websocket.Upgrader

	// Heartbeat drops half-open sockets that never emit a close event;
	// resync guards rooms against missed event-driven pushes.
	HeartbeatInterval time.Duration
	ResyncInterval    time.Duration

	mu    sync.RWMutex
	rooms map[string]map[*client]bool // key: auctionID -> room members
}

// New creates a hub with the default heartbeat/resync cadence.
func New(snapshots *snapshot.Builder, relay Relay) *Hub {
	return &Hub{
		snapshots: snapshots,
		relay:     relay,
		upgrader: websocket.Upgrader{
			// Viewing is anonymous and read-only; all mutation goes through
			// the authenticated HTTP surface. Origin restrictions belong to
			// the fronting proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		HeartbeatInterval: 30 * time.Second,
		ResyncInterval:    15 * time.Second,
		rooms:             make(map[string]map[*client]bool),
	}
}

// Join upgrades the request, sends the full snapshot immediately and
// registers the connection in the auction's room. A missing or unknown
// auction id refuses the connection with a policy-violation close.
func (h *Hub) Join(w http.ResponseWriter, r *http.Request, auctionID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	snap, err := h.snapshots.Build(auctionID, h.OnlineCount(auctionID)+1)
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown auction")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
		return err
	}

	c := newClient(h, conn, auctionID)
	h.register(c)

	c.enqueue(Envelope{Type: EventSnapshot, Data: snap, AuctionID: auctionID})
	go c.writePump(h.HeartbeatInterval)
	go c.readPump()

	utils.Info("viewer joined auction room", map[string]any{
		"auction_id": auctionID,
		"online":     h.OnlineCount(auctionID),
	})
	return nil
}

// Notify rebuilds the snapshot for the auction and pushes it to the local
// room, then hands the event to the relay so viewers on other instances see
// it too. Called by the bid ledger and the offer negotiator after a commit.
func (h *Hub) Notify(auctionID, event string) {
	h.Dispatch(auctionID, event)
	if h.relay == nil {
		return
	}
	if err := h.relay.Publish(auctionID, event); err != nil {
		// Notification delivery never rolls back a committed mutation.
		utils.Error("relay publish failed", map[string]any{
			"auction_id": auctionID,
			"event":      event,
			"error":      err.Error(),
		})
	}
}

// Dispatch rebuilds and broadcasts to the local room only. The relay consumer
// uses it to avoid republishing remote events.
func (h *Hub) Dispatch(auctionID, event string) {
	online := h.OnlineCount(auctionID)
	if online == 0 {
		return
	}
	snap, err := h.snapshots.Build(auctionID, online)
	if err != nil {
		utils.Error("snapshot rebuild failed", map[string]any{
			"auction_id": auctionID,
			"event":      event,
			"error":      err.Error(),
		})
		return
	}
	h.broadcast(auctionID, Envelope{Type: event, Data: snap, AuctionID: auctionID})
}

// OnlineCount returns the current room size. Ephemeral, per-process state.
func (h *Hub) OnlineCount(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[auctionID])
}

// Run blocks, periodically resyncing every non-empty room until the context
// is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.resync()
		}
	}
}

// resync pushes a fresh snapshot to every non-empty room, independent of
// whether any mutation occurred.
func (h *Hub) resync() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.rooms))
	for id, room := range h.rooms {
		if len(room) > 0 {
			ids = append(ids, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Dispatch(id, EventSnapshot)
	}
}

func (h *Hub) broadcast(auctionID string, env Envelope) {
	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[auctionID]))
	for c := range h.rooms[auctionID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.enqueue(env)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.auctionID]
	if !ok {
		room = make(map[*client]bool)
		h.rooms[c.auctionID] = room
	}
	room[c] = true
}

// unregister removes the client and destroys the room on last leave.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.auctionID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.auctionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	var all []*client
	for _, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	h.rooms = make(map[string]map[*client]bool)
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
}
