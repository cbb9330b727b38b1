package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"live-auction/utils"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// client is one live viewer connection. All writes go through the send
// channel so the write pump is the connection's single writer.
type client struct {
	hub       *Hub
	conn      *websocket.Conn
	auctionID string
	send      chan Envelope
	alive     atomic.Bool
	closeOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, auctionID string) *client {
	c := &client{
		hub:       h,
		conn:      conn,
		auctionID: auctionID,
		send:      make(chan Envelope, sendBufferSize),
	}
	c.alive.Store(true)
	return c
}

// enqueue hands an envelope to the write pump. A viewer too slow to drain its
// buffer loses the message; the periodic resync repairs its view.
func (c *client) enqueue(env Envelope) {
	select {
	case c.send <- env:
	default:
		utils.Warn("dropping message for slow viewer", map[string]any{
			"auction_id": c.auctionID,
			"type":       env.Type,
		})
	}
}

// readPump consumes client messages until the connection dies. The only
// recognized message is {type:"ping"}; everything else is ignored.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			c.alive.Store(true)
			c.enqueue(Envelope{Type: EventPong, AuctionID: c.auctionID})
		}
	}
}

// writePump is the single writer for the connection. It also runs the
// heartbeat: a connection that did not answer the previous ping is dropped,
// which catches half-open sockets that never emit a close event.
func (c *client) writePump(heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				utils.Debug("viewer write failed", map[string]any{
					"auction_id": c.auctionID,
					"error":      err.Error(),
				})
				return
			}
		case <-ticker.C:
			if !c.alive.Load() {
				utils.Info("dropping unresponsive viewer", map[string]any{
					"auction_id": c.auctionID,
				})
				return
			}
			c.alive.Store(false)
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close tears the connection down exactly once and leaves the room.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		c.conn.Close()
	})
}
