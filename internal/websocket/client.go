package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Maximum message size allowed from peer
const maxMessageSize = 4096

var (
	ErrClientClosed   = errors.New("client connection closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Client is one authenticated, long-lived bidirectional session.
// The owning user never changes for the connection's lifetime; the
// subscription set is mutated only by messages from this connection's
// own peer.
type Client struct {
	id     uuid.UUID
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	mu            sync.RWMutex
	subscriptions map[uint]bool
	lastSeen      time.Time

	state  int32 // ConnState, advanced atomically and only forward
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:            uuid.New(),
		userID:        userID,
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, hub.cfg.SendBufferSize),
		subscriptions: make(map[uint]bool),
		lastSeen:      time.Now(),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (c *Client) ID() uuid.UUID {
	return c.id
}

func (c *Client) UserID() uint {
	return c.userID
}

func (c *Client) State() ConnState {
	return ConnState(atomic.LoadInt32(&c.state))
}

// setState advances the lifecycle. Going backwards is impossible.
func (c *Client) setState(s ConnState) {
	for {
		cur := atomic.LoadInt32(&c.state)
		if cur >= int32(s) {
			return
		}
		if atomic.CompareAndSwapInt32(&c.state, cur, int32(s)) {
			return
		}
	}
}

func (c *Client) Subscribe(farmID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[farmID] = true
}

func (c *Client) Unsubscribe(farmID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, farmID)
}

func (c *Client) IsSubscribed(farmID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[farmID]
}

func (c *Client) Subscriptions() []uint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	farms := make([]uint, 0, len(c.subscriptions))
	for farmID := range c.subscriptions {
		farms = append(farms, farmID)
	}
	return farms
}

func (c *Client) clearSubscriptions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions = make(map[uint]bool)
}

// touch records inbound activity
func (c *Client) touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
}

func (c *Client) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}

// enqueue places a frame on the send buffer without blocking the caller.
// A full buffer counts as a failed delivery so one slow client can never
// stall a broadcast to others.
func (c *Client) enqueue(data []byte) error {
	if c.State() != StateOpen {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	case <-c.ctx.Done():
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) sendMessage(msg *OutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Client) sendError(message string) {
	if err := c.sendMessage(NewError(message)); err != nil {
		slog.Debug("Failed to queue error message", "clientID", c.id, "error", err)
	}
}

// close tears the connection down. Safe to call any number of times from
// any goroutine.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.setState(StateClosing)
		c.cancel()
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// readPump consumes the connection's inbound stream and routes each
// message. Messages from one connection are processed strictly in the
// order received. Runs as one goroutine per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "userID", c.userID)
			}
			return
		}

		c.touch()

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// A malformed message never closes the connection
			c.sendError(ErrMsgInvalidFormat)
			continue
		}

		c.handleMessage(&msg)
	}
}

// handleMessage dispatches one inbound message to its handler
func (c *Client) handleMessage(msg *InboundMessage) {
	switch msg.Type {
	case MessageTypeSubscribeFarm:
		c.handleSubscribe(msg.FarmID)
	case MessageTypeUnsubscribeFarm:
		c.handleUnsubscribe(msg.FarmID)
	case MessageTypeRequestDashboard:
		c.handleRequestDashboard(msg.FarmID)
	case MessageTypePing:
		if err := c.sendMessage(NewPong()); err != nil {
			slog.Debug("Failed to queue pong", "clientID", c.id, "error", err)
		}
	default:
		c.sendError(ErrMsgUnknownType)
	}
}

func (c *Client) handleSubscribe(farmID uint) {
	allowed, err := c.hub.access.CanAccessFarm(c.ctx, c.userID, farmID)
	if err != nil {
		// Oracle failure is fail-closed
		slog.Error("Access check failed", "clientID", c.id, "userID", c.userID, "farmID", farmID, "error", err)
		c.sendError(ErrMsgAccessDenied)
		return
	}
	if !allowed {
		c.sendError(ErrMsgAccessDenied)
		return
	}

	c.Subscribe(farmID)
	if err := c.sendMessage(NewSubscriptionConfirmed(farmID)); err != nil {
		slog.Debug("Failed to queue subscription confirmation", "clientID", c.id, "error", err)
	}
	c.pushDashboard(farmID)
}

func (c *Client) handleUnsubscribe(farmID uint) {
	// Idempotent: unsubscribing from a farm never subscribed to is fine
	c.Unsubscribe(farmID)
	if err := c.sendMessage(NewUnsubscriptionConfirmed(farmID)); err != nil {
		slog.Debug("Failed to queue unsubscription confirmation", "clientID", c.id, "error", err)
	}
}

func (c *Client) handleRequestDashboard(farmID uint) {
	if !c.IsSubscribed(farmID) {
		allowed, err := c.hub.access.CanAccessFarm(c.ctx, c.userID, farmID)
		if err != nil || !allowed {
			c.sendError(ErrMsgAccessDenied)
			return
		}
	}
	c.pushDashboard(farmID)
}

func (c *Client) pushDashboard(farmID uint) {
	data, err := c.hub.snapshots.BuildDashboard(c.ctx, farmID)
	if err != nil {
		slog.Error("Failed to build dashboard", "clientID", c.id, "farmID", farmID, "error", err)
		c.sendError(ErrMsgDashboard)
		return
	}
	if err := c.sendMessage(NewDashboardUpdate(farmID, data)); err != nil {
		slog.Debug("Failed to queue dashboard update", "clientID", c.id, "error", err)
	}
}

// writePump serializes outbound frames and owns the per-connection
// heartbeat timer. A heartbeat send failure is the sole liveness signal:
// it is the only path by which the server unilaterally reaps a
// connection. Runs as one goroutine per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.hub.Unregister(c)
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("WebSocket write failed", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-ticker.C:
			hb, err := json.Marshal(NewHeartbeat())
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, hb); err != nil {
				slog.Info("Heartbeat failed, reaping connection", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
