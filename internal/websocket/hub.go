package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"farm-service/internal/models"

	"github.com/gorilla/websocket"
)

// AccessChecker answers whether a user may see a farm's data.
// FarmService implements this; it may be called concurrently.
type AccessChecker interface {
	CanAccessFarm(ctx context.Context, userID, farmID uint) (bool, error)
}

// SnapshotBuilder computes a farm's current dashboard data, alerts and
// insights. Treated as a pure, possibly slow, function.
type SnapshotBuilder interface {
	BuildDashboard(ctx context.Context, farmID uint) (*models.DashboardData, error)
}

// FarmLister provides the farm list for the initial_data frame
type FarmLister interface {
	UserFarms(ctx context.Context, userID uint) ([]models.FarmSummary, error)
}

// Presence mirrors connect/disconnect into Redis. Optional.
type Presence interface {
	SetUserOnline(ctx context.Context, userID uint) error
	SetUserOffline(ctx context.Context, userID uint) error
}

// HubConfig bundles the tunables of the broadcast service
type HubConfig struct {
	MaxConnections    int
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
	SendBufferSize    int
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		MaxConnections:    10000,
		HeartbeatInterval: 30 * time.Second,
		WriteTimeout:      10 * time.Second,
		SendBufferSize:    64,
	}
}

// Hub is the real-time dashboard broadcast service. It owns the
// connection registry and fans dashboard updates out to the connections
// authorized to see them. One Hub per server process; each process owns
// its own in-memory connection set.
type Hub struct {
	registry  *Registry
	access    AccessChecker
	snapshots SnapshotBuilder
	farms     FarmLister
	presence  Presence
	cfg       HubConfig

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub wires the broadcast service. presence may be nil.
func NewHub(access AccessChecker, snapshots SnapshotBuilder, farms FarmLister, presence Presence, cfg HubConfig) *Hub {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:  NewRegistry(cfg.MaxConnections),
		access:    access,
		snapshots: snapshots,
		farms:     farms,
		presence:  presence,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Registry exposes the connection registry for inspection
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Admit registers an authenticated connection, starts its pumps and
// pushes the initial_data frame. Fails only when the registry is at
// capacity.
func (h *Hub) Admit(conn *websocket.Conn, userID uint) (*Client, error) {
	client := NewClient(h, conn, userID)
	if err := h.registry.Admit(client); err != nil {
		return nil, err
	}

	if h.presence != nil {
		if err := h.presence.SetUserOnline(h.ctx, userID); err != nil {
			slog.Error("Failed to mark user online", "userID", userID, "error", err)
		}
	}

	go client.writePump()
	go client.readPump()

	farms, err := h.farms.UserFarms(h.ctx, userID)
	if err != nil {
		slog.Error("Failed to load user farms for initial data", "userID", userID, "error", err)
		farms = []models.FarmSummary{}
	}
	if err := client.sendMessage(NewInitialData(farms)); err != nil {
		slog.Debug("Failed to queue initial data", "clientID", client.id, "error", err)
	}

	slog.Info("WebSocket client admitted", "clientID", client.id, "userID", userID, "connections", h.registry.Len())
	return client, nil
}

// Unregister removes a connection from the registry and updates presence
// once the user's last connection is gone. Idempotent.
func (h *Hub) Unregister(c *Client) {
	h.registry.Remove(c)

	if h.presence != nil && len(h.registry.ConnectionsForUser(c.userID)) == 0 {
		if err := h.presence.SetUserOffline(h.ctx, c.userID); err != nil {
			slog.Error("Failed to mark user offline", "userID", c.userID, "error", err)
		}
	}
}

// PublishFarmUpdate fans a farm_broadcast envelope out to every
// registered connection whose owning user passes the access check.
// Delivery is fire-and-forget: a failed delivery reaps that connection
// and never blocks or aborts delivery to the others. An unreachable
// access oracle skips the connection (fail closed).
//
// Broadcasts reach every access-authorized connection, not only
// subscribed ones; subscriptions gate initial snapshots, not broadcasts.
func (h *Hub) PublishFarmUpdate(farmID uint, payload interface{}) {
	envelope := NewFarmBroadcast(farmID, payload)
	data, err := json.Marshal(envelope)
	if err != nil {
		slog.Error("Failed to marshal broadcast envelope", "farmID", farmID, "error", err)
		return
	}

	// The access decision is per user, so cache it across a user's connections
	decisions := make(map[uint]bool)
	delivered := 0

	for _, c := range h.registry.All() {
		allowed, checked := decisions[c.userID]
		if !checked {
			ok, err := h.access.CanAccessFarm(h.ctx, c.userID, farmID)
			if err != nil {
				slog.Error("Access check failed during broadcast", "userID", c.userID, "farmID", farmID, "error", err)
				ok = false
			}
			allowed = ok
			decisions[c.userID] = allowed
		}
		if !allowed {
			continue
		}

		if err := c.enqueue(data); err != nil {
			// Failed delivery reaps the connection, broadcast continues
			slog.Info("Broadcast delivery failed, removing connection", "clientID", c.id, "userID", c.userID, "error", err)
			h.Unregister(c)
			c.close()
			continue
		}
		delivered++
	}

	slog.Debug("Farm update broadcast", "farmID", farmID, "delivered", delivered)
}

// Stop closes every connection and shuts the hub down
func (h *Hub) Stop() {
	h.cancel()
	for _, c := range h.registry.All() {
		h.Unregister(c)
		c.close()
	}
	slog.Info("WebSocket hub stopped")
}
