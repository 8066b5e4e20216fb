package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"farm-service/internal/models"

	gws "github.com/gorilla/websocket"
)

type stubAccess struct {
	mu      sync.Mutex
	allowed map[uint]map[uint]bool // userID -> farmID -> allowed
	err     error
	calls   int
}

func (s *stubAccess) CanAccessFarm(ctx context.Context, userID, farmID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[userID][farmID], nil
}

type stubSnapshots struct {
	err error
}

func (s *stubSnapshots) BuildDashboard(ctx context.Context, farmID uint) (*models.DashboardData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DashboardData{
		Snapshot: models.DashboardSnapshot{FarmID: farmID, GeneratedAt: time.Now()},
	}, nil
}

type stubFarms struct {
	farms []models.FarmSummary
}

func (s *stubFarms) UserFarms(ctx context.Context, userID uint) ([]models.FarmSummary, error) {
	return s.farms, nil
}

type stubPresence struct {
	mu      sync.Mutex
	online  map[uint]int
	offline map[uint]int
}

func newStubPresence() *stubPresence {
	return &stubPresence{online: make(map[uint]int), offline: make(map[uint]int)}
}

func (s *stubPresence) SetUserOnline(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[userID]++
	return nil
}

func (s *stubPresence) SetUserOffline(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline[userID]++
	return nil
}

// quietConfig keeps the heartbeat out of the way of frame assertions
func quietConfig() HubConfig {
	cfg := DefaultHubConfig()
	cfg.HeartbeatInterval = time.Hour
	return cfg
}

// startHubServer exposes the hub over a throwaway HTTP server. The user
// ID comes from the ?user= query parameter since these tests exercise
// the hub, not the JWT handshake.
func startHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(r.URL.Query().Get("user"), 10, 32)
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if _, err := hub.Admit(conn, uint(userID)); err != nil {
			conn.Close()
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Stop)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID uint) *gws.Conn {
	t.Helper()
	url := strings.Replace(srv.URL, "http", "ws", 1) + "?user=" + strconv.FormatUint(uint64(userID), 10)
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *gws.Conn) OutboundMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg OutboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame failed: %v", err)
	}
	return msg
}

func send(t *testing.T, conn *gws.Conn, msg InboundMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write frame failed: %v", err)
	}
}

func expectNoFrame(t *testing.T, conn *gws.Conn, wait time.Duration) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(wait))
	var msg OutboundMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected no frame, got %q", msg.Type)
	}
}

func waitForLen(t *testing.T, r *Registry, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Len() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("registry never reached %d connections, have %d", want, r.Len())
}

func TestInitialDataOnConnect(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	farms := &stubFarms{farms: []models.FarmSummary{{ID: 1, Name: "Green Valley"}}}
	hub := NewHub(access, &stubSnapshots{}, farms, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeInitialData {
		t.Fatalf("expected initial_data, got %q", frame.Type)
	}
}

func TestSubscribeFlow(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {5: true}}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn) // initial_data

	send(t, conn, InboundMessage{Type: MessageTypeSubscribeFarm, FarmID: 5})

	confirmed := readFrame(t, conn)
	if confirmed.Type != MessageTypeSubscriptionConfirmed || confirmed.FarmID != 5 {
		t.Fatalf("expected subscription_confirmed for farm 5, got %q farm %d", confirmed.Type, confirmed.FarmID)
	}
	update := readFrame(t, conn)
	if update.Type != MessageTypeDashboardUpdate || update.FarmID != 5 {
		t.Fatalf("expected dashboard_update for farm 5, got %q farm %d", update.Type, update.FarmID)
	}
}

func TestSubscribeAccessDenied(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn) // initial_data

	send(t, conn, InboundMessage{Type: MessageTypeSubscribeFarm, FarmID: 9})
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeError || frame.Message != ErrMsgAccessDenied {
		t.Fatalf("expected access denied error, got %q / %q", frame.Type, frame.Message)
	}
}

func TestSubscribeOracleErrorFailsClosed(t *testing.T) {
	access := &stubAccess{err: errors.New("oracle down")}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)

	send(t, conn, InboundMessage{Type: MessageTypeSubscribeFarm, FarmID: 9})
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeError || frame.Message != ErrMsgAccessDenied {
		t.Fatalf("oracle failure must fail closed, got %q / %q", frame.Type, frame.Message)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)

	// Never subscribed, still confirmed
	send(t, conn, InboundMessage{Type: MessageTypeUnsubscribeFarm, FarmID: 5})
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeUnsubscriptionConfirmed || frame.FarmID != 5 {
		t.Fatalf("expected unsubscription_confirmed, got %q farm %d", frame.Type, frame.FarmID)
	}
}

func TestMalformedAndUnknownMessagesKeepConnectionOpen(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)

	if err := conn.WriteMessage(gws.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeError || frame.Message != ErrMsgInvalidFormat {
		t.Fatalf("expected invalid format error, got %q / %q", frame.Type, frame.Message)
	}

	send(t, conn, InboundMessage{Type: "dance"})
	frame = readFrame(t, conn)
	if frame.Type != MessageTypeError || frame.Message != ErrMsgUnknownType {
		t.Fatalf("expected unknown type error, got %q / %q", frame.Type, frame.Message)
	}

	// Connection survived both protocol errors
	send(t, conn, InboundMessage{Type: MessageTypePing})
	frame = readFrame(t, conn)
	if frame.Type != MessageTypePong {
		t.Fatalf("expected pong after protocol errors, got %q", frame.Type)
	}
}

func TestRequestDashboardRequiresAccess(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {5: true}}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)

	// Unsubscribed but access-authorized: served
	send(t, conn, InboundMessage{Type: MessageTypeRequestDashboard, FarmID: 5})
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeDashboardUpdate {
		t.Fatalf("expected dashboard_update, got %q", frame.Type)
	}

	// No access: refused
	send(t, conn, InboundMessage{Type: MessageTypeRequestDashboard, FarmID: 6})
	frame = readFrame(t, conn)
	if frame.Type != MessageTypeError || frame.Message != ErrMsgAccessDenied {
		t.Fatalf("expected access denied, got %q / %q", frame.Type, frame.Message)
	}
}

func TestDashboardBuildErrorKeepsConnectionOpen(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {5: true}}}
	hub := NewHub(access, &stubSnapshots{err: errors.New("db down")}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)

	send(t, conn, InboundMessage{Type: MessageTypeRequestDashboard, FarmID: 5})
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeError || frame.Message != ErrMsgDashboard {
		t.Fatalf("expected dashboard error, got %q / %q", frame.Type, frame.Message)
	}

	send(t, conn, InboundMessage{Type: MessageTypePing})
	if frame = readFrame(t, conn); frame.Type != MessageTypePong {
		t.Fatalf("connection should survive a dashboard failure, got %q", frame.Type)
	}
}

func TestPublishFarmUpdateFiltering(t *testing.T) {
	// U1 sees only F1; U2 is a member of both farms
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {1: true}, 2: {1: true, 2: true}}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn1 := dial(t, srv, 1)
	conn2 := dial(t, srv, 2)
	readFrame(t, conn1)
	readFrame(t, conn2)
	waitForLen(t, hub.Registry(), 2)

	// Both users are authorized for F1, so both hear the broadcast
	hub.PublishFarmUpdate(1, map[string]string{"change": "livestock"})
	for _, conn := range []*gws.Conn{conn1, conn2} {
		frame := readFrame(t, conn)
		if frame.Type != MessageTypeFarmBroadcast || frame.FarmID != 1 {
			t.Fatalf("expected farm_broadcast for farm 1, got %q farm %d", frame.Type, frame.FarmID)
		}
	}

	// Only U2 is authorized for F2; U1 must hear nothing, subscribed or not
	hub.PublishFarmUpdate(2, map[string]string{"change": "crops"})
	frame := readFrame(t, conn2)
	if frame.Type != MessageTypeFarmBroadcast || frame.FarmID != 2 {
		t.Fatalf("expected farm_broadcast for farm 2, got %q farm %d", frame.Type, frame.FarmID)
	}
	expectNoFrame(t, conn1, 300*time.Millisecond)
}

func TestPublishReachesUnsubscribedConnections(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {1: true}}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)
	waitForLen(t, hub.Registry(), 1)

	// No subscribe_farm was ever sent; authorization alone decides
	hub.PublishFarmUpdate(1, "payload")
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeFarmBroadcast {
		t.Fatalf("expected farm_broadcast without subscription, got %q", frame.Type)
	}
}

func TestPublishFailedDeliveryIsolation(t *testing.T) {
	cfg := quietConfig()
	cfg.SendBufferSize = 1
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {1: true}, 2: {1: true}}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, cfg)

	healthy := newFakeClient(hub, 1)
	stalled := newFakeClient(hub, 2)
	if err := hub.registry.Admit(healthy); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if err := hub.registry.Admit(stalled); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	// Fill the stalled client's buffer so its delivery fails
	if err := stalled.enqueue([]byte("stuck")); err != nil {
		t.Fatalf("priming enqueue failed: %v", err)
	}

	hub.PublishFarmUpdate(1, "payload")

	// The stalled connection is reaped, the healthy one got the frame
	if stalled.State() != StateClosed {
		t.Errorf("expected stalled client closed, got %v", stalled.State())
	}
	if hub.registry.Len() != 1 {
		t.Errorf("expected only the healthy client registered, got %d", hub.registry.Len())
	}
	select {
	case data := <-healthy.send:
		var msg OutboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if msg.Type != MessageTypeFarmBroadcast {
			t.Errorf("expected farm_broadcast, got %q", msg.Type)
		}
	default:
		t.Error("healthy client never received the broadcast")
	}
}

func TestPublishCachesAccessDecisionPerUser(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{1: {1: true}}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())

	// Three connections, one user
	for i := 0; i < 3; i++ {
		if err := hub.registry.Admit(newFakeClient(hub, 1)); err != nil {
			t.Fatalf("Admit failed: %v", err)
		}
	}

	access.mu.Lock()
	access.calls = 0
	access.mu.Unlock()

	hub.PublishFarmUpdate(1, "payload")

	access.mu.Lock()
	calls := access.calls
	access.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 access check for 3 connections of one user, got %d", calls)
	}
}

func TestHeartbeatFlowsOnHealthyConnection(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, cfg)
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn) // initial_data
	waitForLen(t, hub.Registry(), 1)

	// Several intervals pass with every heartbeat delivered
	for i := 0; i < 3; i++ {
		frame := readFrame(t, conn)
		if frame.Type != MessageTypeHeartbeat {
			t.Fatalf("expected heartbeat, got %q", frame.Type)
		}
	}
	if got := hub.Registry().Len(); got != 1 {
		t.Fatalf("healthy connection must stay registered, have %d", got)
	}
}

func TestHeartbeatSendFailureReapsConnection(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.HeartbeatInterval = 30 * time.Millisecond
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, cfg)
	t.Cleanup(hub.Stop)

	// Capture the server-side connection without starting the read loop so
	// only the heartbeat writer can observe the dead transport.
	serverConns := make(chan *gws.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := gws.DefaultDialer.Dial(strings.Replace(srv.URL, "http", "ws", 1), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	conn := <-serverConns
	client := NewClient(hub, conn, 1)
	if err := hub.registry.Admit(client); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	conn.UnderlyingConn().Close()
	go client.writePump()

	// The first heartbeat tick hits the severed transport and reaps the
	// connection well within the wait window.
	waitForLen(t, hub.Registry(), 0)
	if client.State() != StateClosed {
		t.Errorf("expected reaped client closed, got %v", client.State())
	}
}

func TestDeadConnectionReaped(t *testing.T) {
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, nil, quietConfig())
	srv := startHubServer(t, hub)

	conn := dial(t, srv, 1)
	readFrame(t, conn)
	waitForLen(t, hub.Registry(), 1)

	conn.UnderlyingConn().Close()
	waitForLen(t, hub.Registry(), 0)
}

func TestPresenceOfflineOnlyAfterLastConnection(t *testing.T) {
	presence := newStubPresence()
	access := &stubAccess{allowed: map[uint]map[uint]bool{}}
	hub := NewHub(access, &stubSnapshots{}, &stubFarms{}, presence, quietConfig())

	c1 := newFakeClient(hub, 1)
	c2 := newFakeClient(hub, 1)
	if err := hub.registry.Admit(c1); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if err := hub.registry.Admit(c2); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	hub.Unregister(c1)
	presence.mu.Lock()
	offline := presence.offline[1]
	presence.mu.Unlock()
	if offline != 0 {
		t.Errorf("user with a live sibling connection must not go offline, got %d", offline)
	}

	hub.Unregister(c2)
	presence.mu.Lock()
	offline = presence.offline[1]
	presence.mu.Unlock()
	if offline != 1 {
		t.Errorf("expected exactly one offline transition, got %d", offline)
	}
}
