package websocket

import (
	"testing"
)

func TestEnqueueBufferFull(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.SendBufferSize = 1
	hub := newTestHub(cfg)

	c := newFakeClient(hub, 1)
	if err := c.enqueue([]byte("one")); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}
	if err := c.enqueue([]byte("two")); err != ErrSendBufferFull {
		t.Errorf("expected ErrSendBufferFull, got %v", err)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	hub := newTestHub(DefaultHubConfig())
	c := newFakeClient(hub, 1)

	c.close()
	if err := c.enqueue([]byte("frame")); err != ErrClientClosed {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
}

func TestSubscriptionSet(t *testing.T) {
	hub := newTestHub(DefaultHubConfig())
	c := newFakeClient(hub, 1)

	if c.IsSubscribed(7) {
		t.Error("fresh client should not be subscribed")
	}
	c.Subscribe(7)
	c.Subscribe(7) // duplicate subscribe is a no-op
	if !c.IsSubscribed(7) {
		t.Error("expected subscription to farm 7")
	}
	if len(c.Subscriptions()) != 1 {
		t.Errorf("expected 1 subscription, got %d", len(c.Subscriptions()))
	}

	c.Unsubscribe(7)
	c.Unsubscribe(7) // idempotent
	if c.IsSubscribed(7) {
		t.Error("expected subscription removed")
	}
}
