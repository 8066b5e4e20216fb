package services

import (
	"context"
	"log/slog"
)

// Broadcaster is the push side of the real-time dashboard service.
// The WebSocket hub satisfies it.
type Broadcaster interface {
	PublishFarmUpdate(farmID uint, payload interface{})
}

// Notifier fans a farm mutation out to both delivery paths: the Kafka
// analytics topic and the in-process WebSocket broadcast. Both are
// fire-and-forget from the mutating request's point of view.
type Notifier struct {
	events     *EventService
	dashboards *DashboardService
	hub        Broadcaster
}

func NewNotifier(events *EventService, dashboards *DashboardService, hub Broadcaster) *Notifier {
	return &Notifier{
		events:     events,
		dashboards: dashboards,
		hub:        hub,
	}
}

// FarmChanged records the mutation for analytics and pushes a freshly
// recomputed dashboard to every connection authorized for the farm.
func (n *Notifier) FarmChanged(eventType string, farmID, userID uint, payload interface{}) {
	if n.events != nil {
		n.events.Publish(eventType, farmID, userID, payload)
	}

	if n.hub == nil || n.dashboards == nil {
		return
	}
	go func() {
		data, err := n.dashboards.BuildDashboard(context.Background(), farmID)
		if err != nil {
			slog.Error("Failed to rebuild dashboard for broadcast", "farmID", farmID, "error", err)
			return
		}
		n.hub.PublishFarmUpdate(farmID, data)
	}()
}
