package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// Farm event types published to the analytics topic
const (
	EventLivestockChanged   = "livestock.changed"
	EventCropChanged        = "crop.changed"
	EventTaskChanged        = "task.changed"
	EventTransactionCreated = "transaction.created"
	EventFarmChanged        = "farm.changed"
	EventAlertRaised        = "alert.raised"
)

// FarmEvent is the record shape on the farm-events topic
type FarmEvent struct {
	Type      string      `json:"type"`
	FarmID    uint        `json:"farm_id"`
	UserID    uint        `json:"user_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// EventService publishes farm mutations and alerts to Kafka for the
// notification/analytics layer. Publishing is best-effort: a broker
// outage must never fail the originating request.
type EventService struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventService(producer sarama.SyncProducer, topic string) *EventService {
	return &EventService{
		producer: producer,
		topic:    topic,
	}
}

// Publish sends one event to the farm-events topic, keyed by farm ID so
// events for one farm preserve order on a single partition.
func (s *EventService) Publish(eventType string, farmID, userID uint, payload interface{}) {
	if s.producer == nil {
		return
	}

	event := FarmEvent{
		Type:      eventType,
		FarmID:    farmID,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal farm event", "type", eventType, "farmID", farmID, "error", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", farmID)),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := s.producer.SendMessage(msg); err != nil {
		slog.Error("Failed to publish farm event", "type", eventType, "farmID", farmID, "error", err)
	}
}
