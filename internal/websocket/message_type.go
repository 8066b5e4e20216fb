package websocket

import (
	"time"
)

// MessageType represents the type of WebSocket message using a custom enum type for better type safety
type MessageType string

// Inbound message types
const (
	MessageTypeSubscribeFarm    MessageType = "subscribe_farm"
	MessageTypeUnsubscribeFarm  MessageType = "unsubscribe_farm"
	MessageTypeRequestDashboard MessageType = "request_dashboard_data"
	MessageTypePing             MessageType = "ping"
)

// Outbound message types
const (
	MessageTypeInitialData             MessageType = "initial_data"
	MessageTypeSubscriptionConfirmed   MessageType = "subscription_confirmed"
	MessageTypeUnsubscriptionConfirmed MessageType = "unsubscription_confirmed"
	MessageTypeDashboardUpdate         MessageType = "dashboard_update"
	MessageTypeFarmBroadcast           MessageType = "farm_broadcast"
	MessageTypeHeartbeat               MessageType = "heartbeat"
	MessageTypePong                    MessageType = "pong"
	MessageTypeError                   MessageType = "error"
)

// String returns the string representation of the MessageType
func (mt MessageType) String() string {
	return string(mt)
}

// Error messages reported to clients. Protocol errors never close the
// connection; only an explicit close or a heartbeat send failure does.
const (
	ErrMsgAccessDenied  = "access denied"
	ErrMsgUnknownType   = "unknown message type"
	ErrMsgInvalidFormat = "invalid message format"
	ErrMsgDashboard     = "failed to load dashboard data"
)

// InboundMessage is the shape of every client-to-server frame
type InboundMessage struct {
	Type   MessageType `json:"type"`
	FarmID uint        `json:"farm_id,omitempty"`
}

// OutboundMessage is the shape of every server-to-client frame.
// Fields not relevant to a given type are omitted from the JSON.
type OutboundMessage struct {
	Type      MessageType `json:"type"`
	FarmID    uint        `json:"farm_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// InitialData is pushed once, right after a connection is admitted
type InitialData struct {
	Farms                 interface{} `json:"farms"`
	ConnectionEstablished bool        `json:"connection_established"`
	ServerTime            int64       `json:"server_time"`
}

func NewInitialData(farms interface{}) *OutboundMessage {
	return &OutboundMessage{
		Type: MessageTypeInitialData,
		Data: InitialData{
			Farms:                 farms,
			ConnectionEstablished: true,
			ServerTime:            time.Now().Unix(),
		},
	}
}

func NewSubscriptionConfirmed(farmID uint) *OutboundMessage {
	return &OutboundMessage{
		Type:    MessageTypeSubscriptionConfirmed,
		FarmID:  farmID,
		Message: "subscribed to farm updates",
	}
}

func NewUnsubscriptionConfirmed(farmID uint) *OutboundMessage {
	return &OutboundMessage{
		Type:    MessageTypeUnsubscriptionConfirmed,
		FarmID:  farmID,
		Message: "unsubscribed from farm updates",
	}
}

func NewDashboardUpdate(farmID uint, data interface{}) *OutboundMessage {
	return &OutboundMessage{
		Type:      MessageTypeDashboardUpdate,
		FarmID:    farmID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// NewFarmBroadcast builds the envelope delivered to every eligible
// connection for a single Publish call. It is immutable once built.
func NewFarmBroadcast(farmID uint, data interface{}) *OutboundMessage {
	return &OutboundMessage{
		Type:      MessageTypeFarmBroadcast,
		FarmID:    farmID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

func NewHeartbeat() *OutboundMessage {
	return &OutboundMessage{
		Type:      MessageTypeHeartbeat,
		Timestamp: time.Now().Unix(),
	}
}

func NewPong() *OutboundMessage {
	return &OutboundMessage{
		Type:      MessageTypePong,
		Timestamp: time.Now().Unix(),
	}
}

func NewError(message string) *OutboundMessage {
	return &OutboundMessage{
		Type:    MessageTypeError,
		Message: message,
	}
}
