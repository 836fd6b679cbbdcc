// Package events contains the WebSocket event contracts pushed to dashboard clients.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset messages
	MessageTypeDatasetRefreshed MessageType = "dataset:refreshed"
	MessageTypeDatasetFailed    MessageType = "dataset:failed"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetRefreshed tells clients that the cached table was reloaded and
// any view they hold is stale.
type DatasetRefreshed struct {
	Source   string `json:"source"`
	RowCount int    `json:"row_count"`
	Columns  int    `json:"columns"`
}

// DatasetFailed tells clients that a reload failed and the dashboard is unavailable.
type DatasetFailed struct {
	Source string `json:"source"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

// NewMessage builds a message of the given type stamped with the current time.
func NewMessage(msgType MessageType, traceID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}
