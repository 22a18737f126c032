// Package protocol defines the WebSocket message types exchanged with the
// detector, the control surface and the display relay.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Detector → pipeline
	TypePose MessageType = "pose" // One detection frame

	// Control surface → pipeline
	TypeApply MessageType = "apply" // Blend external slider values
	TypeReset MessageType = "reset" // Zero everything

	// Pipeline → display
	TypeMetrics MessageType = "metrics" // Smoothed affect signals
	TypeSliders MessageType = "sliders" // Slider state
	TypeSession MessageType = "session" // Session summary

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

var knownTypes = map[MessageType]bool{
	TypePose: true, TypeApply: true, TypeReset: true,
	TypeMetrics: true, TypeSliders: true, TypeSession: true,
	TypePing: true, TypePong: true,
}

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes. Unknown types are rejected
// with ErrUnknownType.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if !knownTypes[msg.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return &msg, nil
}
