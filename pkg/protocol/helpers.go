package protocol

import (
	"time"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewMetricsMessage creates a metrics telemetry message
func NewMetricsMessage(m MetricsData) (*Message, error) {
	return NewMessage(TypeMetrics, m)
}

// NewSlidersMessage creates a slider state message
func NewSlidersMessage(values map[string]float64) (*Message, error) {
	return NewMessage(TypeSliders, SlidersData{Values: values})
}

// NewSessionMessage creates a session summary message from any JSON-encodable snapshot
func NewSessionMessage(snapshot interface{}) (*Message, error) {
	return NewMessage(TypeSession, snapshot)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response to a ping
func NewPongMessage(ping PingData) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        ping.ID,
		PingTS:    ping.Timestamp,
		PongTS:    now,
		LatencyMs: now - ping.Timestamp,
	})
}

// =============================================================================
// Helper functions for parsing message data
// =============================================================================

// ParsePoseData extracts a detection frame from a message
func (m *Message) ParsePoseData() (*PoseData, error) {
	var data PoseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ParseApplyData extracts an external apply from a message
func (m *Message) ParseApplyData() (*ApplyData, error) {
	var data ApplyData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ParseResetData extracts reset flags from a message
func (m *Message) ParseResetData() (*ResetData, error) {
	var data ResetData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ParsePingData extracts ping data from a message
func (m *Message) ParsePingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
