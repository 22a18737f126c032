// Package hub fans telemetry out to connected display websockets using a
// channel-based broadcast loop.
package hub

// MessageType indicates the websocket frame type
type MessageType int

const (
	// JSONMessage is sent as a text frame
	JSONMessage MessageType = iota
	// BinaryMessage is sent as a binary frame
	BinaryMessage
)

// Message is one queued frame
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates a text message from pre-encoded JSON
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}
