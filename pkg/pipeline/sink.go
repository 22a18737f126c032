package pipeline

import "github.com/teslashibe/motionsense/pkg/protocol"

// Sink receives telemetry messages. Send must not block; implementations
// queue or drop.
type Sink interface {
	Name() string
	Send(msg *protocol.Message) error
}
