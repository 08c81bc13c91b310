package gateway

import "errors"

var ErrBackpressure = errors.New("backpressure")

// Conn is the transport endpoint for one client.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	// TrySend queues a frame without blocking. A slow consumer gets
	// ErrBackpressure and the frame is dropped; delivery is best-effort
	// and session-scoped, there is no redelivery.
	TrySend(frame []byte) error
	Close()
}
