// Package chat implements the native side of the chat session: the listener
// capability set that connections deliver events into, the send-once server
// acknowledgement, and the websocket connection that produces the events.
package chat

import "time"

// Listener receives the events of one chat connection. Deliveries may come
// from several independent goroutines concurrently, with no cross-goroutine
// ordering guarantee. Implementations must not block the connection beyond
// what a single delivery costs.
type Listener interface {
	// ReceivedIncomingMessage delivers one envelope. The envelope bytes
	// are borrowed for the duration of the call only. The ack must be
	// sent once the message has been durably handled.
	ReceivedIncomingMessage(envelope []byte, timestamp time.Time, ack *ServerMessageAck)

	// ReceivedQueueEmpty signals that the server has drained the message
	// queue for this session.
	ReceivedQueueEmpty()

	// ConnectionInterrupted reports why the connection ended. It is the
	// last event delivered on a connection.
	ConnectionInterrupted(cause error)
}

// ListenerMaker produces a fresh Listener per connection, so each delivery
// path owns its own instance. The connection that obtains a Listener takes
// ownership of it and, if the instance exposes a Release method, calls it
// after the final event has been delivered.
type ListenerMaker interface {
	MakeListener() Listener
}
