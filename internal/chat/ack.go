package chat

import (
	"errors"
	"sync"
)

// ErrAlreadyAcked indicates Send was called more than once on the same
// acknowledgement.
var ErrAlreadyAcked = errors.New("server message already acknowledged")

// ServerMessageAck is a send-once confirmation for one delivered message.
// Dropping it without sending leaves the message pending on the server; it
// will be redelivered on a later connection.
type ServerMessageAck struct {
	once     sync.Once
	send     func() error
	onHandle func(handle uint64)
}

// NewServerMessageAck wraps send into a send-once acknowledgement.
func NewServerMessageAck(send func() error) *ServerMessageAck {
	return &ServerMessageAck{send: send}
}

// OnHandleBound registers fn to run when a foreign runtime mints a handle
// for this acknowledgement. It must be called before the acknowledgement is
// handed to a listener.
func (a *ServerMessageAck) OnHandleBound(fn func(handle uint64)) {
	a.onHandle = fn
}

// HandleBound reports the handle a foreign runtime minted for this
// acknowledgement. Runtimes call it once, at mint time.
func (a *ServerMessageAck) HandleBound(handle uint64) {
	if a.onHandle != nil {
		a.onHandle(handle)
	}
}

// Send transmits the acknowledgement. The first call wins; every later call
// returns ErrAlreadyAcked.
func (a *ServerMessageAck) Send() error {
	err := ErrAlreadyAcked
	a.once.Do(func() {
		err = a.send()
	})
	return err
}
