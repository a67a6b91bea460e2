// Package bridge relays chat events into a listener object owned by a
// foreign runtime. Each native event becomes exactly one best-effort foreign
// call; per-call failures are logged and swallowed so one bad event never
// halts the event source.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/chat"
	"github.com/chatrelay/chatrelay/internal/foreign"
)

// ExpectedListenerType is the declared type a foreign object must carry to
// be wrapped as a chat listener. Validated once, at construction.
const ExpectedListenerType = "io.chatrelay.client.ChatListener"

// The fixed set of foreign methods the bridge ever invokes.
const (
	methodOnIncomingMessage       = "onIncomingMessage"
	methodOnQueueEmpty            = "onQueueEmpty"
	methodOnConnectionInterrupted = "onConnectionInterrupted"
)

// ListenerBridge adapts a foreign listener object to chat.Listener. All
// instances share the same un-owned runtime reference; each instance holds
// its own runtime-managed strong reference to the listener object. The
// bridge keeps no per-call state, so concurrent deliveries through the same
// instance or through clones need no native-side lock.
type ListenerBridge struct {
	rt     foreign.Runtime
	ref    foreign.GlobalRef
	logger zerolog.Logger
}

var _ chat.Listener = (*ListenerBridge)(nil)
var _ chat.ListenerMaker = (*ListenerBridge)(nil)

// NewListenerBridge validates obj against the expected contract type and
// wraps it. On a type mismatch no reference is retained. The check is
// synchronous so a mis-wired listener fails before any event can be lost.
func NewListenerBridge(ctx context.Context, rt foreign.Runtime, obj foreign.Object) (*ListenerBridge, error) {
	if got := obj.TypeName(); got != ExpectedListenerType {
		return nil, &foreign.TypeMismatchError{Want: ExpectedListenerType, Got: got}
	}
	ref, err := rt.NewGlobalRef(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listener reference: %w", err)
	}
	return &ListenerBridge{
		rt:     rt,
		ref:    ref,
		logger: zerolog.Ctx(ctx).With().Str("component", "listener_bridge").Logger(),
	}, nil
}

// Clone returns a bridge referencing the same runtime and holding one
// additional strong reference to the same listener object. It needs no
// attached thread and is safe to call from any goroutine.
func (b *ListenerBridge) Clone() *ListenerBridge {
	return &ListenerBridge{
		rt:     b.rt,
		ref:    b.rt.CloneGlobalRef(b.ref),
		logger: b.logger,
	}
}

// MakeListener hands out a fresh instance per connection, decoupling each
// delivery path's reference from the original subscriber's.
func (b *ListenerBridge) MakeListener() chat.Listener {
	return b.Clone()
}

// Release drops this instance's strong reference. It is called by the
// subsystem that owns the listener, never by the bridge itself; using the
// bridge after Release is undefined.
func (b *ListenerBridge) Release() {
	b.rt.DeleteGlobalRef(b.ref)
}

// attachAndLog attaches the calling thread, runs op, and converts any
// failure into a diagnostic instead of propagating it. Attachment failure is
// the one exception: it means the runtime is unreachable, which is not a
// per-call fault, so it panics.
func (b *ListenerBridge) attachAndLog(name string, op func(env foreign.Env) error) {
	env, err := b.rt.AttachCurrentThread()
	if err != nil {
		if !foreign.IsAttachError(err) {
			err = &foreign.AttachError{Err: err}
		}
		panic(err)
	}
	if err := op(env); err != nil {
		b.logger.Error().Err(err).Str("operation", name).Msgf("failed to report %s", name)
	}
}

// ReceivedIncomingMessage implements chat.Listener.
func (b *ListenerBridge) ReceivedIncomingMessage(envelope []byte, timestamp time.Time, ack *chat.ServerMessageAck) {
	b.attachAndLog("incoming message", func(env foreign.Env) error {
		envArr, err := env.BytesValue(envelope)
		if err != nil {
			return err
		}
		ts, err := env.TimestampValue(timestamp)
		if err != nil {
			return err
		}
		ackHandle, err := env.TokenValue(ack)
		if err != nil {
			return err
		}
		return env.CallVoidMethod(b.ref, methodOnIncomingMessage, envArr, ts, ackHandle)
	})
}

// ReceivedQueueEmpty implements chat.Listener.
func (b *ListenerBridge) ReceivedQueueEmpty() {
	b.attachAndLog("queue empty", func(env foreign.Env) error {
		return env.CallVoidMethod(b.ref, methodOnQueueEmpty)
	})
}

// ConnectionInterrupted implements chat.Listener. If the cause cannot be
// translated into a foreign throwable, no foreign call is made at all.
func (b *ListenerBridge) ConnectionInterrupted(cause error) {
	b.attachAndLog("connection interrupted", func(env foreign.Env) error {
		throwable, err := env.ThrowableValue(cause)
		if err != nil {
			b.logger.Error().Err(err).Msgf("failed to call %s with cause %v", methodOnConnectionInterrupted, cause)
			return nil
		}
		if err := env.CallVoidMethod(b.ref, methodOnConnectionInterrupted, throwable); err != nil {
			return fmt.Errorf("reporting cause %q: %w", cause, err)
		}
		return nil
	})
}
