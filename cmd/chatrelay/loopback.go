package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/chat"
	"github.com/chatrelay/chatrelay/internal/foreign"
	"github.com/chatrelay/chatrelay/internal/foreign/inproc"
)

// loopbackListener is the foreign listener object hosted by the in-process
// runtime. It logs every event and acknowledges every message, so a relay
// without a real foreign runtime still drains the server queue.
type loopbackListener struct {
	rt     *inproc.Runtime
	logger zerolog.Logger
}

func (l *loopbackListener) Invoke(method string, args []foreign.Value) error {
	switch method {
	case "onIncomingMessage":
		envelope := args[0].([]byte)
		timestampMillis := args[1].(int64)
		ackHandle := args[2].(uint64)
		l.logger.Info().
			Int("envelope_bytes", len(envelope)).
			Int64("timestamp_ms", timestampMillis).
			Uint64("ack_handle", ackHandle).
			Msg("incoming message")

		token, ok := l.rt.Acks().Release(ackHandle)
		if !ok {
			return fmt.Errorf("unknown ack handle %d", ackHandle)
		}
		return token.(*chat.ServerMessageAck).Send()

	case "onQueueEmpty":
		l.logger.Info().Msg("queue empty")
		return nil

	case "onConnectionInterrupted":
		throwable := args[0].(inproc.Throwable)
		l.logger.Warn().Err(throwable.Cause).Msg("connection interrupted")
		return nil

	default:
		return fmt.Errorf("unknown method %s", method)
	}
}
