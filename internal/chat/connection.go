package chat

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/store"
)

const (
	pathMessage    = "/api/v1/message"
	pathQueueEmpty = "/api/v1/queue/empty"

	// Application close codes sent by the server.
	closeCodeDeviceDelinked        = 4401
	closeCodeConnectionInvalidated = 4409
	closeCodeAppExpired            = 4498

	defaultHandshakeTimeout = 10 * time.Second
)

// DialConfig carries the transport parameters of one chat connection.
type DialConfig struct {
	// URL is the websocket endpoint, ws:// or wss://.
	URL string
	// Origin is sent as the Origin header when non-empty.
	Origin string
	// TLS overrides the dialer's TLS configuration when non-nil.
	TLS *tls.Config
}

// frame is the wire representation of one websocket message. Requests flow
// from the server; the client answers each request with a response carrying
// the same frame ID.
type frame struct {
	Type      string `json:"type"` // "request" or "response"
	ID        uint64 `json:"id"`
	Verb      string `json:"verb,omitempty"`
	Path      string `json:"path,omitempty"`
	Body      []byte `json:"body,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // epoch milliseconds
	Status    uint32 `json:"status,omitempty"`
}

// Connection is one established chat session. Events read off the wire are
// delivered into the listener from the connection's own goroutine.
type Connection struct {
	conn     *websocket.Conn
	listener Listener
	journal  store.DataAccess
	logger   zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// Dial establishes a chat connection and starts delivering its events into
// a fresh listener obtained from maker. The connection owns that listener
// and releases it once its read loop exits. A non-nil journal records every
// delivery and its acknowledgement state.
func Dial(ctx context.Context, cfg DialConfig, maker ListenerMaker, journal store.DataAccess) (*Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("chat URL is required")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: defaultHandshakeTimeout,
		TLSClientConfig:  cfg.TLS,
	}
	var header http.Header
	if cfg.Origin != "" {
		header = http.Header{"Origin": []string{cfg.Origin}}
	}

	conn, _, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chat endpoint %s: %w", cfg.URL, err)
	}

	c := &Connection{
		conn:     conn,
		listener: maker.MakeListener(),
		journal:  journal,
		logger:   zerolog.Ctx(ctx).With().Str("component", "chat_connection").Logger(),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close shuts the connection down. No interrupt event is delivered for a
// locally requested close; the caller already knows.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		werr := c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			c.logger.Debug().Err(werr).Msg("failed to send close frame")
		}
		err = c.conn.Close()
	})
	<-c.done
	return err
}

// Done is closed once the read loop has exited and the final event, if any,
// has been delivered.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) readLoop() {
	defer close(c.done)
	defer c.releaseListener()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				// Locally requested shutdown.
			default:
				c.listener.ConnectionInterrupted(classifyDisconnect(err))
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn().Err(err).Msg("dropping undecodable frame")
			continue
		}
		if f.Type != "request" {
			continue
		}
		c.handleRequest(f)
	}
}

// releaseListener drops the connection's reference to its listener once no
// further event can be delivered. Listeners backed by a counted foreign
// reference expose Release; plain listeners need no teardown.
func (c *Connection) releaseListener() {
	if r, ok := c.listener.(interface{ Release() }); ok {
		r.Release()
	}
}

func (c *Connection) handleRequest(f frame) {
	switch f.Path {
	case pathMessage:
		c.handleMessage(f)
	case pathQueueEmpty:
		if err := c.sendResponse(f.ID, http.StatusOK); err != nil {
			c.logger.Warn().Err(err).Uint64("frame_id", f.ID).Msg("failed to respond to queue empty")
		}
		c.listener.ReceivedQueueEmpty()
	default:
		c.logger.Warn().Str("path", f.Path).Msg("unknown request path")
		if err := c.sendResponse(f.ID, http.StatusNotFound); err != nil {
			c.logger.Warn().Err(err).Uint64("frame_id", f.ID).Msg("failed to respond to unknown request")
		}
	}
}

func (c *Connection) handleMessage(f frame) {
	timestamp := time.UnixMilli(f.Timestamp)

	journalID := ""
	if c.journal != nil {
		id, err := c.journal.RecordDelivery(store.Delivery{
			ServerFrameID: f.ID,
			Envelope:      f.Body,
			Timestamp:     timestamp,
		})
		if err != nil {
			c.logger.Error().Err(err).Uint64("frame_id", f.ID).Msg("failed to journal delivery")
		} else {
			journalID = id
		}
	}

	ack := NewServerMessageAck(func() error {
		if c.journal != nil && journalID != "" {
			if err := c.journal.MarkAcked(journalID); err != nil {
				c.logger.Error().Err(err).Str("delivery_id", journalID).Msg("failed to journal ack")
			}
		}
		return c.sendResponse(f.ID, http.StatusOK)
	})
	if c.journal != nil && journalID != "" {
		ack.OnHandleBound(func(handle uint64) {
			if err := c.journal.RecordAckHandle(journalID, handle); err != nil {
				c.logger.Error().Err(err).Str("delivery_id", journalID).Msg("failed to journal ack handle")
			}
		})
	}

	c.listener.ReceivedIncomingMessage(f.Body, timestamp, ack)
}

func (c *Connection) sendResponse(id uint64, status uint32) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame{Type: "response", ID: id, Status: status})
}

func classifyDisconnect(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			return ErrRemoteIdle
		case closeCodeDeviceDelinked:
			return ErrDeviceDelinked
		case closeCodeConnectionInvalidated:
			return ErrConnectionInvalidated
		case closeCodeAppExpired:
			return ErrAppExpired
		default:
			return fmt.Errorf("%w: close code %d", ErrServiceUnavailable, closeErr.Code)
		}
	}
	return &TransportError{Err: err}
}
