// Package server manages individual WebSocket clients, handling read/write
// pumps, protocol error replies, and lifecycle control for each connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/chat"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client represents one WebSocket connection. It owns the socket and the
// outbound queue, and forwards every inbound frame to its chat.Session.
type Client struct {
	id             string
	conn           *websocket.Conn
	hub            *Hub
	addr           string
	session        *chat.Session
	maxMessageSize int64
	logger         zerolog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a Client for conn with an outbound queue of sendBuffer
// frames. conn may be nil in tests that only exercise the queue.
func NewClient(conn *websocket.Conn, hub *Hub, id, addr string, sendBuffer int, maxMessageSize int64, logger zerolog.Logger) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}

	return &Client{
		id:             id,
		conn:           conn,
		hub:            hub,
		addr:           addr,
		maxMessageSize: maxMessageSize,
		logger:         logger,
		send:           make(chan []byte, sendBuffer),
	}
}

// ID returns the client identifier, shared with its session.
func (c *Client) ID() string {
	return c.id
}

// GetSendChan returns the client's send channel for reading outgoing messages.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

// Send queues data for the write pump without blocking. It fails when the
// queue is full or the client is gone; the frame is then lost.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// closeSend closes the outbound queue; the write pump drains it and then
// closes the socket.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn().Err(err).Msg("error setting initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Warn().Err(err).Msg("error setting read deadline in pong handler")
		}
		return nil
	})
}

// handleReadError logs the reason the read loop is ending.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn().Int64("max_bytes", c.maxMessageSize).Msg("message exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.logger.Info().Err(err).Msg("client disconnected")
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.logger.Info().Err(err).Msg("client connection closed")
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig):
		c.logger.Warn().Err(err).Msg("unexpected WebSocket close")
	default:
		c.logger.Warn().Err(err).Msg("WebSocket read error")
	}
}

// processMessage hands one frame to the session and returns false when the
// connection should be dropped.
func (c *Client) processMessage(ctx context.Context, raw []byte) bool {
	err := c.session.HandleMessage(ctx, raw)
	switch {
	case err == nil:
		return true
	case errors.Is(err, chat.ErrSessionClosed):
		return false
	case errors.Is(err, chat.ErrMalformedPayload), errors.Is(err, chat.ErrBadMessageType):
		c.logger.Warn().Err(err).Msg("dropping client after protocol error")
		c.replyError(err)
		return false
	case ctx.Err() != nil:
		c.logger.Debug().Err(err).Msg("message abandoned after disconnect")
		return false
	default:
		c.logger.Info().Err(err).Msg("rejected client message")
		c.replyError(err)
		return true
	}
}

// replyError tells only this client why its frame was rejected.
func (c *Client) replyError(err error) {
	data, marshalErr := json.Marshal(chat.NewError(err.Error()))
	if marshalErr != nil {
		return
	}
	if sendErr := c.Send(data); sendErr != nil {
		c.logger.Debug().Err(sendErr).Msg("could not queue error reply")
	}
}

// readPump owns the socket's read side. Frames are handed to handleFrames in
// order, so the socket keeps being read while a command such as a joke fetch
// is in flight. When the socket closes, the connection context is cancelled
// and the session leaves its room without waiting for that command.
func (c *Client) readPump(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	frames := make(chan []byte)
	handled := make(chan struct{})

	go func() {
		defer close(handled)
		c.handleFrames(ctx, frames)
	}()

	defer func() {
		cancel()
		c.session.HandleClose()
		c.hub.unregister(c)
		<-handled
	}()

	c.setupReadConnection()

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		select {
		case frames <- rawMessage:
		case <-handled:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleFrames runs each inbound frame through the session. When a frame
// calls for dropping the connection it closes the outbound queue; the write
// pump then flushes pending replies and closes the socket, which ends
// readPump.
func (c *Client) handleFrames(ctx context.Context, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-frames:
			if !c.processMessage(ctx, raw) {
				c.closeSend()
				return
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		return c.handleMessage(message, ok)
	case <-ticker.C:
		return c.handlePing()
	}
}

// closeConnection safely closes the WebSocket connection with proper error handling
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Warn().Err(err).Msg("error closing connection")
		}
	}
}

// handleMessage processes outgoing messages and returns false if the connection should be closed
func (c *Client) handleMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Msg("error setting write deadline")
		return false
	}

	if !ok {
		return c.writeCloseMessage()
	}

	return c.writeTextMessage(message)
}

// writeCloseMessage sends a close message to the client
func (c *Client) writeCloseMessage() bool {
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Debug().Err(err).Msg("error writing close message")
		}
	}
	return false
}

// writeTextMessage writes one JSON payload as its own text frame.
func (c *Client) writeTextMessage(message []byte) bool {
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Warn().Err(err).Msg("error writing message")
		}
		return false
	}
	return true
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Msg("error setting write deadline for ping")
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("error writing ping message")
		return false
	}
	return true
}
