// Package server tracks live WebSocket clients for the roomchat service via the
// Hub type, starting their pumps and closing them all on shutdown.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/log"
)

// Hub owns the set of live clients and the goroutines serving them. Message
// fan-out is not its job: that happens in chat.Room.
type Hub struct {
	clients map[*Client]struct{}
	mutex   sync.Mutex
	closing bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger
}

// NewHub creates an empty Hub ready to accept clients.
func NewHub(logger zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[*Client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// Register adds the client and starts its read and write pumps. It returns
// false, starting nothing, once shutdown has begun.
func (h *Hub) Register(client *Client) bool {
	h.mutex.Lock()
	if h.closing {
		h.mutex.Unlock()
		return false
	}
	h.clients[client] = struct{}{}
	clientCount := len(h.clients)
	h.wg.Add(2)
	h.mutex.Unlock()

	h.logger.Info().
		Str(log.FieldClientAddr, client.addr).
		Int("clients", clientCount).
		Msg("client registered")

	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump(h.ctx)
	}()
	return true
}

// unregister forgets the client and closes its outbound queue.
func (h *Hub) unregister(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	client.closeSend()
	if ok {
		h.logger.Info().
			Str(log.FieldClientAddr, client.addr).
			Int("clients", clientCount).
			Msg("client unregistered")
	}
}

// Count returns the number of live clients.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// shutdownClients closes every live socket, which ends each client's read pump.
func (h *Hub) shutdownClients() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
			h.logger.Warn().Err(err).Str(log.FieldClientAddr, client.addr).Msg("error closing client connection")
		}
	}

	h.logger.Info().Int("clients", len(clients)).Msg("closed client connections")
}

// Shutdown stops accepting clients, cancels in-flight work such as joke
// fetches, closes all connections and waits for their goroutines, giving up
// after timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.logger.Info().Msg("initiating hub shutdown")

	h.mutex.Lock()
	h.closing = true
	h.mutex.Unlock()

	h.cancel()
	h.shutdownClients()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info().Msg("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.logger.Warn().Msg("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
