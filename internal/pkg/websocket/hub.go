package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Frame types pushed to clients
const (
	FrameMessage = "message"
	FrameError   = "error"
)

// ErrHubClosed is returned when delivering after the hub has stopped
var ErrHubClosed = errors.New("websocket hub is closed")

// Frame is the envelope of every websocket payload, in both directions
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type delivery struct {
	userID  int64
	payload []byte
	// client, when set, restricts the delivery to a single connection
	client *Client
}

// Hub maintains the set of active clients keyed by user and pushes frames to them
type Hub struct {
	// Registered clients organized by user ID; a user may have several tabs open
	clients map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery

	// done is closed when Run returns
	done     chan struct{}
	doneOnce sync.Once

	// Mutex for concurrent reads of clients from outside the run loop
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverToUser(d)
		}
	}
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			close(client.send)
		}
		delete(h.clients, userID)
	}
	h.logger.Info().Msg("Websocket hub stopped")
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

// deliverToUser writes the payload to every connection of the user
func (h *Hub) deliverToUser(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[d.userID]
	if !ok {
		h.logger.Debug().Int64("userID", d.userID).Msg("User has no open connections")
		return
	}

	for client := range set {
		if d.client != nil && d.client != client {
			continue
		}
		select {
		case client.send <- d.payload:
		default:
			// Send buffer full: the client is too slow, drop it.
			h.removeLocked(client)
		}
	}
}

// SendToUser pushes a frame of the given type to all of the user's connections
func (h *Hub) SendToUser(userID int64, frameType string, data interface{}) error {
	return h.send(delivery{userID: userID}, frameType, data)
}

func (h *Hub) send(d delivery, frameType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	d.payload, err = json.Marshal(Frame{Type: frameType, Data: raw})
	if err != nil {
		return err
	}

	select {
	case h.deliver <- d:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// ClientCount returns the number of open connections of a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
