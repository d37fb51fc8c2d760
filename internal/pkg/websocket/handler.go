package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserIDKey is the gin context key the session middleware stores the caller's id under
const UserIDKey = "userID"

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	messages *MessageHandler
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, messages *MessageHandler, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		messages: messages,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Open the realtime message socket
// @Description Upgrades the connection to a WebSocket. The server pushes {"type":"message","data":Message} frames; clients may send {"type":"message","data":{"recipientId":2,"content":"..."}}
// @Tags messages
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	value, exists := c.Get(UserIDKey)
	userID, ok := value.(int64)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "AUTH_008", "message": "Authentication required"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		logger: h.logger,
	}
	if h.messages != nil {
		client.inbound = h.messages.HandleFrame
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
