package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// MessageSender persists a direct message and notifies both parties
type MessageSender interface {
	SendFromSocket(ctx context.Context, senderID, recipientID int64, content string) error
}

// outgoingMessage is the data of an inbound "message" frame
type outgoingMessage struct {
	RecipientID int64  `json:"recipientId"`
	Content     string `json:"content"`
}

// MessageHandler processes frames sent by clients
type MessageHandler struct {
	sender MessageSender
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(sender MessageSender, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		sender: sender,
		logger: logger,
	}
}

// HandleFrame dispatches a client frame. Only "message" frames are accepted.
func (h *MessageHandler) HandleFrame(c *Client, frame Frame) {
	if frame.Type != FrameMessage {
		c.reply(FrameError, map[string]string{"message": "unsupported frame type"})
		return
	}

	var msg outgoingMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil || msg.RecipientID == 0 || msg.Content == "" {
		c.reply(FrameError, map[string]string{"message": "recipientId and content are required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The sender is always the authenticated user of the connection
	if err := h.sender.SendFromSocket(ctx, c.userID, msg.RecipientID, msg.Content); err != nil {
		h.logger.Debug().
			Err(err).
			Int64("senderID", c.userID).
			Int64("recipientID", msg.RecipientID).
			Msg("Failed to send websocket message")
		c.reply(FrameError, map[string]string{"message": err.Error()})
	}
}
