package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

// FrameMessage is the realtime frame type carrying a new message
const FrameMessage = "message"

// MessageService stores direct messages and pushes them to open sockets
type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier Notifier
	logger   zerolog.Logger
}

// NewMessageService creates a new MessageService. notifier may be nil.
func NewMessageService(repos *repositories.Repositories, notifier Notifier, logger zerolog.Logger) *MessageService {
	return &MessageService{
		messages: repos.Messages,
		users:    repos.Users,
		notifier: notifier,
		logger:   logger,
	}
}

// Send stores a message and pushes it to both parties' open connections
func (s *MessageService) Send(ctx context.Context, senderID, recipientID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "message content is required")
	}
	if senderID == recipientID {
		return nil, apperrors.NewBadRequestError("you cannot message yourself")
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: senderID, RecipientID: recipientID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.push(recipientID, msg)
	s.push(senderID, msg)
	return msg, nil
}

// SendFromSocket is Send for frames received over a websocket
func (s *MessageService) SendFromSocket(ctx context.Context, senderID, recipientID int64, content string) error {
	_, err := s.Send(ctx, senderID, recipientID, content)
	return err
}

func (s *MessageService) push(userID int64, msg *models.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendToUser(userID, FrameMessage, msg); err != nil {
		s.logger.Debug().Err(err).Int64("userID", userID).Msg("Realtime delivery skipped")
	}
}

// Conversations lists one summary per partner, newest first
func (s *MessageService) Conversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}

// Conversation returns the thread with partnerID and marks the partner's messages read
func (s *MessageService) Conversation(ctx context.Context, userID, partnerID int64) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, partnerID); err != nil {
		return nil, err
	}
	if _, err := s.messages.MarkRead(ctx, userID, partnerID); err != nil {
		return nil, err
	}
	return s.messages.Conversation(ctx, userID, partnerID)
}

// UnreadCount returns how many messages the user has not read
func (s *MessageService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.messages.UnreadCount(ctx, userID)
}
