package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

// DefaultSuggestionLimit caps the suggestion list
const DefaultSuggestionLimit = 10

// ConnectionService manages the friend graph
type ConnectionService struct {
	connections repositories.ConnectionRepository
	users       repositories.UserRepository
	activity    *ActivityService
	logger      zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(repos *repositories.Repositories, activity *ActivityService, logger zerolog.Logger) *ConnectionService {
	return &ConnectionService{
		connections: repos.Connections,
		users:       repos.Users,
		activity:    activity,
		logger:      logger,
	}
}

// SendRequest asks recipientID to connect
func (s *ConnectionService) SendRequest(ctx context.Context, sender *models.User, recipientID int64) (*models.ConnectionRequest, error) {
	if sender.ID == recipientID {
		return nil, apperrors.NewBadRequestError("you cannot connect with yourself")
	}
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	connected, err := s.connections.AreConnected(ctx, sender.ID, recipientID)
	if err != nil {
		return nil, err
	}
	if connected {
		return nil, apperrors.ErrAlreadyConnected
	}
	pending, err := s.connections.PendingBetween(ctx, sender.ID, recipientID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, apperrors.ErrRequestPending
	}

	req := &models.ConnectionRequest{
		SenderID:          sender.ID,
		SenderUsername:    sender.Username,
		RecipientID:       recipientID,
		RecipientUsername: recipient.Username,
	}
	if err := s.connections.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *ConnectionService) received(ctx context.Context, user *models.User, requestID int64) (*models.ConnectionRequest, error) {
	req, err := s.connections.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RecipientID != user.ID {
		return nil, apperrors.NewForbiddenError("only the recipient can answer this request")
	}
	if req.Status != models.RequestPending {
		return nil, apperrors.ErrRequestNotPending
	}
	return req, nil
}

// Accept accepts a received request and writes both connection rows
func (s *ConnectionService) Accept(ctx context.Context, user *models.User, requestID int64) error {
	req, err := s.received(ctx, user, requestID)
	if err != nil {
		return err
	}
	if err := s.connections.Accept(ctx, requestID); err != nil {
		return err
	}

	s.activity.Record(ctx, user.ID, ActionConnectionAccept, "Connected with "+req.SenderUsername)
	return nil
}

// Reject declines a received request
func (s *ConnectionService) Reject(ctx context.Context, user *models.User, requestID int64) error {
	if _, err := s.received(ctx, user, requestID); err != nil {
		return err
	}
	return s.connections.Reject(ctx, requestID)
}

// Connections lists the user's connections
func (s *ConnectionService) Connections(ctx context.Context, user *models.User) ([]models.Connection, error) {
	return s.connections.ListConnections(ctx, user.ID)
}

// Incoming lists pending requests the user received
func (s *ConnectionService) Incoming(ctx context.Context, user *models.User) ([]models.ConnectionRequest, error) {
	return s.connections.ListIncoming(ctx, user.ID)
}

// Outgoing lists pending requests the user sent
func (s *ConnectionService) Outgoing(ctx context.Context, user *models.User) ([]models.ConnectionRequest, error) {
	return s.connections.ListOutgoing(ctx, user.ID)
}

// Remove deletes the connection in both directions
func (s *ConnectionService) Remove(ctx context.Context, user *models.User, otherID int64) error {
	n, err := s.connections.Remove(ctx, user.ID, otherID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewResourceNotFoundError("connection not found")
	}
	return nil
}

// Suggestions lists active users the caller has no connection or pending request with
func (s *ConnectionService) Suggestions(ctx context.Context, user *models.User, limit int) ([]dto.SuggestionResponse, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	users, err := s.users.Suggestions(ctx, user.ID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SuggestionResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.SuggestionResponse{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	return out, nil
}
