package postgres

import (
	"context"
	"fmt"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// ConnectionRepository handles connection requests and the connection graph
type ConnectionRepository struct {
	base
}

const requestSelect = `
	SELECT cr.id, cr.sender_id, s.username, cr.recipient_id, rc.username, cr.status, cr.created_at, cr.updated_at
	FROM connection_requests cr
	JOIN users s ON s.id = cr.sender_id
	JOIN users rc ON rc.id = cr.recipient_id`

func scanRequest(row pgx.Row, req *models.ConnectionRequest) error {
	return row.Scan(&req.ID, &req.SenderID, &req.SenderUsername, &req.RecipientID, &req.RecipientUsername,
		&req.Status, &req.CreatedAt, &req.UpdatedAt)
}

func (r *ConnectionRepository) listRequests(ctx context.Context, sql string, args ...any) ([]models.ConnectionRequest, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing connection requests: %w", err)
	}
	defer rows.Close()

	out := []models.ConnectionRequest{}
	for rows.Next() {
		var req models.ConnectionRequest
		if err := scanRequest(rows, &req); err != nil {
			return nil, fmt.Errorf("error scanning connection request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// CreateRequest inserts a pending request
func (r *ConnectionRepository) CreateRequest(ctx context.Context, req *models.ConnectionRequest) error {
	req.Status = models.RequestPending
	err := r.db.QueryRow(ctx, `
		INSERT INTO connection_requests (sender_id, recipient_id, status) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`, req.SenderID, req.RecipientID, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "connection_requests_pending_key") {
			return apperrors.ErrRequestPending
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating connection request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request by ID
func (r *ConnectionRepository) GetRequest(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	req := &models.ConnectionRequest{}
	if err := scanRequest(r.db.QueryRow(ctx, requestSelect+` WHERE cr.id = $1`, id), req); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error getting connection request: %w", err)
	}
	return req, nil
}

// PendingBetween returns a pending request in either direction, or nil
func (r *ConnectionRepository) PendingBetween(ctx context.Context, a, b int64) (*models.ConnectionRequest, error) {
	req := &models.ConnectionRequest{}
	err := scanRequest(r.db.QueryRow(ctx, requestSelect+`
		WHERE cr.status = 'pending'
			AND ((cr.sender_id = $1 AND cr.recipient_id = $2) OR (cr.sender_id = $2 AND cr.recipient_id = $1))
		LIMIT 1`, a, b), req)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error checking pending request: %w", err)
	}
	return req, nil
}

// AreConnected reports whether a and b are connected
func (r *ConnectionRepository) AreConnected(ctx context.Context, a, b int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM connections WHERE user_id = $1 AND connected_user_id = $2)`, a, b).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("error checking connection: %w", err)
	}
	return ok, nil
}

// Accept marks the request accepted and inserts both directions of the connection
func (r *ConnectionRepository) Accept(ctx context.Context, requestID int64) error {
	return r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var sender, recipient int64
		var status models.RequestStatus
		err := tx.QueryRow(ctx,
			`SELECT sender_id, recipient_id, status FROM connection_requests WHERE id = $1 FOR UPDATE`, requestID).
			Scan(&sender, &recipient, &status)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrRequestNotFound
			}
			return fmt.Errorf("error locking connection request: %w", err)
		}
		if status != models.RequestPending {
			return apperrors.ErrRequestNotPending
		}

		if _, err := tx.Exec(ctx,
			`UPDATE connection_requests SET status = 'accepted', updated_at = NOW() WHERE id = $1`, requestID); err != nil {
			return fmt.Errorf("error accepting connection request: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO connections (user_id, connected_user_id) VALUES ($1, $2), ($2, $1)
			ON CONFLICT ON CONSTRAINT connections_pair_key DO NOTHING`, sender, recipient)
		if err != nil {
			return fmt.Errorf("error creating connection: %w", err)
		}
		return nil
	})
}

// Reject marks a pending request rejected
func (r *ConnectionRepository) Reject(ctx context.Context, requestID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE connection_requests SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, requestID)
	if err != nil {
		return fmt.Errorf("error rejecting connection request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequestNotPending
	}
	return nil
}

// ListConnections lists the user's connections newest first
func (r *ConnectionRepository) ListConnections(ctx context.Context, userID int64) ([]models.Connection, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.user_id, c.connected_user_id, u.username, c.created_at
		FROM connections c JOIN users u ON u.id = c.connected_user_id
		WHERE c.user_id = $1 ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	defer rows.Close()

	out := []models.Connection{}
	for rows.Next() {
		var c models.Connection
		if err := rows.Scan(&c.ID, &c.UserID, &c.ConnectedUserID, &c.ConnectedUsername, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning connection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListIncoming lists pending requests addressed to the user
func (r *ConnectionRepository) ListIncoming(ctx context.Context, userID int64) ([]models.ConnectionRequest, error) {
	return r.listRequests(ctx, requestSelect+`
		WHERE cr.recipient_id = $1 AND cr.status = 'pending' ORDER BY cr.created_at DESC`, userID)
}

// ListOutgoing lists pending requests the user sent
func (r *ConnectionRepository) ListOutgoing(ctx context.Context, userID int64) ([]models.ConnectionRequest, error) {
	return r.listRequests(ctx, requestSelect+`
		WHERE cr.sender_id = $1 AND cr.status = 'pending' ORDER BY cr.created_at DESC`, userID)
}

// Remove deletes both directions of the connection between a and b
func (r *ConnectionRepository) Remove(ctx context.Context, a, b int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM connections
		WHERE (user_id = $1 AND connected_user_id = $2) OR (user_id = $2 AND connected_user_id = $1)`, a, b)
	if err != nil {
		return 0, fmt.Errorf("error removing connection: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MessageRepository handles direct messages
type MessageRepository struct {
	base
}

// Create stores a message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (sender_id, recipient_id, content) VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at`, m.SenderID, m.RecipientID, m.Content).
		Scan(&m.ID, &m.IsRead, &m.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// Conversation returns the messages exchanged by the two users oldest first
func (r *MessageRepository) Conversation(ctx context.Context, userID, partnerID int64) ([]models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sender_id, recipient_id, content, is_read, created_at FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at, id`, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead marks every unread message from senderID to recipientID as read
func (r *MessageRepository) MarkRead(ctx context.Context, recipientID, senderID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE recipient_id = $1 AND sender_id = $2 AND NOT is_read`,
		recipientID, senderID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Conversations lists one entry per partner with the latest message, newest first
func (r *MessageRepository) Conversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		WITH thread AS (
			SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END AS partner_id
			FROM messages m WHERE m.sender_id = $1 OR m.recipient_id = $1
		), latest AS (
			SELECT DISTINCT ON (partner_id) * FROM thread ORDER BY partner_id, created_at DESC, id DESC
		)
		SELECT l.partner_id, u.username, l.id, l.sender_id, l.recipient_id, l.content, l.is_read, l.created_at,
			(SELECT COUNT(*) FROM messages x WHERE x.sender_id = l.partner_id AND x.recipient_id = $1 AND NOT x.is_read)
		FROM latest l JOIN users u ON u.id = l.partner_id
		ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		m := &c.LastMessage
		if err := rows.Scan(&c.PartnerID, &c.PartnerUsername, &m.ID, &m.SenderID, &m.RecipientID, &m.Content,
			&m.IsRead, &m.CreatedAt, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UnreadCount counts unread messages addressed to the user
func (r *MessageRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND NOT is_read`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}
