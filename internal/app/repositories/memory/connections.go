package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type connectionRepository struct {
	db *DB
}

var _ repositories.ConnectionRepository = (*connectionRepository)(nil)

func (db *DB) viewRequestLocked(req *models.ConnectionRequest) models.ConnectionRequest {
	out := *req
	out.SenderUsername = db.username(req.SenderID)
	out.RecipientUsername = db.username(req.RecipientID)
	return out
}

func (db *DB) pendingBetween(a, b int64) *models.ConnectionRequest {
	for _, req := range db.requests {
		if req.Status != models.RequestPending {
			continue
		}
		if (req.SenderID == a && req.RecipientID == b) || (req.SenderID == b && req.RecipientID == a) {
			return req
		}
	}
	return nil
}

// ConnectionCount reports how many connection rows exist in total
func (db *DB) ConnectionCount() int {
	db.RLock()
	defer db.RUnlock()
	return len(db.connections)
}

func (r *connectionRepository) CreateRequest(_ context.Context, req *models.ConnectionRequest) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[req.SenderID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if _, ok := r.db.users[req.RecipientID]; !ok {
		return apperrors.ErrUserNotFound
	}
	for _, existing := range r.db.requests {
		if existing.Status == models.RequestPending &&
			existing.SenderID == req.SenderID && existing.RecipientID == req.RecipientID {
			return apperrors.ErrRequestPending
		}
	}

	now := r.db.now()
	req.ID = r.db.nextID()
	req.Status = models.RequestPending
	req.CreatedAt, req.UpdatedAt = now, now
	cp := *req
	r.db.requests[req.ID] = &cp
	return nil
}

func (r *connectionRepository) GetRequest(_ context.Context, id int64) (*models.ConnectionRequest, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	req, ok := r.db.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	out := r.db.viewRequestLocked(req)
	return &out, nil
}

func (r *connectionRepository) PendingBetween(_ context.Context, a, b int64) (*models.ConnectionRequest, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	req := r.db.pendingBetween(a, b)
	if req == nil {
		return nil, nil
	}
	out := r.db.viewRequestLocked(req)
	return &out, nil
}

func (r *connectionRepository) AreConnected(_ context.Context, a, b int64) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	_, ok := r.db.connections[pairKey{a, b}]
	return ok, nil
}

func (r *connectionRepository) Accept(_ context.Context, requestID int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	req, ok := r.db.requests[requestID]
	if !ok {
		return apperrors.ErrRequestNotFound
	}
	if req.Status != models.RequestPending {
		return apperrors.ErrRequestNotPending
	}

	now := r.db.now()
	prevStatus, prevUpdated := req.Status, req.UpdatedAt
	req.Status = models.RequestAccepted
	req.UpdatedAt = now

	var inserted []pairKey
	for _, k := range []pairKey{{req.SenderID, req.RecipientID}, {req.RecipientID, req.SenderID}} {
		if _, exists := r.db.connections[k]; exists {
			continue
		}
		if err := r.db.writeLocked("connections"); err != nil {
			for _, done := range inserted {
				delete(r.db.connections, done)
			}
			req.Status, req.UpdatedAt = prevStatus, prevUpdated
			return err
		}
		r.db.connections[k] = &models.Connection{
			ID:              r.db.nextID(),
			UserID:          k.a,
			ConnectedUserID: k.b,
			CreatedAt:       now,
		}
		inserted = append(inserted, k)
	}
	return nil
}

func (r *connectionRepository) Reject(_ context.Context, requestID int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	req, ok := r.db.requests[requestID]
	if !ok || req.Status != models.RequestPending {
		return apperrors.ErrRequestNotPending
	}
	req.Status = models.RequestRejected
	req.UpdatedAt = r.db.now()
	return nil
}

func (r *connectionRepository) ListConnections(_ context.Context, userID int64) ([]models.Connection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.Connection{}
	for k, c := range r.db.connections {
		if k.a == userID {
			cp := *c
			cp.ConnectedUsername = r.db.username(c.ConnectedUserID)
			out = append(out, cp)
		}
	}
	newestFirst(out, func(c models.Connection) time.Time { return c.CreatedAt }, func(c models.Connection) int64 { return c.ID })
	return out, nil
}

func (r *connectionRepository) listRequests(match func(req *models.ConnectionRequest) bool) []models.ConnectionRequest {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.ConnectionRequest{}
	for _, req := range r.db.requests {
		if req.Status == models.RequestPending && match(req) {
			out = append(out, r.db.viewRequestLocked(req))
		}
	}
	newestFirst(out, func(c models.ConnectionRequest) time.Time { return c.CreatedAt }, func(c models.ConnectionRequest) int64 { return c.ID })
	return out
}

func (r *connectionRepository) ListIncoming(_ context.Context, userID int64) ([]models.ConnectionRequest, error) {
	return r.listRequests(func(req *models.ConnectionRequest) bool { return req.RecipientID == userID }), nil
}

func (r *connectionRepository) ListOutgoing(_ context.Context, userID int64) ([]models.ConnectionRequest, error) {
	return r.listRequests(func(req *models.ConnectionRequest) bool { return req.SenderID == userID }), nil
}

func (r *connectionRepository) Remove(_ context.Context, a, b int64) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var n int64
	for _, k := range []pairKey{{a, b}, {b, a}} {
		if _, ok := r.db.connections[k]; ok {
			delete(r.db.connections, k)
			n++
		}
	}
	return n, nil
}

type messageRepository struct {
	db *DB
}

var _ repositories.MessageRepository = (*messageRepository)(nil)

func (r *messageRepository) Create(_ context.Context, msg *models.Message) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[msg.SenderID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if _, ok := r.db.users[msg.RecipientID]; !ok {
		return apperrors.ErrUserNotFound
	}
	msg.ID = r.db.nextID()
	msg.IsRead = false
	msg.CreatedAt = r.db.now()
	cp := *msg
	r.db.messages[msg.ID] = &cp
	return nil
}

func chronological(msgs []models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}

func (r *messageRepository) Conversation(_ context.Context, userID, partnerID int64) ([]models.Message, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.Message{}
	for _, m := range r.db.messages {
		if (m.SenderID == userID && m.RecipientID == partnerID) || (m.SenderID == partnerID && m.RecipientID == userID) {
			out = append(out, *m)
		}
	}
	chronological(out)
	return out, nil
}

func (r *messageRepository) MarkRead(_ context.Context, recipientID, senderID int64) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var n int64
	for _, m := range r.db.messages {
		if m.RecipientID == recipientID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *messageRepository) Conversations(_ context.Context, userID int64) ([]models.Conversation, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	byPartner := map[int64]*models.Conversation{}
	for _, m := range r.db.messages {
		var partner int64
		switch userID {
		case m.SenderID:
			partner = m.RecipientID
		case m.RecipientID:
			partner = m.SenderID
		default:
			continue
		}

		c, ok := byPartner[partner]
		if !ok {
			c = &models.Conversation{PartnerID: partner, PartnerUsername: r.db.username(partner)}
			byPartner[partner] = c
		}
		last := c.LastMessage
		if last.ID == 0 || m.CreatedAt.After(last.CreatedAt) || (m.CreatedAt.Equal(last.CreatedAt) && m.ID > last.ID) {
			c.LastMessage = *m
		}
		if m.RecipientID == userID && !m.IsRead {
			c.UnreadCount++
		}
	}

	out := make([]models.Conversation, 0, len(byPartner))
	for _, c := range byPartner {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (r *messageRepository) UnreadCount(_ context.Context, userID int64) (int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var n int64
	for _, m := range r.db.messages {
		if m.RecipientID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}
