package memory

import (
	"context"
	"strings"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type userRepository struct {
	db *DB
}

var _ repositories.UserRepository = (*userRepository)(nil)

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.db.Lock()
	defer r.db.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if strings.EqualFold(u.Username, user.Username) {
			return apperrors.ErrUsernameAlreadyExists
		}
	}

	now := r.db.now()
	user.ID = r.db.nextID()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if u, ok := r.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.db.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepository) List(_ context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	users := []models.User{}
	for _, u := range r.db.users {
		if filter.Search != "" && !containsFold(u.Username, filter.Search) && !containsFold(u.Email, filter.Search) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		users = append(users, *u)
	}
	newestFirst(users, func(u models.User) time.Time { return u.CreatedAt }, func(u models.User) int64 { return u.ID })
	return paginate(users, filter.Page), int64(len(users)), nil
}

func (r *userRepository) update(id int64, fn func(u *models.User)) error {
	r.db.Lock()
	defer r.db.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.db.now()
	return nil
}

func (r *userRepository) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *userRepository) UpdateRole(_ context.Context, id int64, role models.RoleType) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *userRepository) SetActive(_ context.Context, id int64, active bool) error {
	return r.update(id, func(u *models.User) { u.IsActive = active })
}

func (r *userRepository) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(u *models.User) { u.LastLoginAt = &at })
}

func (r *userRepository) CountByRole(_ context.Context, role models.RoleType) (int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var n int64
	for _, u := range r.db.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) Suggestions(_ context.Context, userID int64, limit int) ([]models.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	users := []models.User{}
	for _, u := range r.db.users {
		if u.ID == userID || !u.IsActive {
			continue
		}
		if _, ok := r.db.connections[pairKey{userID, u.ID}]; ok {
			continue
		}
		if r.db.pendingBetween(userID, u.ID) != nil {
			continue
		}
		users = append(users, *u)
	}
	newestFirst(users, func(u models.User) time.Time { return u.CreatedAt }, func(u models.User) int64 { return u.ID })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *userRepository) Delete(_ context.Context, id int64) (models.Orphans, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return nil, apperrors.ErrUserNotFound
	}

	var orphans models.Orphans
	keep := func(path string) {
		if path != "" {
			orphans = append(orphans, path)
		}
	}

	for sid, s := range r.db.sessions {
		if s.UserID == id {
			delete(r.db.sessions, sid)
		}
	}
	for tok, t := range r.db.resets {
		if t.UserID == id {
			delete(r.db.resets, tok)
		}
	}
	if p, ok := r.db.profiles[id]; ok {
		keep(p.Avatar)
		delete(r.db.profiles, id)
	}
	for eid, e := range r.db.educations {
		if e.UserID == id {
			delete(r.db.educations, eid)
		}
	}
	for eid, e := range r.db.experiences {
		if e.UserID == id {
			delete(r.db.experiences, eid)
		}
	}
	for sid, s := range r.db.skills {
		if s.UserID == id {
			delete(r.db.skills, sid)
		}
	}

	for pid, p := range r.db.posts {
		if p.AuthorID == id {
			keep(p.LocalImage())
			r.db.deletePostLocked(pid)
		}
	}
	for k := range r.db.likes {
		if k.userID == id {
			delete(r.db.likes, k)
		}
	}
	for cid, c := range r.db.comments {
		if c.AuthorID == id {
			delete(r.db.comments, cid)
		}
	}

	for jid, j := range r.db.jobs {
		if j.PosterID == id {
			orphans = append(orphans, r.db.deleteJobLocked(jid)...)
		}
	}
	for aid, a := range r.db.applications {
		if a.ApplicantID == id {
			keep(a.ResumePath)
			delete(r.db.applications, aid)
		}
	}

	for eid, e := range r.db.events {
		if e.CreatorID == id {
			keep(e.ImagePath)
			r.db.deleteEventLocked(eid)
		}
	}
	for rid, reg := range r.db.registrations {
		if reg.UserID == id {
			delete(r.db.registrations, rid)
		}
	}

	for k := range r.db.connections {
		if k.a == id || k.b == id {
			delete(r.db.connections, k)
		}
	}
	for rid, req := range r.db.requests {
		if req.SenderID == id || req.RecipientID == id {
			delete(r.db.requests, rid)
		}
	}
	for mid, m := range r.db.messages {
		if m.SenderID == id || m.RecipientID == id {
			delete(r.db.messages, mid)
		}
	}
	for aid, a := range r.db.activities {
		if a.UserID == id {
			delete(r.db.activities, aid)
		}
	}

	delete(r.db.users, id)
	return orphans, nil
}

type sessionRepository struct {
	db *DB
}

var _ repositories.SessionRepository = (*sessionRepository)(nil)

func (r *sessionRepository) Create(_ context.Context, session *models.Session) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[session.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	session.CreatedAt = r.db.now()
	cp := *session
	r.db.sessions[session.ID] = &cp
	return nil
}

func (r *sessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if s, ok := r.db.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperrors.ErrSessionNotFound
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	r.db.Lock()
	defer r.db.Unlock()
	delete(r.db.sessions, id)
	return nil
}

func (r *sessionRepository) DeleteByUser(_ context.Context, userID int64, keepID string) error {
	r.db.Lock()
	defer r.db.Unlock()

	for id, s := range r.db.sessions {
		if s.UserID == userID && id != keepID {
			delete(r.db.sessions, id)
		}
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var n int64
	for id, s := range r.db.sessions {
		if s.Expired(now) {
			delete(r.db.sessions, id)
			n++
		}
	}
	return n, nil
}

// SessionCount reports how many sessions the user holds
func (db *DB) SessionCount(userID int64) int {
	db.RLock()
	defer db.RUnlock()

	n := 0
	for _, s := range db.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

type passwordResetRepository struct {
	db *DB
}

var _ repositories.PasswordResetRepository = (*passwordResetRepository)(nil)

func (r *passwordResetRepository) Create(_ context.Context, token *models.PasswordResetToken) error {
	r.db.Lock()
	defer r.db.Unlock()

	cp := *token
	r.db.resets[token.Token] = &cp
	return nil
}

func (r *passwordResetRepository) Get(_ context.Context, token string) (*models.PasswordResetToken, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if t, ok := r.db.resets[token]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperrors.ErrTokenNotFound
}

func (r *passwordResetRepository) Redeem(_ context.Context, token string, now time.Time, passwordHash string) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	t, ok := r.db.resets[token]
	if !ok || t.Used || !now.Before(t.ExpiryDate) {
		return 0, apperrors.ErrTokenNotFound
	}
	u, ok := r.db.users[t.UserID]
	if !ok {
		return 0, apperrors.ErrUserNotFound
	}

	t.Used = true
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.db.now()
	for id, s := range r.db.sessions {
		if s.UserID == u.ID {
			delete(r.db.sessions, id)
		}
	}
	return u.ID, nil
}

func (r *passwordResetRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var n int64
	for tok, t := range r.db.resets {
		if t.Used || !now.Before(t.ExpiryDate) {
			delete(r.db.resets, tok)
			n++
		}
	}
	return n, nil
}
