package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// SessionRepository manages login sessions in the database
type SessionRepository struct {
	base
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	sql, args, err := r.sb.Insert("sessions").
		Columns("id", "user_id", "expires_at", "user_agent", "ip").
		Values(s.ID, s.UserID, s.ExpiresAt, s.UserAgent, s.IP).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create session query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	sql, args, err := r.sb.Select("id", "user_id", "expires_at", "created_at", "user_agent", "ip").
		From("sessions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s := &models.Session{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.UserAgent, &s.IP)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error getting session: %w", err)
	}
	return s, nil
}

// Delete removes a session; deleting a missing session is not an error
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// DeleteByUser removes all sessions of a user except keepID
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64, keepID string) error {
	q := r.sb.Delete("sessions").Where(squirrel.Eq{"user_id": userID})
	if keepID != "" {
		q = q.Where(squirrel.NotEq{"id": keepID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete sessions query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting user sessions: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions that expired before now
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("error purging sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PasswordResetRepository manages password reset tokens in the database
type PasswordResetRepository struct {
	base
}

// Create stores a new password reset token
func (r *PasswordResetRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expiry_date) VALUES ($1, $2, $3)`,
		t.Token, t.UserID, t.ExpiryDate)
	if err != nil {
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// Get retrieves a token
func (r *PasswordResetRepository) Get(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(ctx,
		`SELECT token, user_id, expiry_date, used FROM password_reset_tokens WHERE token = $1`, token).
		Scan(&t.Token, &t.UserID, &t.ExpiryDate, &t.Used)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return t, nil
}

// Redeem consumes the token, then sets the password and drops every session of the owner
func (r *PasswordResetRepository) Redeem(ctx context.Context, token string, now time.Time, passwordHash string) (int64, error) {
	var userID int64
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE password_reset_tokens SET used = TRUE
			WHERE token = $1 AND NOT used AND expiry_date > $2
			RETURNING user_id`, token, now).Scan(&userID)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrTokenNotFound
			}
			return fmt.Errorf("error consuming password reset token: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
		if err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrUserNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("error deleting user sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// DeleteExpired removes used or expired tokens
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE used OR expiry_date <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("error purging password reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
