package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
	"github.com/fitalumni/alumni/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at", "last_login_at",
}

// UserRepository handles database operations for users
type UserRepository struct {
	base
}

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
}

// Create inserts a user and fills in its ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("username", "email", "password_hash", "role", "is_active").
		Values(user.Username, strings.ToLower(user.Email), user.PasswordHash, user.Role, user.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
			return apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, "users_username_lower_key"):
			return apperrors.ErrUsernameAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user := &models.User{}
	if err := scanUser(r.db.QueryRow(ctx, sql, args...), user); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": strings.ToLower(email)})
}

// ExistsByEmail reports whether an account uses the email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"email": strings.ToLower(email)}))
	return n > 0, err
}

// ExistsByUsername reports whether an account uses the username
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("users").Where("LOWER(username) = LOWER(?)", username))
	return n > 0, err
}

// List returns users matching the filter with the total count
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if filter.Role != "" {
		where = append(where, squirrel.Eq{"role": filter.Role})
	}

	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("users").Where(where))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).
		OrderBy("created_at DESC").
		Limit(filter.Page.Limit()).Offset(filter.Page.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) update(ctx context.Context, id int64, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("users").SetMap(values).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, id, map[string]interface{}{"password_hash": hash})
}

// UpdateRole changes the user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.RoleType) error {
	return r.update(ctx, id, map[string]interface{}{"role": role})
}

// SetActive enables or disables the account
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.update(ctx, id, map[string]interface{}{"is_active": active})
}

// TouchLastLogin records a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"last_login_at": at})
}

// CountByRole counts users holding the role
func (r *UserRepository) CountByRole(ctx context.Context, role models.RoleType) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"role": role}))
}

// Suggestions lists active users the caller is not connected to and has no pending request with
func (r *UserRepository) Suggestions(ctx context.Context, userID int64, limit int) ([]models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users u").
		Where(squirrel.NotEq{"u.id": userID}).
		Where(squirrel.Eq{"u.is_active": true}).
		Where("NOT EXISTS (SELECT 1 FROM connections c WHERE c.user_id = ? AND c.connected_user_id = u.id)", userID).
		Where(`NOT EXISTS (SELECT 1 FROM connection_requests cr WHERE cr.status = 'pending'
			AND ((cr.sender_id = ? AND cr.recipient_id = u.id) OR (cr.sender_id = u.id AND cr.recipient_id = ?)))`, userID, userID).
		OrderBy("u.created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build suggestions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing suggestions: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("error scanning suggestion: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Files referenced by rows that disappear with the user
const userOrphansQuery = `
	SELECT avatar FROM profiles WHERE user_id = $1
	UNION ALL SELECT image_path FROM posts WHERE author_id = $1 AND image_url = ''
	UNION ALL SELECT company_logo FROM jobs WHERE poster_id = $1
	UNION ALL SELECT resume_path FROM job_applications
		WHERE applicant_id = $1 OR job_id IN (SELECT id FROM jobs WHERE poster_id = $1)
	UNION ALL SELECT image_path FROM events WHERE creator_id = $1`

// Children first, the user row last
var userCascade = []string{
	`DELETE FROM sessions WHERE user_id = $1`,
	`DELETE FROM password_reset_tokens WHERE user_id = $1`,
	`DELETE FROM educations WHERE user_id = $1`,
	`DELETE FROM experiences WHERE user_id = $1`,
	`DELETE FROM skills WHERE user_id = $1`,
	`DELETE FROM profiles WHERE user_id = $1`,
	`DELETE FROM post_likes WHERE user_id = $1 OR post_id IN (SELECT id FROM posts WHERE author_id = $1)`,
	`DELETE FROM comments WHERE author_id = $1 OR post_id IN (SELECT id FROM posts WHERE author_id = $1)`,
	`DELETE FROM posts WHERE author_id = $1`,
	`DELETE FROM job_applications WHERE applicant_id = $1 OR job_id IN (SELECT id FROM jobs WHERE poster_id = $1)`,
	`DELETE FROM jobs WHERE poster_id = $1`,
	`DELETE FROM event_registrations WHERE user_id = $1 OR event_id IN (SELECT id FROM events WHERE creator_id = $1)`,
	`DELETE FROM events WHERE creator_id = $1`,
	`DELETE FROM connections WHERE user_id = $1 OR connected_user_id = $1`,
	`DELETE FROM connection_requests WHERE sender_id = $1 OR recipient_id = $1`,
	`DELETE FROM messages WHERE sender_id = $1 OR recipient_id = $1`,
	`DELETE FROM activity_logs WHERE user_id = $1`,
}

// Delete removes the user and all dependent rows in one transaction
func (r *UserRepository) Delete(ctx context.Context, id int64) (models.Orphans, error) {
	var orphans models.Orphans
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, userOrphansQuery, id)
		if err != nil {
			return fmt.Errorf("error collecting user files: %w", err)
		}
		if orphans, err = collectStrings(rows); err != nil {
			return fmt.Errorf("error reading user files: %w", err)
		}

		if err := execAll(ctx, tx, userCascade, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orphans, nil
}
