package postgres

import (
	"context"
	"fmt"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/db"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository handles profiles and their education, experience and skill rows
type ProfileRepository struct {
	base
}

// Get returns the user's profile, or nil when none exists yet
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, full_name, bio, phone, address, company, position, graduation_year, avatar, updated_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Bio, &p.Phone, &p.Address, &p.Company, &p.Position,
			&p.GraduationYear, &p.Avatar, &p.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting profile: %w", err)
	}
	return p, nil
}

// Save upserts the profile row and replaces the provided collections in one transaction
func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile, sets models.ProfileSets) error {
	return r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO profiles (user_id, full_name, bio, phone, address, company, position, graduation_year, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				full_name = EXCLUDED.full_name, bio = EXCLUDED.bio, phone = EXCLUDED.phone,
				address = EXCLUDED.address, company = EXCLUDED.company, position = EXCLUDED.position,
				graduation_year = EXCLUDED.graduation_year, updated_at = NOW()
			RETURNING id, avatar, updated_at`,
			p.UserID, p.FullName, p.Bio, p.Phone, p.Address, p.Company, p.Position, p.GraduationYear).
			Scan(&p.ID, &p.Avatar, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error saving profile: %w", err)
		}

		if sets.Educations != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM educations WHERE user_id = $1`, p.UserID); err != nil {
				return fmt.Errorf("error clearing educations: %w", err)
			}
			for i := range sets.Educations {
				sets.Educations[i].UserID = p.UserID
				if err := insertEducation(ctx, tx, &sets.Educations[i]); err != nil {
					return err
				}
			}
		}

		if sets.Experiences != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM experiences WHERE user_id = $1`, p.UserID); err != nil {
				return fmt.Errorf("error clearing experiences: %w", err)
			}
			for i := range sets.Experiences {
				sets.Experiences[i].UserID = p.UserID
				if err := insertExperience(ctx, tx, &sets.Experiences[i]); err != nil {
					return err
				}
			}
		}

		if sets.Skills != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM skills WHERE user_id = $1`, p.UserID); err != nil {
				return fmt.Errorf("error clearing skills: %w", err)
			}
			for _, name := range sets.Skills {
				_, err := tx.Exec(ctx,
					`INSERT INTO skills (user_id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					p.UserID, name)
				if err != nil {
					return fmt.Errorf("error inserting skill: %w", err)
				}
			}
		}
		return nil
	})
}

// SetAvatar creates the profile if needed, stores the avatar path and returns the previous one
func (r *ProfileRepository) SetAvatar(ctx context.Context, userID int64, path string) (string, error) {
	var previous string
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT avatar FROM profiles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&previous)
		if err != nil && !dberrors.IsNoRows(err) {
			return fmt.Errorf("error reading avatar: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO profiles (user_id, avatar, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (user_id) DO UPDATE SET avatar = EXCLUDED.avatar, updated_at = NOW()`,
			userID, path)
		if err != nil {
			return fmt.Errorf("error updating avatar: %w", err)
		}
		return nil
	})
	return previous, err
}

// ListEducations returns the user's education, newest first
func (r *ProfileRepository) ListEducations(ctx context.Context, userID int64) ([]models.Education, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, school, major, degree, start_date, end_date, created_at
		FROM educations WHERE user_id = $1 ORDER BY start_date DESC NULLS LAST, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing educations: %w", err)
	}
	defer rows.Close()

	out := []models.Education{}
	for rows.Next() {
		var e models.Education
		if err := rows.Scan(&e.ID, &e.UserID, &e.School, &e.Major, &e.Degree, &e.StartDate, &e.EndDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning education: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListExperiences returns the user's work history, newest first
func (r *ProfileRepository) ListExperiences(ctx context.Context, userID int64) ([]models.Experience, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, position, company, description, start_date, end_date, created_at
		FROM experiences WHERE user_id = $1 ORDER BY start_date DESC NULLS LAST, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing experiences: %w", err)
	}
	defer rows.Close()

	out := []models.Experience{}
	for rows.Next() {
		var e models.Experience
		if err := rows.Scan(&e.ID, &e.UserID, &e.Position, &e.Company, &e.Description, &e.StartDate, &e.EndDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning experience: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListSkills returns the user's skills in insertion order
func (r *ProfileRepository) ListSkills(ctx context.Context, userID int64) ([]models.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, name, created_at FROM skills WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing skills: %w", err)
	}
	defer rows.Close()

	out := []models.Skill{}
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning skill: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func insertEducation(ctx context.Context, q db.Querier, e *models.Education) error {
	err := q.QueryRow(ctx, `
		INSERT INTO educations (user_id, school, major, degree, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		e.UserID, e.School, e.Major, e.Degree, e.StartDate, e.EndDate).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting education: %w", err)
	}
	return nil
}

func insertExperience(ctx context.Context, q db.Querier, e *models.Experience) error {
	err := q.QueryRow(ctx, `
		INSERT INTO experiences (user_id, position, company, description, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		e.UserID, e.Position, e.Company, e.Description, e.StartDate, e.EndDate).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting experience: %w", err)
	}
	return nil
}

// AddEducation inserts a single education row
func (r *ProfileRepository) AddEducation(ctx context.Context, e *models.Education) error {
	return insertEducation(ctx, r.db, e)
}

// AddExperience inserts a single experience row
func (r *ProfileRepository) AddExperience(ctx context.Context, e *models.Experience) error {
	return insertExperience(ctx, r.db, e)
}

// AddSkill inserts a skill; a duplicate name for the same user is a conflict
func (r *ProfileRepository) AddSkill(ctx context.Context, s *models.Skill) error {
	err := r.db.QueryRow(ctx, `INSERT INTO skills (user_id, name) VALUES ($1, $2) RETURNING id, created_at`,
		s.UserID, s.Name).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("skill already exists")
		}
		return fmt.Errorf("error inserting skill: %w", err)
	}
	return nil
}

func (r *ProfileRepository) deleteOwned(ctx context.Context, table string, userID, id int64) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table), id, userID)
	if err != nil {
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// DeleteEducation removes an education row owned by userID
func (r *ProfileRepository) DeleteEducation(ctx context.Context, userID, id int64) error {
	return r.deleteOwned(ctx, "educations", userID, id)
}

// DeleteExperience removes an experience row owned by userID
func (r *ProfileRepository) DeleteExperience(ctx context.Context, userID, id int64) error {
	return r.deleteOwned(ctx, "experiences", userID, id)
}

// DeleteSkill removes a skill owned by userID
func (r *ProfileRepository) DeleteSkill(ctx context.Context, userID, id int64) error {
	return r.deleteOwned(ctx, "skills", userID, id)
}
