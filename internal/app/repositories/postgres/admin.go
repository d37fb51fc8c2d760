package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
)

// ActivityRepository is the audit log store
type ActivityRepository struct {
	base
}

// Create appends an entry
func (r *ActivityRepository) Create(ctx context.Context, a *models.ActivityLog) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO activity_logs (user_id, action, description) VALUES ($1, $2, $3) RETURNING id, created_at`,
		a.UserID, a.Action, a.Description).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating activity log: %w", err)
	}
	return nil
}

// List returns entries newest first
func (r *ActivityRepository) List(ctx context.Context, page models.Page) ([]models.ActivityLog, int64, error) {
	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("activity_logs"))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select("a.id", "a.user_id", "u.username", "a.action", "a.description", "a.created_at").
		From("activity_logs a").
		Join("users u ON u.id = a.user_id").
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(page.Limit()).Offset(page.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list activities query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing activities: %w", err)
	}
	defer rows.Close()

	out := []models.ActivityLog{}
	for rows.Next() {
		var a models.ActivityLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Action, &a.Description, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning activity: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// SettingsRepository handles the singleton settings row
type SettingsRepository struct {
	base
}

// Get returns the settings, creating the default row when it is missing
func (r *SettingsRepository) Get(ctx context.Context) (*models.SystemSettings, error) {
	s := &models.SystemSettings{}
	err := r.db.QueryRow(ctx,
		`SELECT site_name, site_description, maintenance_mode, updated_at FROM system_settings WHERE id = 1`).
		Scan(&s.SiteName, &s.SiteDescription, &s.MaintenanceMode, &s.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			if err := r.EnsureDefaults(ctx); err != nil {
				return nil, err
			}
			return r.Get(ctx)
		}
		return nil, fmt.Errorf("error getting settings: %w", err)
	}
	return s, nil
}

// Update overwrites the settings row
func (r *SettingsRepository) Update(ctx context.Context, s *models.SystemSettings) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO system_settings (id, site_name, site_description, maintenance_mode, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET site_name = EXCLUDED.site_name,
			site_description = EXCLUDED.site_description,
			maintenance_mode = EXCLUDED.maintenance_mode, updated_at = NOW()
		RETURNING updated_at`, s.SiteName, s.SiteDescription, s.MaintenanceMode).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating settings: %w", err)
	}
	return nil
}

// EnsureDefaults inserts the default row if none exists
func (r *SettingsRepository) EnsureDefaults(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO system_settings (id, site_name) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`, models.DefaultSiteName)
	if err != nil {
		return fmt.Errorf("error creating default settings: %w", err)
	}
	return nil
}

// StatsRepository answers dashboard aggregates
type StatsRepository struct {
	base
}

// Totals returns the headline counters
func (r *StatsRepository) Totals(ctx context.Context) (*models.Totals, error) {
	t := &models.Totals{}
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM jobs),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM job_applications),
			(SELECT COUNT(*) FROM jobs WHERE NOT is_confirmed),
			(SELECT COUNT(*) FROM events WHERE NOT is_published),
			(SELECT COUNT(*) FROM posts WHERE NOT is_confirmed)`).
		Scan(&t.Users, &t.Posts, &t.Jobs, &t.Events, &t.Applications, &t.PendingJobs, &t.PendingEvents, &t.PendingPosts)
	if err != nil {
		return nil, fmt.Errorf("error getting totals: %w", err)
	}
	return t, nil
}

func (r *StatsRepository) named(ctx context.Context, sql string, args ...any) ([]models.NamedCount, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying breakdown: %w", err)
	}
	defer rows.Close()

	out := []models.NamedCount{}
	for rows.Next() {
		var c models.NamedCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning breakdown: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RoleDistribution counts users per role
func (r *StatsRepository) RoleDistribution(ctx context.Context) ([]models.NamedCount, error) {
	return r.named(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
}

// MonthlySignups counts registrations per month since the given time
func (r *StatsRepository) MonthlySignups(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM users WHERE created_at >= $1 GROUP BY month ORDER BY month`, since)
	if err != nil {
		return nil, fmt.Errorf("error querying signups: %w", err)
	}
	defer rows.Close()

	out := []models.MonthlyCount{}
	for rows.Next() {
		var c models.MonthlyCount
		if err := rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning signups: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// JobsByType counts jobs per technology type
func (r *StatsRepository) JobsByType(ctx context.Context) ([]models.NamedCount, error) {
	return r.named(ctx, `SELECT job_type, COUNT(*) FROM jobs GROUP BY job_type ORDER BY COUNT(*) DESC, job_type`)
}

// EventsByType counts events per type
func (r *StatsRepository) EventsByType(ctx context.Context) ([]models.NamedCount, error) {
	return r.named(ctx, `SELECT event_type, COUNT(*) FROM events GROUP BY event_type ORDER BY COUNT(*) DESC, event_type`)
}

// TopEmployers returns the companies with the most postings
func (r *StatsRepository) TopEmployers(ctx context.Context, limit int) ([]models.NamedCount, error) {
	return r.named(ctx, `
		SELECT company_name, COUNT(*) FROM jobs GROUP BY company_name
		ORDER BY COUNT(*) DESC, company_name LIMIT $1`, limit)
}

// ApplicationOutcome returns the total and accepted application counts
func (r *StatsRepository) ApplicationOutcome(ctx context.Context) (total, accepted int64, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'accepted') FROM job_applications`).Scan(&total, &accepted)
	if err != nil {
		return 0, 0, fmt.Errorf("error counting applications: %w", err)
	}
	return total, accepted, nil
}
