package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type activityRepository struct {
	db *DB
}

var _ repositories.ActivityRepository = (*activityRepository)(nil)

func (r *activityRepository) Create(_ context.Context, entry *models.ActivityLog) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[entry.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	entry.ID = r.db.nextID()
	entry.CreatedAt = r.db.now()
	cp := *entry
	r.db.activities[entry.ID] = &cp
	return nil
}

func (r *activityRepository) List(_ context.Context, page models.Page) ([]models.ActivityLog, int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.ActivityLog{}
	for _, a := range r.db.activities {
		cp := *a
		cp.Username = r.db.username(a.UserID)
		out = append(out, cp)
	}
	newestFirst(out, func(a models.ActivityLog) time.Time { return a.CreatedAt }, func(a models.ActivityLog) int64 { return a.ID })
	return paginate(out, page), int64(len(out)), nil
}

type settingsRepository struct {
	db *DB
}

var _ repositories.SettingsRepository = (*settingsRepository)(nil)

func (db *DB) ensureSettingsLocked() {
	if db.settings == nil {
		db.settings = &models.SystemSettings{SiteName: models.DefaultSiteName, UpdatedAt: db.now()}
	}
}

func (r *settingsRepository) Get(_ context.Context) (*models.SystemSettings, error) {
	r.db.Lock()
	defer r.db.Unlock()

	r.db.ensureSettingsLocked()
	cp := *r.db.settings
	return &cp, nil
}

func (r *settingsRepository) Update(_ context.Context, s *models.SystemSettings) error {
	r.db.Lock()
	defer r.db.Unlock()

	s.UpdatedAt = r.db.now()
	cp := *s
	r.db.settings = &cp
	return nil
}

func (r *settingsRepository) EnsureDefaults(_ context.Context) error {
	r.db.Lock()
	defer r.db.Unlock()

	r.db.ensureSettingsLocked()
	return nil
}

type statsRepository struct {
	db *DB
}

var _ repositories.StatsRepository = (*statsRepository)(nil)

func (r *statsRepository) Totals(_ context.Context) (*models.Totals, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	t := &models.Totals{
		Users:        int64(len(r.db.users)),
		Posts:        int64(len(r.db.posts)),
		Jobs:         int64(len(r.db.jobs)),
		Events:       int64(len(r.db.events)),
		Applications: int64(len(r.db.applications)),
	}
	for _, j := range r.db.jobs {
		if !j.IsConfirmed {
			t.PendingJobs++
		}
	}
	for _, e := range r.db.events {
		if !e.IsPublished {
			t.PendingEvents++
		}
	}
	for _, p := range r.db.posts {
		if !p.IsConfirmed {
			t.PendingPosts++
		}
	}
	return t, nil
}

// byCount sorts the counted names by count descending, then name
func byCount(counts map[string]int64) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.NamedCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *statsRepository) RoleDistribution(_ context.Context) ([]models.NamedCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	counts := map[string]int64{}
	for _, u := range r.db.users {
		counts[string(u.Role)]++
	}
	out := byCount(counts)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *statsRepository) MonthlySignups(_ context.Context, since time.Time) ([]models.MonthlyCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	counts := map[string]int64{}
	for _, u := range r.db.users {
		if !u.CreatedAt.Before(since) {
			counts[u.CreatedAt.Format("2006-01")]++
		}
	}
	out := make([]models.MonthlyCount, 0, len(counts))
	for month, n := range counts {
		out = append(out, models.MonthlyCount{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *statsRepository) JobsByType(_ context.Context) ([]models.NamedCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	counts := map[string]int64{}
	for _, j := range r.db.jobs {
		counts[j.JobType]++
	}
	return byCount(counts), nil
}

func (r *statsRepository) EventsByType(_ context.Context) ([]models.NamedCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	counts := map[string]int64{}
	for _, e := range r.db.events {
		counts[string(e.EventType)]++
	}
	return byCount(counts), nil
}

func (r *statsRepository) TopEmployers(_ context.Context, limit int) ([]models.NamedCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	counts := map[string]int64{}
	for _, j := range r.db.jobs {
		counts[j.CompanyName]++
	}
	out := byCount(counts)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *statsRepository) ApplicationOutcome(_ context.Context) (total, accepted int64, err error) {
	r.db.RLock()
	defer r.db.RUnlock()

	for _, a := range r.db.applications {
		total++
		if a.Status == models.ApplicationAccepted {
			accepted++
		}
	}
	return total, accepted, nil
}
