package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type eventRepository struct {
	db *DB
}

var _ repositories.EventRepository = (*eventRepository)(nil)

func active(status models.RegistrationStatus) bool {
	return status != models.RegistrationCanceled
}

func (db *DB) viewEventLocked(e *models.Event, viewerID int64) models.Event {
	out := *e
	out.CreatorName = db.username(e.CreatorID)
	out.RegisteredCount, out.RegisteredByMe = 0, false
	for _, reg := range db.registrations {
		if reg.EventID == e.ID && active(reg.Status) {
			out.RegisteredCount++
			if reg.UserID == viewerID {
				out.RegisteredByMe = true
			}
		}
	}
	return out
}

func (db *DB) deleteEventLocked(id int64) {
	for rid, reg := range db.registrations {
		if reg.EventID == id {
			delete(db.registrations, rid)
		}
	}
	delete(db.events, id)
}

func (r *eventRepository) Create(_ context.Context, event *models.Event) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[event.CreatorID]; !ok {
		return apperrors.ErrUserNotFound
	}
	now := r.db.now()
	event.ID = r.db.nextID()
	event.CreatedAt, event.UpdatedAt = now, now
	cp := *event
	r.db.events[event.ID] = &cp
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id, viewerID int64) (*models.Event, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	e, ok := r.db.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	out := r.db.viewEventLocked(e, viewerID)
	return &out, nil
}

func (r *eventRepository) Update(_ context.Context, event *models.Event) error {
	r.db.Lock()
	defer r.db.Unlock()

	e, ok := r.db.events[event.ID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	e.Title, e.Description, e.EventType = event.Title, event.Description, event.EventType
	e.StartTime, e.EndTime, e.Location = event.StartTime, event.EndTime, event.Location
	e.Capacity, e.RegistrationDeadline, e.ImagePath = event.Capacity, event.RegistrationDeadline, event.ImagePath
	e.UpdatedAt = r.db.now()
	event.UpdatedAt = e.UpdatedAt
	return nil
}

func (r *eventRepository) Confirm(_ context.Context, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	e, ok := r.db.events[id]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	e.IsPublished = true
	e.UpdatedAt = r.db.now()
	return nil
}

func (r *eventRepository) Delete(_ context.Context, id int64) (models.Orphans, error) {
	r.db.Lock()
	defer r.db.Unlock()

	e, ok := r.db.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	var orphans models.Orphans
	if e.ImagePath != "" {
		orphans = append(orphans, e.ImagePath)
	}
	r.db.deleteEventLocked(id)
	return orphans, nil
}

func (r *eventRepository) List(_ context.Context, f models.EventFilter) ([]models.Event, int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	events := []models.Event{}
	for _, e := range r.db.events {
		if f.PublishedOnly && !e.IsPublished {
			continue
		}
		if f.PendingOnly && e.IsPublished {
			continue
		}
		if f.Search != "" && !containsFold(e.Title, f.Search) &&
			!containsFold(e.Description, f.Search) && !containsFold(e.Location, f.Search) {
			continue
		}
		if f.Type != "" && e.EventType != f.Type {
			continue
		}
		switch f.Status {
		case "upcoming":
			if !e.StartTime.After(f.Now) {
				continue
			}
		case "ongoing":
			if e.StartTime.After(f.Now) || e.EndTime.Before(f.Now) {
				continue
			}
		case "past":
			if !e.EndTime.Before(f.Now) {
				continue
			}
		}
		events = append(events, r.db.viewEventLocked(e, f.ViewerID))
	}

	desc := f.Status == "past"
	sort.Slice(events, func(i, j int) bool {
		si, sj := events[i].StartTime, events[j].StartTime
		if !si.Equal(sj) {
			if desc {
				return si.After(sj)
			}
			return si.Before(sj)
		}
		return events[i].ID < events[j].ID
	})
	return paginate(events, f.Page), int64(len(events)), nil
}

func (r *eventRepository) Register(_ context.Context, eventID, userID int64) (*models.EventRegistration, error) {
	r.db.Lock()
	defer r.db.Unlock()

	e, ok := r.db.events[eventID]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}

	var activeCount int64
	for _, reg := range r.db.registrations {
		if reg.EventID != eventID || !active(reg.Status) {
			continue
		}
		if reg.UserID == userID {
			return nil, apperrors.ErrAlreadyRegistered
		}
		activeCount++
	}
	if e.Capacity != nil && activeCount >= int64(*e.Capacity) {
		return nil, apperrors.ErrEventFull
	}

	now := r.db.now()
	reg := &models.EventRegistration{
		ID:        r.db.nextID(),
		EventID:   eventID,
		UserID:    userID,
		Status:    models.RegistrationRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cp := *reg
	r.db.registrations[reg.ID] = &cp
	return reg, nil
}

func (r *eventRepository) CancelRegistration(_ context.Context, eventID, userID int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	for _, reg := range r.db.registrations {
		if reg.EventID == eventID && reg.UserID == userID && reg.Status == models.RegistrationRegistered {
			reg.Status = models.RegistrationCanceled
			reg.UpdatedAt = r.db.now()
			return nil
		}
	}
	return apperrors.ErrNotRegistered
}

func (r *eventRepository) GetRegistration(_ context.Context, id int64) (*models.EventRegistration, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	reg, ok := r.db.registrations[id]
	if !ok {
		return nil, apperrors.ErrNotRegistered
	}
	cp := *reg
	cp.Username = r.db.username(reg.UserID)
	return &cp, nil
}

func (r *eventRepository) SetRegistrationStatus(_ context.Context, id int64, status models.RegistrationStatus) error {
	r.db.Lock()
	defer r.db.Unlock()

	reg, ok := r.db.registrations[id]
	if !ok {
		return apperrors.ErrNotRegistered
	}
	reg.Status = status
	reg.UpdatedAt = r.db.now()
	return nil
}

func (r *eventRepository) ListRegistrations(_ context.Context, eventID int64) ([]models.EventRegistration, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.EventRegistration{}
	for _, reg := range r.db.registrations {
		if reg.EventID == eventID {
			cp := *reg
			cp.Username = r.db.username(reg.UserID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *eventRepository) UserStats(_ context.Context, userID int64, now time.Time) (*models.EventUserStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	s := &models.EventUserStats{}
	for _, e := range r.db.events {
		if e.CreatorID == userID {
			s.Created++
		}
	}
	for _, reg := range r.db.registrations {
		if reg.UserID != userID {
			continue
		}
		switch reg.Status {
		case models.RegistrationRegistered:
			if e, ok := r.db.events[reg.EventID]; ok && e.StartTime.After(now) {
				s.Registered++
			}
		case models.RegistrationAttended:
			s.Attended++
		}
	}
	return s, nil
}
