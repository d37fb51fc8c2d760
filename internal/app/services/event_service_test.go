package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func newEventService(e *testEnv) *EventService {
	return NewEventService(e.repos, e.storage, e.activity, e.clock, e.logger)
}

func eventRequest(start time.Time, capacity *int) *dto.EventRequest {
	return &dto.EventRequest{
		Title:       "Alumni Networking Night",
		Description: "Gặp gỡ cựu sinh viên",
		EventType:   models.EventNetworking,
		StartTime:   start,
		EndTime:     start.Add(3 * time.Hour),
		Location:    "Hội trường A",
		Capacity:    capacity,
	}
}

func intPtr(n int) *int { return &n }

// publishedEvent creates an event starting tomorrow and confirms it
func publishedEvent(t *testing.T, e *testEnv, svc *EventService, creator, admin *models.User, capacity *int) *models.Event {
	t.Helper()
	event, err := svc.Create(e.ctx, creator, eventRequest(e.now.Add(24*time.Hour), capacity), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, event.ID))
	return event
}

func TestCreateEventValidation(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	creator := e.user(t, "creator", models.RoleAlumni)
	start := e.now.Add(24 * time.Hour)

	event, err := svc.Create(e.ctx, creator, eventRequest(start, nil), image("banner.png"))
	require.NoError(t, err)
	assert.False(t, event.IsPublished)
	assert.True(t, e.storage.has(event.ImagePath))

	tests := map[string]func(r *dto.EventRequest){
		"unknown type":       func(r *dto.EventRequest) { r.EventType = "party" },
		"end before start":   func(r *dto.EventRequest) { r.EndTime = r.StartTime.Add(-time.Hour) },
		"zero capacity":      func(r *dto.EventRequest) { r.Capacity = intPtr(0) },
		"deadline after end": func(r *dto.EventRequest) { d := r.EndTime.Add(time.Hour); r.RegistrationDeadline = &d },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := eventRequest(start, nil)
			mutate(req)
			_, err := svc.Create(e.ctx, creator, req, nil)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestUnpublishedEventIsHidden(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	creator := e.user(t, "creator", models.RoleAlumni)
	guest := e.user(t, "guest", models.RoleUser)

	event, err := svc.Create(e.ctx, creator, eventRequest(e.now.Add(24*time.Hour), nil), nil)
	require.NoError(t, err)

	_, err = svc.Get(e.ctx, guest, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	_, err = svc.Register(e.ctx, guest, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	own, err := svc.Get(e.ctx, creator, event.ID)
	require.NoError(t, err)
	assert.True(t, own.CanManage)
	assert.False(t, own.CanRegister)

	pending, total, err := svc.ListPending(e.ctx, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, event.ID, pending[0].ID)

	require.NoError(t, svc.Confirm(e.ctx, admin, event.ID))
	listed, total, err := svc.List(e.ctx, guest, &dto.EventListRequest{Status: "upcoming"}, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, event.ID, listed[0].ID)
}

func TestRegisterRespectsCapacity(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	creator := e.user(t, "creator", models.RoleAlumni)
	event := publishedEvent(t, e, svc, creator, admin, intPtr(2))

	a := e.user(t, "a", models.RoleUser)
	b := e.user(t, "b", models.RoleUser)
	c := e.user(t, "c", models.RoleUser)

	_, err := svc.Register(e.ctx, a, event.ID)
	require.NoError(t, err)
	_, err = svc.Register(e.ctx, a, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
	_, err = svc.Register(e.ctx, b, event.ID)
	require.NoError(t, err)
	_, err = svc.Register(e.ctx, c, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventFull)

	detail, err := svc.Get(e.ctx, c, event.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.SpotsLeft)
	assert.Zero(t, *detail.SpotsLeft)
	assert.False(t, detail.CanRegister)

	// cancelling frees the spot and allows registering again
	require.NoError(t, svc.CancelRegistration(e.ctx, a, event.ID))
	_, err = svc.Register(e.ctx, c, event.ID)
	require.NoError(t, err)
	_, err = svc.Register(e.ctx, a, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventFull)

	require.NoError(t, svc.CancelRegistration(e.ctx, b, event.ID))
	_, err = svc.Register(e.ctx, a, event.ID)
	require.NoError(t, err)

	regs, err := svc.Registrations(e.ctx, creator, event.ID)
	require.NoError(t, err)
	active := 0
	for _, r := range regs {
		if r.Status == models.RegistrationRegistered {
			active++
		}
	}
	assert.Equal(t, 2, active)
}

func TestRegistrationClosesWhenEventStarts(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	creator := e.user(t, "creator", models.RoleAlumni)
	guest := e.user(t, "guest", models.RoleUser)
	event := publishedEvent(t, e, svc, creator, admin, nil)

	_, err := svc.Register(e.ctx, guest, event.ID)
	require.NoError(t, err)

	e.now = e.now.Add(25 * time.Hour)
	late := e.user(t, "late", models.RoleUser)
	_, err = svc.Register(e.ctx, late, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.ErrorIs(t, svc.CancelRegistration(e.ctx, guest, event.ID), apperrors.ErrBadRequest)
}

func TestRegistrationDeadline(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	creator := e.user(t, "creator", models.RoleAlumni)
	guest := e.user(t, "guest", models.RoleUser)

	req := eventRequest(e.now.Add(48*time.Hour), nil)
	deadline := e.now.Add(time.Hour)
	req.RegistrationDeadline = &deadline
	event, err := svc.Create(e.ctx, creator, req, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, event.ID))

	e.now = e.now.Add(2 * time.Hour)
	_, err = svc.Register(e.ctx, guest, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestMarkAttended(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	creator := e.user(t, "creator", models.RoleAlumni)
	guest := e.user(t, "guest", models.RoleUser)
	event := publishedEvent(t, e, svc, creator, admin, nil)

	reg, err := svc.Register(e.ctx, guest, event.ID)
	require.NoError(t, err)

	_, err = svc.MarkAttended(e.ctx, guest, reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	attended, err := svc.MarkAttended(e.ctx, creator, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationAttended, attended.Status)

	_, err = svc.MarkAttended(e.ctx, creator, reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stats, err := svc.Stats(e.ctx, guest)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Attended)
	assert.Zero(t, stats.Registered)

	creatorStats, err := svc.Stats(e.ctx, creator)
	require.NoError(t, err)
	assert.EqualValues(t, 1, creatorStats.Created)
}

func TestDeleteEventRemovesImage(t *testing.T) {
	e := newTestEnv(t)
	svc := newEventService(e)
	creator := e.user(t, "creator", models.RoleAlumni)
	other := e.user(t, "other", models.RoleAlumni)

	event, err := svc.Create(e.ctx, creator, eventRequest(e.now.Add(time.Hour), nil), image("banner.jpg"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(e.ctx, other, event.ID), apperrors.ErrPermissionDenied)
	assert.True(t, e.storage.has(event.ImagePath))

	require.NoError(t, svc.Delete(e.ctx, creator, event.ID))
	assert.False(t, e.storage.has(event.ImagePath))
}
