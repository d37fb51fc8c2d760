package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

// EventService implements events and registrations
type EventService struct {
	events   repositories.EventRepository
	storage  Storage
	activity *ActivityService
	now      Clock
	logger   zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(repos *repositories.Repositories, storage Storage, activity *ActivityService, now Clock, logger zerolog.Logger) *EventService {
	return &EventService{
		events:   repos.Events,
		storage:  storage,
		activity: activity,
		now:      now,
		logger:   logger,
	}
}

func validEventType(t models.EventType) bool {
	switch t {
	case models.EventNetworking, models.EventWorkshop, models.EventReunion, models.EventCareer:
		return true
	}
	return false
}

func applyEvent(event *models.Event, req *dto.EventRequest) error {
	if !validEventType(req.EventType) {
		return apperrors.NewValidationError("eventType", "unknown event type")
	}
	if !req.EndTime.After(req.StartTime) {
		return apperrors.NewValidationError("endTime", "end time must be after start time")
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return apperrors.NewValidationError("capacity", "capacity must be positive")
	}
	if req.RegistrationDeadline != nil && req.RegistrationDeadline.After(req.EndTime) {
		return apperrors.NewValidationError("registrationDeadline", "registration must close before the event ends")
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.EventType = req.EventType
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Location = strings.TrimSpace(req.Location)
	event.Capacity = req.Capacity
	event.RegistrationDeadline = req.RegistrationDeadline
	return nil
}

func (s *EventService) saveImage(up filestorage.Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	if _, err := filestorage.ImagePolicy.Check(up); err != nil {
		return "", err
	}
	return s.storage.Save(up, filestorage.DirEvents, filestorage.EventImageName(s.now(), up.Filename()))
}

// Create adds an unpublished event
func (s *EventService) Create(ctx context.Context, creator *models.User, req *dto.EventRequest, image filestorage.Upload) (*models.Event, error) {
	event := &models.Event{CreatorID: creator.ID, CreatorName: creator.Username}
	if err := applyEvent(event, req); err != nil {
		return nil, err
	}

	path, err := s.saveImage(image)
	if err != nil {
		return nil, err
	}
	event.ImagePath = path

	if err := s.events.Create(ctx, event); err != nil {
		removeFiles(s.storage, []string{path})
		return nil, err
	}

	s.activity.Record(ctx, creator.ID, ActionEventCreate, "Created event #"+itoa(event.ID)+" "+event.Title)
	return event, nil
}

func (s *EventService) owned(ctx context.Context, actor *models.User, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(event.CreatorID) {
		return nil, apperrors.NewForbiddenError("only the creator or an administrator can manage this event")
	}
	return event, nil
}

// Update edits an event and optionally replaces its image
func (s *EventService) Update(ctx context.Context, actor *models.User, id int64, req *dto.EventRequest, image filestorage.Upload) (*models.Event, error) {
	event, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyEvent(event, req); err != nil {
		return nil, err
	}

	oldImage := event.ImagePath
	path, err := s.saveImage(image)
	if err != nil {
		return nil, err
	}
	if path != "" {
		event.ImagePath = path
	}

	if err := s.events.Update(ctx, event); err != nil {
		removeFiles(s.storage, []string{path})
		return nil, err
	}
	if path != "" && oldImage != "" {
		removeFiles(s.storage, []string{oldImage})
	}

	s.activity.Record(ctx, actor.ID, ActionEventUpdate, "Updated event #"+itoa(id))
	return event, nil
}

// Get returns an event with the viewer's registration state. Unpublished
// events are visible to their creator and admins only.
func (s *EventService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.EventDetailResponse, error) {
	event, err := s.events.GetByID(ctx, id, viewer.ID)
	if err != nil {
		return nil, err
	}
	canManage := viewer.CanModify(event.CreatorID)
	if !event.IsPublished && !canManage {
		return nil, apperrors.ErrEventNotFound
	}

	resp := &dto.EventDetailResponse{Event: event, CanManage: canManage}
	if event.Capacity != nil {
		left := int64(*event.Capacity) - event.RegisteredCount
		if left < 0 {
			left = 0
		}
		resp.SpotsLeft = &left
	}
	resp.CanRegister = s.registrationOpen(event) == nil && !event.RegisteredByMe &&
		(resp.SpotsLeft == nil || *resp.SpotsLeft > 0)
	return resp, nil
}

// registrationOpen reports why an event does not accept registrations, if it does not
func (s *EventService) registrationOpen(event *models.Event) error {
	now := s.now()
	switch {
	case !event.IsPublished:
		return apperrors.NewBadRequestError("this event is not published yet")
	case !event.StartTime.After(now):
		return apperrors.NewBadRequestError("this event has already started")
	case event.RegistrationDeadline != nil && !now.Before(*event.RegistrationDeadline):
		return apperrors.NewBadRequestError("registration for this event has closed")
	}
	return nil
}

// List returns published events
func (s *EventService) List(ctx context.Context, viewer *models.User, req *dto.EventListRequest, page models.Page) ([]models.Event, int64, error) {
	return s.events.List(ctx, models.EventFilter{
		ViewerID:      viewer.ID,
		Search:        strings.TrimSpace(req.Search),
		Type:          req.Type,
		Status:        req.Status,
		Now:           s.now(),
		PublishedOnly: true,
		Page:          page,
	})
}

// ListPending lists events awaiting confirmation
func (s *EventService) ListPending(ctx context.Context, page models.Page) ([]models.Event, int64, error) {
	return s.events.List(ctx, models.EventFilter{PendingOnly: true, Now: s.now(), Page: page})
}

// Confirm publishes an event
func (s *EventService) Confirm(ctx context.Context, admin *models.User, id int64) error {
	if err := s.events.Confirm(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, admin.ID, ActionEventConfirm, "Confirmed event #"+itoa(id))
	return nil
}

// Delete removes an event with its registrations and image
func (s *EventService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	orphans, err := s.events.Delete(ctx, id)
	if err != nil {
		return err
	}
	removeFiles(s.storage, orphans)

	s.activity.Record(ctx, actor.ID, ActionEventDelete, "Deleted event #"+itoa(id))
	return nil
}

// Register signs the user up. Capacity and duplicates are checked under the event lock.
func (s *EventService) Register(ctx context.Context, user *models.User, id int64) (*models.EventRegistration, error) {
	event, err := s.events.GetByID(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished && !user.IsAdmin() {
		return nil, apperrors.ErrEventNotFound
	}
	if err := s.registrationOpen(event); err != nil {
		return nil, err
	}

	reg, err := s.events.Register(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, user.ID, ActionEventRegister, "Registered for event #"+itoa(id))
	return reg, nil
}

// CancelRegistration withdraws the user before the event starts
func (s *EventService) CancelRegistration(ctx context.Context, user *models.User, id int64) error {
	event, err := s.events.GetByID(ctx, id, user.ID)
	if err != nil {
		return err
	}
	if !event.StartTime.After(s.now()) {
		return apperrors.NewBadRequestError("registrations cannot be cancelled once the event has started")
	}
	return s.events.CancelRegistration(ctx, id, user.ID)
}

// MarkAttended moves a registration from registered to attended
func (s *EventService) MarkAttended(ctx context.Context, actor *models.User, registrationID int64) (*models.EventRegistration, error) {
	reg, err := s.events.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, actor, reg.EventID); err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationRegistered {
		return nil, apperrors.NewConflictError("only active registrations can be marked as attended")
	}

	if err := s.events.SetRegistrationStatus(ctx, registrationID, models.RegistrationAttended); err != nil {
		return nil, err
	}
	reg.Status = models.RegistrationAttended
	return reg, nil
}

// Registrations lists everyone registered for an event
func (s *EventService) Registrations(ctx context.Context, actor *models.User, id int64) ([]models.EventRegistration, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.events.ListRegistrations(ctx, id)
}

// Stats returns the caller's event counters
func (s *EventService) Stats(ctx context.Context, user *models.User) (*models.EventUserStats, error) {
	return s.events.UserStats(ctx, user.ID, s.now())
}
