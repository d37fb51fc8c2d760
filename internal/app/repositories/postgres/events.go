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

// EventRepository handles events and registrations
type EventRepository struct {
	base
}

const activeRegistrations = `(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id AND er.status <> 'canceled')`

func (r *EventRepository) selectEvents(viewerID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"e.id", "e.creator_id", "u.username", "e.title", "e.description", "e.event_type", "e.start_time",
		"e.end_time", "e.location", "e.capacity", "e.registration_deadline", "e.image_path", "e.is_published",
		"e.created_at", "e.updated_at", activeRegistrations,
	).
		Column(`EXISTS (SELECT 1 FROM event_registrations er
			WHERE er.event_id = e.id AND er.user_id = ? AND er.status <> 'canceled')`, viewerID).
		From("events e").
		Join("users u ON u.id = e.creator_id")
}

func scanEvent(row pgx.Row, e *models.Event) error {
	return row.Scan(&e.ID, &e.CreatorID, &e.CreatorName, &e.Title, &e.Description, &e.EventType, &e.StartTime,
		&e.EndTime, &e.Location, &e.Capacity, &e.RegistrationDeadline, &e.ImagePath, &e.IsPublished,
		&e.CreatedAt, &e.UpdatedAt, &e.RegisteredCount, &e.RegisteredByMe)
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	sql, args, err := r.sb.Insert("events").
		Columns("creator_id", "title", "description", "event_type", "start_time", "end_time", "location",
			"capacity", "registration_deadline", "image_path", "is_published").
		Values(e.CreatorID, e.Title, e.Description, e.EventType, e.StartTime, e.EndTime, e.Location,
			e.Capacity, e.RegistrationDeadline, e.ImagePath, e.IsPublished).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its registration count as seen by viewerID
func (r *EventRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Event, error) {
	sql, args, err := r.selectEvents(viewerID).Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}
	e := &models.Event{}
	if err := scanEvent(r.db.QueryRow(ctx, sql, args...), e); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return e, nil
}

// Update saves the editable columns of an event
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	sql, args, err := r.sb.Update("events").SetMap(map[string]interface{}{
		"title":                 e.Title,
		"description":           e.Description,
		"event_type":            e.EventType,
		"start_time":            e.StartTime,
		"end_time":              e.EndTime,
		"location":              e.Location,
		"capacity":              e.Capacity,
		"registration_deadline": e.RegistrationDeadline,
		"image_path":            e.ImagePath,
		"updated_at":            squirrel.Expr("NOW()"),
	}).Where(squirrel.Eq{"id": e.ID}).Suffix("RETURNING updated_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update event query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrEventNotFound
		}
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

// Confirm publishes the event
func (r *EventRepository) Confirm(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE events SET is_published = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error confirming event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// Delete removes the event and its registrations
func (r *EventRepository) Delete(ctx context.Context, id int64) (models.Orphans, error) {
	var orphans models.Orphans
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var image string
		if err := tx.QueryRow(ctx, `SELECT image_path FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&image); err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrEventNotFound
			}
			return fmt.Errorf("error locking event: %w", err)
		}
		if image != "" {
			orphans = append(orphans, image)
		}
		return execAll(ctx, tx, []string{
			`DELETE FROM event_registrations WHERE event_id = $1`,
			`DELETE FROM events WHERE id = $1`,
		}, id)
	})
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

// List returns events ordered by start time with the total count
func (r *EventRepository) List(ctx context.Context, f models.EventFilter) ([]models.Event, int64, error) {
	where := squirrel.And{}
	if f.PublishedOnly {
		where = append(where, squirrel.Eq{"e.is_published": true})
	}
	if f.PendingOnly {
		where = append(where, squirrel.Eq{"e.is_published": false})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"e.title": pattern},
			squirrel.ILike{"e.description": pattern},
			squirrel.ILike{"e.location": pattern},
		})
	}
	if f.Type != "" {
		where = append(where, squirrel.Eq{"e.event_type": f.Type})
	}

	order := "e.start_time ASC"
	switch f.Status {
	case "upcoming":
		where = append(where, squirrel.Gt{"e.start_time": f.Now})
	case "ongoing":
		where = append(where, squirrel.LtOrEq{"e.start_time": f.Now}, squirrel.GtOrEq{"e.end_time": f.Now})
	case "past":
		where = append(where, squirrel.Lt{"e.end_time": f.Now})
		order = "e.start_time DESC"
	}

	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("events e").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := r.selectEvents(f.ViewerID).Where(where).OrderBy(order, "e.id")
	if f.Page.Size > 0 {
		q = q.Limit(f.Page.Limit()).Offset(f.Page.Offset())
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, 0, fmt.Errorf("error scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// Register adds an active registration while the event row is locked,
// so the capacity check and the insert cannot interleave with another registration.
func (r *EventRepository) Register(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error) {
	reg := &models.EventRegistration{EventID: eventID, UserID: userID, Status: models.RegistrationRegistered}
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var capacity *int
		if err := tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity); err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrEventNotFound
			}
			return fmt.Errorf("error locking event: %w", err)
		}

		var mine, active int64
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FILTER (WHERE user_id = $2), COUNT(*)
			FROM event_registrations WHERE event_id = $1 AND status <> 'canceled'`, eventID, userID).
			Scan(&mine, &active)
		if err != nil {
			return fmt.Errorf("error counting registrations: %w", err)
		}
		if mine > 0 {
			return apperrors.ErrAlreadyRegistered
		}
		if capacity != nil && active >= int64(*capacity) {
			return apperrors.ErrEventFull
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO event_registrations (event_id, user_id, status) VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`, eventID, userID, reg.Status).
			Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "event_registrations_active_key") {
				return apperrors.ErrAlreadyRegistered
			}
			return fmt.Errorf("error creating registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// CancelRegistration cancels the user's active registration
func (r *EventRepository) CancelRegistration(ctx context.Context, eventID, userID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE event_registrations SET status = 'canceled', updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND status = 'registered'`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error canceling registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotRegistered
	}
	return nil
}

const registrationSelect = `
	SELECT r.id, r.event_id, r.user_id, u.username, r.status, r.created_at, r.updated_at
	FROM event_registrations r JOIN users u ON u.id = r.user_id`

func scanRegistration(row pgx.Row, reg *models.EventRegistration) error {
	return row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Username, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetRegistration retrieves a registration by ID
func (r *EventRepository) GetRegistration(ctx context.Context, id int64) (*models.EventRegistration, error) {
	reg := &models.EventRegistration{}
	if err := scanRegistration(r.db.QueryRow(ctx, registrationSelect+` WHERE r.id = $1`, id), reg); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrNotRegistered
		}
		return nil, fmt.Errorf("error getting registration: %w", err)
	}
	return reg, nil
}

// SetRegistrationStatus changes a registration's status
func (r *EventRepository) SetRegistrationStatus(ctx context.Context, id int64, status models.RegistrationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE event_registrations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotRegistered
	}
	return nil
}

// ListRegistrations lists an event's registrations oldest first
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID int64) ([]models.EventRegistration, error) {
	rows, err := r.db.Query(ctx, registrationSelect+` WHERE r.event_id = $1 ORDER BY r.created_at, r.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	defer rows.Close()

	out := []models.EventRegistration{}
	for rows.Next() {
		var reg models.EventRegistration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("error scanning registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// UserStats counts events the user created, upcoming registrations and attended events
func (r *EventRepository) UserStats(ctx context.Context, userID int64, now time.Time) (*models.EventUserStats, error) {
	s := &models.EventUserStats{}
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events WHERE creator_id = $1),
			(SELECT COUNT(*) FROM event_registrations r JOIN events e ON e.id = r.event_id
				WHERE r.user_id = $1 AND r.status = 'registered' AND e.start_time > $2),
			(SELECT COUNT(*) FROM event_registrations WHERE user_id = $1 AND status = 'attended')`,
		userID, now).Scan(&s.Created, &s.Registered, &s.Attended)
	if err != nil {
		return nil, fmt.Errorf("error getting event stats: %w", err)
	}
	return s, nil
}
