package repositories

import (
	"context"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateRole(ctx context.Context, id int64, role models.RoleType) error
	SetActive(ctx context.Context, id int64, active bool) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	CountByRole(ctx context.Context, role models.RoleType) (int64, error)
	// Suggestions lists active users with no connection or pending request to userID
	Suggestions(ctx context.Context, userID int64, limit int) ([]models.User, error)
	// Delete removes the user and everything they own in one transaction and
	// returns the uploaded files that were referenced by the removed rows.
	Delete(ctx context.Context, id int64) (models.Orphans, error)
}

// SessionRepository stores server-side login state.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every session of the user except keepID (may be empty)
	DeleteByUser(ctx context.Context, userID int64, keepID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetRepository stores one-time password reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	Get(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// Redeem consumes an unused, unexpired token, sets the owner's password hash
	// and revokes every session of the owner in one transaction. It returns the owner's ID.
	Redeem(ctx context.Context, token string, now time.Time, passwordHash string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProfileRepository persists profiles and their child collections.
type ProfileRepository interface {
	// Get returns nil without error when the user has no profile yet
	Get(ctx context.Context, userID int64) (*models.Profile, error)
	// Save upserts the profile and replaces the non-nil collections of sets in one transaction
	Save(ctx context.Context, profile *models.Profile, sets models.ProfileSets) error
	// SetAvatar stores the new avatar path and returns the previous one
	SetAvatar(ctx context.Context, userID int64, path string) (string, error)
	ListEducations(ctx context.Context, userID int64) ([]models.Education, error)
	ListExperiences(ctx context.Context, userID int64) ([]models.Experience, error)
	ListSkills(ctx context.Context, userID int64) ([]models.Skill, error)
	AddEducation(ctx context.Context, education *models.Education) error
	AddExperience(ctx context.Context, experience *models.Experience) error
	AddSkill(ctx context.Context, skill *models.Skill) error
	DeleteEducation(ctx context.Context, userID, id int64) error
	DeleteExperience(ctx context.Context, userID, id int64) error
	DeleteSkill(ctx context.Context, userID, id int64) error
}

// PostRepository persists the social feed.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	SetPublished(ctx context.Context, id int64, published bool) error
	Confirm(ctx context.Context, id int64) error
	// Delete removes the post with its comments and likes in one transaction
	Delete(ctx context.Context, id int64) error
	// ToggleLike flips the (post, user) like and returns the new state and count
	ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	Stats(ctx context.Context) ([]models.PostStats, error)
}

// JobRepository persists job postings.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	SetStatus(ctx context.Context, id int64, status models.JobStatus) error
	Confirm(ctx context.Context, id int64) error
	// Delete removes the job and its applications, returning logo and resume files
	Delete(ctx context.Context, id int64) (models.Orphans, error)
	Search(ctx context.Context, filter models.JobFilter) ([]models.Job, int64, error)
	ListByPoster(ctx context.Context, posterID int64, page models.Page) ([]models.Job, int64, error)
	ListPending(ctx context.Context, page models.Page) ([]models.Job, int64, error)
	// CloseExpired closes confirmed active jobs whose deadline is before today
	CloseExpired(ctx context.Context, today time.Time) (int64, error)
}

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.JobApplication) error
	GetByID(ctx context.Context, id int64) (*models.JobApplication, error)
	Exists(ctx context.Context, jobID, applicantID int64) (bool, error)
	// ListForJob lists applications of a job, optionally by status, and marks them viewed
	ListForJob(ctx context.Context, jobID int64, status models.ApplicationStatus) ([]models.JobApplication, error)
	ListByApplicant(ctx context.Context, applicantID int64) ([]models.JobApplication, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
}

// EventRepository persists events and registrations.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Confirm(ctx context.Context, id int64) error
	// Delete removes the event and its registrations, returning its image file
	Delete(ctx context.Context, id int64) (models.Orphans, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int64, error)
	// Register inserts a registration while holding a lock on the event row.
	// It fails with ErrAlreadyRegistered or ErrEventFull.
	Register(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error)
	// CancelRegistration flips the active registration to canceled
	CancelRegistration(ctx context.Context, eventID, userID int64) error
	GetRegistration(ctx context.Context, id int64) (*models.EventRegistration, error)
	SetRegistrationStatus(ctx context.Context, id int64, status models.RegistrationStatus) error
	ListRegistrations(ctx context.Context, eventID int64) ([]models.EventRegistration, error)
	UserStats(ctx context.Context, userID int64, now time.Time) (*models.EventUserStats, error)
}

// ConnectionRepository persists the friend graph.
type ConnectionRepository interface {
	CreateRequest(ctx context.Context, req *models.ConnectionRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ConnectionRequest, error)
	// PendingBetween returns a pending request in either direction, or nil
	PendingBetween(ctx context.Context, a, b int64) (*models.ConnectionRequest, error)
	AreConnected(ctx context.Context, a, b int64) (bool, error)
	// Accept marks the request accepted and inserts both mirrored rows atomically
	Accept(ctx context.Context, requestID int64) error
	Reject(ctx context.Context, requestID int64) error
	ListConnections(ctx context.Context, userID int64) ([]models.Connection, error)
	ListIncoming(ctx context.Context, userID int64) ([]models.ConnectionRequest, error)
	ListOutgoing(ctx context.Context, userID int64) ([]models.ConnectionRequest, error)
	// Remove deletes both directions of a connection and reports the number of rows removed
	Remove(ctx context.Context, a, b int64) (int64, error)
}

// MessageRepository persists direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	Conversation(ctx context.Context, userID, partnerID int64) ([]models.Message, error)
	MarkRead(ctx context.Context, recipientID, senderID int64) (int64, error)
	Conversations(ctx context.Context, userID int64) ([]models.Conversation, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// ActivityRepository is the append-only audit log.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, page models.Page) ([]models.ActivityLog, int64, error)
}

// SettingsRepository persists the singleton settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
	Update(ctx context.Context, settings *models.SystemSettings) error
	// EnsureDefaults creates the row when it is missing
	EnsureDefaults(ctx context.Context) error
}

// StatsRepository answers the aggregate queries of the admin dashboard.
type StatsRepository interface {
	Totals(ctx context.Context) (*models.Totals, error)
	RoleDistribution(ctx context.Context) ([]models.NamedCount, error)
	MonthlySignups(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
	JobsByType(ctx context.Context) ([]models.NamedCount, error)
	EventsByType(ctx context.Context) ([]models.NamedCount, error)
	TopEmployers(ctx context.Context, limit int) ([]models.NamedCount, error)
	ApplicationOutcome(ctx context.Context) (total, accepted int64, err error)
}
