package models

import "time"

// EventType enumerates the kinds of alumni events
type EventType string

const (
	EventNetworking EventType = "networking"
	EventWorkshop   EventType = "workshop"
	EventReunion    EventType = "reunion"
	EventCareer     EventType = "career"
)

// RegistrationStatus is the state of an event registration
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCanceled   RegistrationStatus = "canceled"
	RegistrationAttended   RegistrationStatus = "attended"
)

// Event is a gathering created by a user and published after admin confirmation
type Event struct {
	ID                   int64      `json:"id" db:"id"`
	CreatorID            int64      `json:"creatorId" db:"creator_id"`
	CreatorName          string     `json:"creatorName,omitempty" db:"-"`
	Title                string     `json:"title" db:"title"`
	Description          string     `json:"description" db:"description"`
	EventType            EventType  `json:"eventType" db:"event_type" example:"networking"`
	StartTime            time.Time  `json:"startTime" db:"start_time"`
	EndTime              time.Time  `json:"endTime" db:"end_time"`
	Location             string     `json:"location" db:"location"`
	Capacity             *int       `json:"capacity,omitempty" db:"capacity" example:"50"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	ImagePath            string     `json:"imagePath,omitempty" db:"image_path"`
	IsPublished          bool       `json:"isPublished" db:"is_published"`
	RegisteredCount      int64      `json:"registeredCount" db:"-"`
	RegisteredByMe       bool       `json:"registeredByMe" db:"-"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}

// EventFilter narrows event listings. Status is one of upcoming, ongoing or past
// and is evaluated against Now.
type EventFilter struct {
	ViewerID      int64
	Search        string
	Type          EventType
	Status        string
	Now           time.Time
	PublishedOnly bool
	PendingOnly   bool
	Page          Page
}

// EventRegistration links a user to an event
type EventRegistration struct {
	ID        int64              `json:"id" db:"id"`
	EventID   int64              `json:"eventId" db:"event_id"`
	UserID    int64              `json:"userId" db:"user_id"`
	Username  string             `json:"username,omitempty" db:"-"`
	Status    RegistrationStatus `json:"status" db:"status"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" db:"updated_at"`
}

// EventUserStats are the per-user event counters shown on the events page
type EventUserStats struct {
	Created    int64 `json:"created"`
	Registered int64 `json:"registered"`
	Attended   int64 `json:"attended"`
}
