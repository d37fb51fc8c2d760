package dto

import (
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
)

// EventRequest creates or updates an event; the image travels as form field "image"
type EventRequest struct {
	Title                string           `json:"title" form:"title" binding:"required,max=200" example:"Alumni Networking Night"`
	Description          string           `json:"description" form:"description" binding:"required"`
	EventType            models.EventType `json:"eventType" form:"eventType" binding:"required,eventtype" example:"networking"`
	StartTime            time.Time        `json:"startTime" form:"startTime" time_format:"2006-01-02T15:04" binding:"required"`
	EndTime              time.Time        `json:"endTime" form:"endTime" time_format:"2006-01-02T15:04" binding:"required,gtfield=StartTime"`
	Location             string           `json:"location" form:"location" binding:"required,max=200" example:"Hội trường A"`
	Capacity             *int             `json:"capacity" form:"capacity" binding:"omitempty,min=1" example:"50"`
	RegistrationDeadline *time.Time       `json:"registrationDeadline" form:"registrationDeadline" time_format:"2006-01-02T15:04"`
}

// EventListRequest is bound from the event listing query string
type EventListRequest struct {
	Search string           `form:"search"`
	Type   models.EventType `form:"type" binding:"omitempty,eventtype"`
	Status string           `form:"status" binding:"omitempty,oneof=upcoming ongoing past"`
}

// EventDetailResponse is an event with the caller's registration state
type EventDetailResponse struct {
	Event       *models.Event `json:"event"`
	CanRegister bool          `json:"canRegister"`
	SpotsLeft   *int64        `json:"spotsLeft,omitempty"`
	CanManage   bool          `json:"canManage"`
}
