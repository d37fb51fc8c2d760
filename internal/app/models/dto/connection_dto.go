package dto

import "github.com/fitalumni/alumni/internal/app/models"

// ConnectionRequestBody sends a connection request
type ConnectionRequestBody struct {
	RecipientID int64 `json:"recipientId" binding:"required,min=1" example:"2"`
}

// SendMessageRequest sends a direct message
type SendMessageRequest struct {
	RecipientID int64  `json:"recipientId" binding:"required,min=1" example:"2"`
	Content     string `json:"content" binding:"required,max=5000" example:"Chào bạn!"`
}

// UnreadCountResponse is the caller's unread message count
type UnreadCountResponse struct {
	Count int64 `json:"count" example:"3"`
}

// SuggestionResponse is a user the caller may want to connect with
type SuggestionResponse struct {
	ID       int64           `json:"id" example:"5"`
	Username string          `json:"username" example:"tranthib"`
	Role     models.RoleType `json:"role" example:"alumni"`
}
