package models

import "time"

// RequestStatus is the state of a connection request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// Connection is one direction of a symmetric friendship; rows always come in mirrored pairs
type Connection struct {
	ID                int64     `json:"id" db:"id"`
	UserID            int64     `json:"userId" db:"user_id"`
	ConnectedUserID   int64     `json:"connectedUserId" db:"connected_user_id"`
	ConnectedUsername string    `json:"connectedUsername,omitempty" db:"-"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// ConnectionRequest is a pending or resolved friend request
type ConnectionRequest struct {
	ID                int64         `json:"id" db:"id"`
	SenderID          int64         `json:"senderId" db:"sender_id"`
	SenderUsername    string        `json:"senderUsername,omitempty" db:"-"`
	RecipientID       int64         `json:"recipientId" db:"recipient_id"`
	RecipientUsername string        `json:"recipientUsername,omitempty" db:"-"`
	Status            RequestStatus `json:"status" db:"status"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at"`
}

// Message is a direct message between two users
type Message struct {
	ID          int64     `json:"id" db:"id"`
	SenderID    int64     `json:"senderId" db:"sender_id"`
	RecipientID int64     `json:"recipientId" db:"recipient_id"`
	Content     string    `json:"content" db:"content"`
	IsRead      bool      `json:"isRead" db:"is_read"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Conversation summarizes the thread with one partner
type Conversation struct {
	PartnerID       int64   `json:"partnerId"`
	PartnerUsername string  `json:"partnerUsername"`
	LastMessage     Message `json:"lastMessage"`
	UnreadCount     int64   `json:"unreadCount"`
}
