package dto

import "github.com/fitalumni/alumni/internal/app/models"

// CreatePostRequest is bound from JSON or multipart form; the image file travels as form field "image"
type CreatePostRequest struct {
	Title    string `json:"title" form:"title" binding:"max=200" example:"Gặp mặt K15"`
	Content  string `json:"content" form:"content" binding:"required" example:"Hẹn gặp lại các bạn!"`
	ImageURL string `json:"imageUrl" form:"imageUrl" binding:"omitempty,url,max=500" example:"https://example.com/photo.jpg"`
}

// UpdatePostRequest edits a post. RemoveImage drops the current image without replacing it.
type UpdatePostRequest struct {
	Title       string `json:"title" form:"title" binding:"max=200"`
	Content     string `json:"content" form:"content" binding:"required"`
	ImageURL    string `json:"imageUrl" form:"imageUrl" binding:"omitempty,url,max=500"`
	RemoveImage bool   `json:"removeImage" form:"removeImage"`
}

// CommentRequest creates a comment
type CommentRequest struct {
	Content string `json:"content" binding:"required,max=2000" example:"Chúc mừng!"`
}

// PostDetailResponse is a post with its comments
type PostDetailResponse struct {
	Post     *models.Post     `json:"post"`
	Comments []models.Comment `json:"comments"`
}

// ToggleLikeResponse is the result of a like toggle
type ToggleLikeResponse struct {
	Success    bool  `json:"success" example:"true"`
	Liked      bool  `json:"liked" example:"true"`
	LikesCount int64 `json:"likesCount" example:"3"`
}

// PublishResponse reports the new publish state of a post
type PublishResponse struct {
	IsPublished bool `json:"isPublished" example:"false"`
}

// PostExport is one post in the JSON export and import format
type PostExport struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImagePath   string `json:"imagePath,omitempty"`
	Author      string `json:"author,omitempty"`
	IsPublished *bool  `json:"isPublished,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ImportResult summarizes a post import
type ImportResult struct {
	Imported int      `json:"imported" example:"12"`
	Skipped  int      `json:"skipped" example:"1"`
	Errors   []string `json:"errors,omitempty"`
}
