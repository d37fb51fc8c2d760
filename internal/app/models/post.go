package models

import "time"

// Post is a social feed entry. At most one of ImagePath (local upload) and
// ImageURL (external link) is set.
type Post struct {
	ID            int64     `json:"id" db:"id"`
	AuthorID      int64     `json:"authorId" db:"author_id"`
	AuthorName    string    `json:"authorName" db:"-"`
	Title         string    `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"`
	ImagePath     string    `json:"imagePath,omitempty" db:"image_path" example:"posts/20260101_120000_photo.png"`
	ImageURL      string    `json:"imageUrl,omitempty" db:"image_url"`
	IsPublished   bool      `json:"isPublished" db:"is_published"`
	IsConfirmed   bool      `json:"isConfirmed" db:"is_confirmed"`
	LikesCount    int64     `json:"likesCount" db:"-"`
	CommentsCount int64     `json:"commentsCount" db:"-"`
	LikedByMe     bool      `json:"likedByMe" db:"-"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// LocalImage returns the uploaded image path, or "" when the post links an external URL
func (p *Post) LocalImage() string {
	if p.ImageURL != "" {
		return ""
	}
	return p.ImagePath
}

// PostFilter narrows feed and moderation listings
type PostFilter struct {
	ViewerID      int64
	AuthorID      int64
	PublishedOnly bool
	// ConfirmedOnly hides unconfirmed posts, except the viewer's own
	ConfirmedOnly bool
	PendingOnly   bool
	Page          Page
}

// Comment belongs to exactly one post and one author
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	PostID     int64     `json:"postId" db:"post_id"`
	AuthorID   int64     `json:"authorId" db:"author_id"`
	AuthorName string    `json:"authorName" db:"-"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// PostStats is one row of the post statistics export
type PostStats struct {
	ID            int64
	Title         string
	AuthorName    string
	LikesCount    int64
	CommentsCount int64
	CreatedAt     time.Time
}
