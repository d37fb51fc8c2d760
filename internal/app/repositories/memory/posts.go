package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type postRepository struct {
	db *DB
}

var _ repositories.PostRepository = (*postRepository)(nil)

// viewPostLocked copies the post with its joined and computed columns
func (db *DB) viewPostLocked(p *models.Post, viewerID int64) models.Post {
	out := *p
	out.AuthorName = db.username(p.AuthorID)
	out.LikesCount, out.CommentsCount, out.LikedByMe = 0, 0, false
	for k := range db.likes {
		if k.postID == p.ID {
			out.LikesCount++
			if k.userID == viewerID {
				out.LikedByMe = true
			}
		}
	}
	for _, c := range db.comments {
		if c.PostID == p.ID {
			out.CommentsCount++
		}
	}
	return out
}

// deletePostLocked removes the post with its comments and likes
func (db *DB) deletePostLocked(id int64) {
	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}
	for k := range db.likes {
		if k.postID == id {
			delete(db.likes, k)
		}
	}
	delete(db.posts, id)
}

func (r *postRepository) Create(_ context.Context, post *models.Post) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[post.AuthorID]; !ok {
		return apperrors.ErrUserNotFound
	}
	now := r.db.now()
	post.ID = r.db.nextID()
	post.CreatedAt, post.UpdatedAt = now, now
	cp := *post
	r.db.posts[post.ID] = &cp
	return nil
}

func (r *postRepository) GetByID(_ context.Context, id, viewerID int64) (*models.Post, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	p, ok := r.db.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	out := r.db.viewPostLocked(p, viewerID)
	return &out, nil
}

func (r *postRepository) List(_ context.Context, f models.PostFilter) ([]models.Post, int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	posts := []models.Post{}
	for _, p := range r.db.posts {
		if f.AuthorID > 0 && p.AuthorID != f.AuthorID {
			continue
		}
		if f.PublishedOnly && !p.IsPublished {
			continue
		}
		if f.ConfirmedOnly && !p.IsConfirmed && p.AuthorID != f.ViewerID {
			continue
		}
		if f.PendingOnly && p.IsConfirmed {
			continue
		}
		posts = append(posts, r.db.viewPostLocked(p, f.ViewerID))
	}
	newestFirst(posts, func(p models.Post) time.Time { return p.CreatedAt }, func(p models.Post) int64 { return p.ID })
	return paginate(posts, f.Page), int64(len(posts)), nil
}

func (r *postRepository) Update(_ context.Context, post *models.Post) error {
	r.db.Lock()
	defer r.db.Unlock()

	p, ok := r.db.posts[post.ID]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	p.Title, p.Content, p.ImagePath, p.ImageURL = post.Title, post.Content, post.ImagePath, post.ImageURL
	p.UpdatedAt = r.db.now()
	post.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *postRepository) SetPublished(_ context.Context, id int64, published bool) error {
	r.db.Lock()
	defer r.db.Unlock()

	p, ok := r.db.posts[id]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	p.IsPublished = published
	p.UpdatedAt = r.db.now()
	return nil
}

func (r *postRepository) Confirm(_ context.Context, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	p, ok := r.db.posts[id]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	p.IsConfirmed = true
	p.UpdatedAt = r.db.now()
	return nil
}

func (r *postRepository) Delete(_ context.Context, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.posts[id]; !ok {
		return apperrors.ErrPostNotFound
	}
	r.db.deletePostLocked(id)
	return nil
}

func (r *postRepository) ToggleLike(_ context.Context, postID, userID int64) (bool, int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.posts[postID]; !ok {
		return false, 0, apperrors.ErrPostNotFound
	}

	key := likeKey{postID, userID}
	liked := !r.db.likes[key]
	if liked {
		r.db.likes[key] = true
	} else {
		delete(r.db.likes, key)
	}

	var count int64
	for k := range r.db.likes {
		if k.postID == postID {
			count++
		}
	}
	return liked, count, nil
}

func (r *postRepository) AddComment(_ context.Context, comment *models.Comment) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.posts[comment.PostID]; !ok {
		return apperrors.ErrPostNotFound
	}
	comment.ID = r.db.nextID()
	comment.CreatedAt = r.db.now()
	comment.AuthorName = r.db.username(comment.AuthorID)
	cp := *comment
	r.db.comments[comment.ID] = &cp
	return nil
}

func (r *postRepository) GetComment(_ context.Context, id int64) (*models.Comment, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, apperrors.ErrCommentNotFound
	}
	cp := *c
	cp.AuthorName = r.db.username(c.AuthorID)
	return &cp, nil
}

func (r *postRepository) ListComments(_ context.Context, postID int64) ([]models.Comment, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.Comment{}
	for _, c := range r.db.comments {
		if c.PostID == postID {
			cp := *c
			cp.AuthorName = r.db.username(c.AuthorID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *postRepository) DeleteComment(_ context.Context, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.comments[id]; !ok {
		return apperrors.ErrCommentNotFound
	}
	delete(r.db.comments, id)
	return nil
}

func (r *postRepository) Stats(_ context.Context) ([]models.PostStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.PostStats{}
	for _, p := range r.db.posts {
		v := r.db.viewPostLocked(p, 0)
		out = append(out, models.PostStats{
			ID:            v.ID,
			Title:         v.Title,
			AuthorName:    v.AuthorName,
			LikesCount:    v.LikesCount,
			CommentsCount: v.CommentsCount,
			CreatedAt:     v.CreatedAt,
		})
	}
	newestFirst(out, func(s models.PostStats) time.Time { return s.CreatedAt }, func(s models.PostStats) int64 { return s.ID })
	return out, nil
}
