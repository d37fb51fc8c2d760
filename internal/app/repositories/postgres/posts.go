package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// PostRepository handles posts, comments and likes
type PostRepository struct {
	base
}

func (r *PostRepository) selectPosts(viewerID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.author_id", "u.username", "p.title", "p.content", "p.image_path", "p.image_url",
		"p.is_published", "p.is_confirmed", "p.created_at", "p.updated_at",
		"(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)",
		"(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)",
	).
		Column("EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?)", viewerID).
		From("posts p").
		Join("users u ON u.id = p.author_id")
}

func scanPost(row pgx.Row, p *models.Post) error {
	return row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Content, &p.ImagePath, &p.ImageURL,
		&p.IsPublished, &p.IsConfirmed, &p.CreatedAt, &p.UpdatedAt, &p.LikesCount, &p.CommentsCount, &p.LikedByMe)
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	sql, args, err := r.sb.Insert("posts").
		Columns("author_id", "title", "content", "image_path", "image_url", "is_published", "is_confirmed").
		Values(p.AuthorID, p.Title, p.Content, p.ImagePath, p.ImageURL, p.IsPublished, p.IsConfirmed).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create post query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post with its counters as seen by viewerID
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	sql, args, err := r.selectPosts(viewerID).Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}

	p := &models.Post{}
	if err := scanPost(r.db.QueryRow(ctx, sql, args...), p); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	return p, nil
}

func postWhere(f models.PostFilter) squirrel.And {
	where := squirrel.And{}
	if f.AuthorID > 0 {
		where = append(where, squirrel.Eq{"p.author_id": f.AuthorID})
	}
	if f.PublishedOnly {
		where = append(where, squirrel.Eq{"p.is_published": true})
	}
	if f.ConfirmedOnly {
		where = append(where, squirrel.Or{
			squirrel.Eq{"p.is_confirmed": true},
			squirrel.Eq{"p.author_id": f.ViewerID},
		})
	}
	if f.PendingOnly {
		where = append(where, squirrel.Eq{"p.is_confirmed": false})
	}
	return where
}

// List returns posts newest first with the total count
func (r *PostRepository) List(ctx context.Context, f models.PostFilter) ([]models.Post, int64, error) {
	where := postWhere(f)
	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("posts p").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := r.selectPosts(f.ViewerID).Where(where).OrderBy("p.created_at DESC", "p.id DESC")
	if f.Page.Size > 0 {
		q = q.Limit(f.Page.Limit()).Offset(f.Page.Offset())
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// Update saves the editable fields of a post
func (r *PostRepository) Update(ctx context.Context, p *models.Post) error {
	sql, args, err := r.sb.Update("posts").
		Set("title", p.Title).
		Set("content", p.Content).
		Set("image_path", p.ImagePath).
		Set("image_url", p.ImageURL).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update post query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error updating post: %w", err)
	}
	return nil
}

func (r *PostRepository) setFlag(ctx context.Context, id int64, column string, value bool) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`UPDATE posts SET %s = $1, updated_at = NOW() WHERE id = $2`, column), value, id)
	if err != nil {
		return fmt.Errorf("error updating post %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// SetPublished sets the publish flag
func (r *PostRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	return r.setFlag(ctx, id, "is_published", published)
}

// Confirm marks the post as approved by an admin
func (r *PostRepository) Confirm(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "is_confirmed", true)
}

// Delete removes the post together with its comments and likes
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := execAll(ctx, tx, []string{
			`DELETE FROM comments WHERE post_id = $1`,
			`DELETE FROM post_likes WHERE post_id = $1`,
		}, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting post: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrPostNotFound
		}
		return nil
	})
}

// ToggleLike adds or removes the user's like and returns the resulting state and count
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error) {
	var liked bool
	var count int64
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Lock the post so concurrent toggles on it serialize
		var exists int64
		if err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&exists); err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrPostNotFound
			}
			return fmt.Errorf("error locking post: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("error removing like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID); err != nil {
				return fmt.Errorf("error adding like: %w", err)
			}
			liked = true
		}

		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	})
	return liked, count, err
}

// AddComment inserts a comment
func (r *PostRepository) AddComment(ctx context.Context, c *models.Comment) error {
	err := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO comments (post_id, author_id, content) VALUES ($1, $2, $3)
			RETURNING id, created_at, author_id
		)
		SELECT ins.id, ins.created_at, u.username FROM ins JOIN users u ON u.id = ins.author_id`,
		c.PostID, c.AuthorID, c.Content).Scan(&c.ID, &c.CreatedAt, &c.AuthorName)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by ID
func (r *PostRepository) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	c := &models.Comment{}
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id WHERE c.id = $1`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error getting comment: %w", err)
	}
	return c, nil
}

// ListComments returns a post's comments oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteComment removes a comment
func (r *PostRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// Stats returns per-post like and comment counts for export
func (r *PostRepository) Stats(ctx context.Context) ([]models.PostStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.title, u.username,
			(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
			p.created_at
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying post stats: %w", err)
	}
	defer rows.Close()

	out := []models.PostStats{}
	for rows.Next() {
		var s models.PostStats
		if err := rows.Scan(&s.ID, &s.Title, &s.AuthorName, &s.LikesCount, &s.CommentsCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning post stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
