package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

// PostService implements the social feed
type PostService struct {
	posts    repositories.PostRepository
	storage  Storage
	activity *ActivityService
	now      Clock
	logger   zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(repos *repositories.Repositories, storage Storage, activity *ActivityService, now Clock, logger zerolog.Logger) *PostService {
	return &PostService{
		posts:    repos.Posts,
		storage:  storage,
		activity: activity,
		now:      now,
		logger:   logger,
	}
}

func (s *PostService) saveImage(up filestorage.Upload) (string, error) {
	if _, err := filestorage.ImagePolicy.Check(up); err != nil {
		return "", err
	}
	return s.storage.Save(up, filestorage.DirPosts, filestorage.PostImageName(s.now(), up.Filename()))
}

func checkImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !filestorage.IsExternalURL(raw) {
		return "", apperrors.NewValidationError("imageUrl", "image URL must start with http:// or https://")
	}
	return raw, nil
}

// Create publishes a new post. An image URL takes precedence over an uploaded file.
func (s *PostService) Create(ctx context.Context, author *models.User, req *dto.CreatePostRequest, up filestorage.Upload) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content is required")
	}
	imageURL, err := checkImageURL(req.ImageURL)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    author.ID,
		AuthorName:  author.Username,
		Title:       strings.TrimSpace(req.Title),
		Content:     content,
		ImageURL:    imageURL,
		IsPublished: true,
		IsConfirmed: author.IsAdmin(),
	}
	if imageURL == "" && up != nil {
		if post.ImagePath, err = s.saveImage(up); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		removeFiles(s.storage, []string{post.ImagePath})
		return nil, err
	}

	s.activity.Record(ctx, author.ID, ActionPostCreate, "Created post #"+itoa(post.ID))
	return post, nil
}

// Feed lists published posts that are confirmed or written by the viewer
func (s *PostService) Feed(ctx context.Context, viewer *models.User, page models.Page) ([]models.Post, int64, error) {
	return s.posts.List(ctx, models.PostFilter{
		ViewerID:      viewer.ID,
		PublishedOnly: true,
		ConfirmedOnly: true,
		Page:          page,
	})
}

// visible loads a post the viewer may see. Hidden posts look missing.
func (s *PostService) visible(ctx context.Context, viewer *models.User, id int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id, viewer.ID)
	if err != nil {
		return nil, err
	}
	if (!post.IsPublished || !post.IsConfirmed) && !viewer.CanModify(post.AuthorID) {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

// Get returns a post with its comments
func (s *PostService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.PostDetailResponse, error) {
	post, err := s.visible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.posts.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PostDetailResponse{Post: post, Comments: comments}, nil
}

// owned loads a post the actor may modify
func (s *PostService) owned(ctx context.Context, actor *models.User, id int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(post.AuthorID) {
		return nil, apperrors.NewForbiddenError("only the author or an administrator can change this post")
	}
	return post, nil
}

// Update edits a post and replaces or removes its image
func (s *PostService) Update(ctx context.Context, actor *models.User, id int64, req *dto.UpdatePostRequest, up filestorage.Upload) (*models.Post, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content is required")
	}
	imageURL, err := checkImageURL(req.ImageURL)
	if err != nil {
		return nil, err
	}

	oldImage := post.LocalImage()
	var saved string
	switch {
	case imageURL != "":
		post.ImageURL, post.ImagePath = imageURL, ""
	case up != nil:
		if saved, err = s.saveImage(up); err != nil {
			return nil, err
		}
		post.ImageURL, post.ImagePath = "", saved
	case req.RemoveImage:
		post.ImageURL, post.ImagePath = "", ""
	}
	post.Title = strings.TrimSpace(req.Title)
	post.Content = content

	if err := s.posts.Update(ctx, post); err != nil {
		removeFiles(s.storage, []string{saved})
		return nil, err
	}
	if oldImage != "" && oldImage != post.ImagePath {
		removeFiles(s.storage, []string{oldImage})
	}

	s.activity.Record(ctx, actor.ID, ActionPostUpdate, "Updated post #"+itoa(id))
	return post, nil
}

// Delete removes a post with its comments and likes, then its local image
func (s *PostService) Delete(ctx context.Context, actor *models.User, id int64) error {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	removeFiles(s.storage, []string{post.LocalImage()})

	s.activity.Record(ctx, actor.ID, ActionPostDelete, "Deleted post #"+itoa(id))
	return nil
}

// TogglePublish flips the published flag and returns the new state
func (s *PostService) TogglePublish(ctx context.Context, actor *models.User, id int64) (bool, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return false, err
	}
	published := !post.IsPublished
	if err := s.posts.SetPublished(ctx, id, published); err != nil {
		return false, err
	}
	return published, nil
}

// ToggleLike adds or removes the user's like
func (s *PostService) ToggleLike(ctx context.Context, user *models.User, id int64) (*dto.ToggleLikeResponse, error) {
	if _, err := s.visible(ctx, user, id); err != nil {
		return nil, err
	}
	liked, count, err := s.posts.ToggleLike(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleLikeResponse{Success: true, Liked: liked, LikesCount: count}, nil
}

// AddComment comments on a visible post
func (s *PostService) AddComment(ctx context.Context, user *models.User, postID int64, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content is required")
	}
	if _, err := s.visible(ctx, user, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, AuthorID: user.ID, Content: content}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment is allowed for the comment author, the post author and admins
func (s *PostService) DeleteComment(ctx context.Context, actor *models.User, commentID int64) error {
	comment, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return err
	}

	allowed := actor.CanModify(comment.AuthorID)
	if !allowed {
		post, err := s.posts.GetByID(ctx, comment.PostID, actor.ID)
		if err != nil && !errors.Is(err, apperrors.ErrPostNotFound) {
			return err
		}
		allowed = post != nil && post.AuthorID == actor.ID
	}
	if !allowed {
		return apperrors.NewForbiddenError("you cannot delete this comment")
	}
	return s.posts.DeleteComment(ctx, commentID)
}

// ListPending lists posts awaiting confirmation
func (s *PostService) ListPending(ctx context.Context, page models.Page) ([]models.Post, int64, error) {
	return s.posts.List(ctx, models.PostFilter{PendingOnly: true, Page: page})
}

// Confirm makes a post visible in everyone's feed
func (s *PostService) Confirm(ctx context.Context, admin *models.User, id int64) error {
	if err := s.posts.Confirm(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, admin.ID, ActionPostConfirm, "Confirmed post #"+itoa(id))
	return nil
}
