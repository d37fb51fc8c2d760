package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// PostController handles the social feed
type PostController struct {
	postService *services.PostService
	logger      zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, logger zerolog.Logger) *PostController {
	return &PostController{postService: postService, logger: logger}
}

// Feed lists published posts
// @Summary News feed
// @Description Published posts newest first, with likes, comment count and whether the caller liked each.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param size query int false "Page size (max 100)" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Post}}
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /posts [get]
func (c *PostController) Feed(ctx *gin.Context) {
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	posts, total, err := c.postService.Feed(ctx.Request.Context(), viewer(ctx), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(posts, total, page)))
}

// Create publishes a new post
// @Summary Create post
// @Description An imageUrl takes precedence over an uploaded image. Posts await admin confirmation.
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string false "Title"
// @Param content formData string true "Content"
// @Param imageUrl formData string false "External image URL"
// @Param image formData file false "Image (png, jpg, jpeg, gif)"
// @Success 201 {object} dto.APIResponse{data=models.Post}
// @Failure 400 {object} dto.ErrorResponse "Validation error or disallowed file type"
// @Router /posts [post]
func (c *PostController) Create(ctx *gin.Context) {
	var req dto.CreatePostRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	image, ok := formFile(ctx, "image")
	if !ok {
		return
	}

	post, err := c.postService.Create(ctx.Request.Context(), viewer(ctx), &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// Get returns a post and its comments
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *PostController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.postService.Get(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// Update edits a post
// @Summary Update post
// @Description Only the author or an admin may edit.
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param title formData string false "Title"
// @Param content formData string true "Content"
// @Param imageUrl formData string false "External image URL"
// @Param removeImage formData bool false "Drop the current image"
// @Param image formData file false "Replacement image"
// @Success 200 {object} dto.APIResponse{data=models.Post}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [put]
func (c *PostController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdatePostRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	image, ok := formFile(ctx, "image")
	if !ok {
		return
	}

	post, err := c.postService.Update(ctx.Request.Context(), viewer(ctx), id, &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// Delete removes a post with its comments, likes and image
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
func (c *PostController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.postService.Delete(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Post deleted"))
}

// TogglePublish flips the published flag
// @Summary Publish or hide a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PublishResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /posts/{id}/toggle-publish [post]
func (c *PostController) TogglePublish(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	published, err := c.postService.TogglePublish(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PublishResponse{IsPublished: published}))
}

// ToggleLike likes or unlikes a post
// @Summary Toggle like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToggleLikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/toggle-like [post]
func (c *PostController) ToggleLike(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.postService.ToggleLike(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// AddComment comments on a post
// @Summary Add comment
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment}
// @Failure 400 {object} dto.ErrorResponse "Content required"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (c *PostController) AddComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	comment, err := c.postService.AddComment(ctx.Request.Context(), viewer(ctx), id, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// DeleteComment removes a comment
// @Summary Delete comment
// @Description Allowed for the comment author, the post author or an admin.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /comments/{id} [delete]
func (c *PostController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.postService.DeleteComment(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Comment deleted"))
}

// ListPending lists posts awaiting confirmation
// @Summary Pending posts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Post}}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/posts/pending [get]
func (c *PostController) ListPending(ctx *gin.Context) {
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	posts, total, err := c.postService.ListPending(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(posts, total, page)))
}

// Confirm marks a post as confirmed
// @Summary Confirm post
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /admin/posts/{id}/confirm [post]
func (c *PostController) Confirm(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.postService.Confirm(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Post confirmed"))
}

// Export downloads every post as JSON
// @Summary Export posts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PostExport
// @Router /admin/posts/export [get]
func (c *PostController) Export(ctx *gin.Context) {
	posts, err := c.postService.Export(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="posts.json"`)
	ctx.JSON(http.StatusOK, posts)
}

// ExportStats downloads per-post statistics as CSV
// @Summary Export post statistics
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV with id, title, author, likes, comments, created_at"
// @Router /admin/posts/export/stats [get]
func (c *PostController) ExportStats(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.postService.ExportStats(ctx.Request.Context(), &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="post_stats.csv"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Import creates posts from an uploaded JSON or CSV file
// @Summary Import posts
// @Description Imported posts are attributed to the calling admin.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "posts.json or posts.csv"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult}
// @Failure 400 {object} dto.ErrorResponse "Unsupported or malformed file"
// @Router /admin/posts/import [post]
func (c *PostController) Import(ctx *gin.Context) {
	up, ok := requireFile(ctx, "file")
	if !ok {
		return
	}
	result, err := c.postService.Import(ctx.Request.Context(), viewer(ctx), up)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
