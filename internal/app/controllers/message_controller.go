package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
)

// MessageController handles direct messages
type MessageController struct {
	messageService *services.MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService *services.MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{messageService: messageService, logger: logger}
}

// Send stores a message and pushes it over open websockets
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Recipient and content"
// @Success 201 {object} dto.APIResponse{data=models.Message}
// @Failure 400 {object} dto.ErrorResponse "Empty content or message to self"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Router /messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	msg, err := c.messageService.Send(ctx.Request.Context(), viewer(ctx).ID, req.RecipientID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg))
}

// Conversations lists one row per partner, newest first
// @Summary Conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Conversation}
// @Router /messages/conversations [get]
func (c *MessageController) Conversations(ctx *gin.Context) {
	convs, err := c.messageService.Conversations(ctx.Request.Context(), viewer(ctx).ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(convs))
}

// Conversation returns the messages exchanged with one user and marks theirs read
// @Summary Conversation with a user
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Partner user ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Message}
// @Router /messages/{userId} [get]
func (c *MessageController) Conversation(ctx *gin.Context) {
	partnerID, ok := parseID(ctx, "userId")
	if !ok {
		return
	}
	msgs, err := c.messageService.Conversation(ctx.Request.Context(), viewer(ctx).ID, partnerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(msgs))
}

// UnreadCount returns the number of unread messages
// @Summary Unread message count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /messages/unread-count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	count, err := c.messageService.UnreadCount(ctx.Request.Context(), viewer(ctx).ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{Count: count}))
}
