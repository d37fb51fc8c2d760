package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
)

// ConnectionController handles connection requests and the connection list
type ConnectionController struct {
	connectionService *services.ConnectionService
	logger            zerolog.Logger
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService *services.ConnectionService, logger zerolog.Logger) *ConnectionController {
	return &ConnectionController{connectionService: connectionService, logger: logger}
}

// SendRequest asks another user to connect
// @Summary Send connection request
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConnectionRequestBody true "Recipient"
// @Success 201 {object} dto.APIResponse{data=models.ConnectionRequest}
// @Failure 400 {object} dto.ErrorResponse "Request to self"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Failure 409 {object} dto.ErrorResponse "Already connected or request pending"
// @Router /connections/requests [post]
func (c *ConnectionController) SendRequest(ctx *gin.Context) {
	var req dto.ConnectionRequestBody
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	request, err := c.connectionService.SendRequest(ctx.Request.Context(), viewer(ctx), req.RecipientID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(request))
}

// Accept accepts a received request
// @Summary Accept connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the recipient"
// @Failure 409 {object} dto.ErrorResponse "Request no longer pending"
// @Router /connections/requests/{id}/accept [post]
func (c *ConnectionController) Accept(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.connectionService.Accept(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Connection request accepted"))
}

// Reject rejects a received request
// @Summary Reject connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the recipient"
// @Failure 409 {object} dto.ErrorResponse "Request no longer pending"
// @Router /connections/requests/{id}/reject [post]
func (c *ConnectionController) Reject(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.connectionService.Reject(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Connection request rejected"))
}

// List returns the caller's connections
// @Summary My connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Connection}
// @Router /connections [get]
func (c *ConnectionController) List(ctx *gin.Context) {
	conns, err := c.connectionService.Connections(ctx.Request.Context(), viewer(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conns))
}

// Incoming returns pending requests sent to the caller
// @Summary Received requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ConnectionRequest}
// @Router /connections/requests [get]
func (c *ConnectionController) Incoming(ctx *gin.Context) {
	requests, err := c.connectionService.Incoming(ctx.Request.Context(), viewer(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests))
}

// Outgoing returns pending requests the caller sent
// @Summary Sent requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ConnectionRequest}
// @Router /connections/requests/sent [get]
func (c *ConnectionController) Outgoing(ctx *gin.Context) {
	requests, err := c.connectionService.Outgoing(ctx.Request.Context(), viewer(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests))
}

// Remove disconnects the caller from another user
// @Summary Remove connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Not connected"
// @Router /connections/{userId} [delete]
func (c *ConnectionController) Remove(ctx *gin.Context) {
	otherID, ok := parseID(ctx, "userId")
	if !ok {
		return
	}
	if err := c.connectionService.Remove(ctx.Request.Context(), viewer(ctx), otherID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Connection removed"))
}

// Suggestions lists people the caller may know
// @Summary Connection suggestions
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum suggestions" default(10)
// @Success 200 {object} dto.APIResponse{data=[]dto.SuggestionResponse}
// @Router /users/suggestions [get]
func (c *ConnectionController) Suggestions(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	users, err := c.connectionService.Suggestions(ctx.Request.Context(), viewer(ctx), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}
