package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// EventController handles events and registrations
type EventController struct {
	eventService *services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService *services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{eventService: eventService, logger: logger}
}

// List returns published events
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title or description contains"
// @Param type query string false "networking, workshop, reunion or career"
// @Param status query string false "upcoming, ongoing or past"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Event}}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /events [get]
func (c *EventController) List(ctx *gin.Context) {
	var req dto.EventListRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	events, total, err := c.eventService.List(ctx.Request.Context(), viewer(ctx), &req, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(events, total, page)))
}

// Get returns one event with the caller's registration state
// @Summary Get event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.eventService.Get(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// Create organizes an event; it stays unpublished until an admin confirms it
// @Summary Create event
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventRequest true "Event fields"
// @Param image formData file false "Image (png, jpg, jpeg, gif)"
// @Success 201 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	var req dto.EventRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	image, ok := formFile(ctx, "image")
	if !ok {
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), viewer(ctx), &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event))
}

// Update edits an event
// @Summary Update event
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.EventRequest true "Event fields"
// @Param image formData file false "Replacement image"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [put]
func (c *EventController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.EventRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	image, ok := formFile(ctx, "image")
	if !ok {
		return
	}

	event, err := c.eventService.Update(ctx.Request.Context(), viewer(ctx), id, &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}

// Delete removes an event with its registrations
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.eventService.Delete(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Event deleted"))
}

// Register signs the caller up for an event
// @Summary Register for event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} dto.APIResponse{data=models.EventRegistration}
// @Failure 400 {object} dto.ErrorResponse "Event started or registration closed"
// @Failure 409 {object} dto.ErrorResponse "Already registered or event full"
// @Router /events/{id}/register [post]
func (c *EventController) Register(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	reg, err := c.eventService.Register(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(reg))
}

// CancelRegistration withdraws the caller's registration
// @Summary Cancel registration
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Event already started"
// @Failure 404 {object} dto.ErrorResponse "Not registered"
// @Router /events/{id}/register [delete]
func (c *EventController) CancelRegistration(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.eventService.CancelRegistration(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Registration cancelled"))
}

// Registrations lists an event's registrations
// @Summary Event registrations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.EventRegistration}
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Router /events/{id}/registrations [get]
func (c *EventController) Registrations(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	regs, err := c.eventService.Registrations(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(regs))
}

// MarkAttended records attendance for a registration
// @Summary Mark attended
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} dto.APIResponse{data=models.EventRegistration}
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 409 {object} dto.ErrorResponse "Registration not active"
// @Router /registrations/{id}/attend [post]
func (c *EventController) MarkAttended(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	reg, err := c.eventService.MarkAttended(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reg))
}

// MyStats returns the caller's event counters
// @Summary My event statistics
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.EventUserStats}
// @Router /events/stats/me [get]
func (c *EventController) MyStats(ctx *gin.Context) {
	stats, err := c.eventService.Stats(ctx.Request.Context(), viewer(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// ListPending lists events awaiting confirmation
// @Summary Pending events
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Event}}
// @Router /admin/events/pending [get]
func (c *EventController) ListPending(ctx *gin.Context) {
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	events, total, err := c.eventService.ListPending(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(events, total, page)))
}

// Confirm publishes an event
// @Summary Confirm event
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /admin/events/{id}/confirm [post]
func (c *EventController) Confirm(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.eventService.Confirm(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Event published"))
}
