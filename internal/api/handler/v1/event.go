package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EventService interface {
	ListPublic(ctx context.Context) ([]domain.Event, error)
	ListAll(ctx context.Context, caller *domain.Identity) ([]domain.Event, error)
	Get(ctx context.Context, id string) (domain.Event, error)
	Create(ctx context.Context, event domain.Event, caller *domain.Identity) (domain.Event, error)
	Update(ctx context.Context, id string, patch domain.EventPatch, caller *domain.Identity) (domain.Event, error)
	Delete(ctx context.Context, id string, caller *domain.Identity) error
	Register(ctx context.Context, eventID, teamName string, caller *domain.Identity) (domain.Registration, error)
	ListRegistrations(ctx context.Context, eventID string, caller *domain.Identity) ([]domain.Registration, error)
	GetRegistration(ctx context.Context, eventID, registrationID string, caller *domain.Identity) (domain.Registration, error)
	MyRegistration(ctx context.Context, eventID string, caller *domain.Identity) (domain.Registration, error)
	RecountParticipants(ctx context.Context, eventID string, caller *domain.Identity) (domain.Event, error)
}

type TicketService interface {
	Ticket(ctx context.Context, eventID string, caller *domain.Identity) ([]byte, error)
}

type ExportService interface {
	Registrations(ctx context.Context, eventID string, caller *domain.Identity) ([]byte, error)
}

type EventHandler struct {
	svc     EventService
	tickets TicketService
	export  ExportService
}

func NewEventHandler(svc EventService, tickets TicketService, export ExportService) *EventHandler {
	return &EventHandler{
		svc:     svc,
		tickets: tickets,
		export:  export,
	}
}

// HandleListEvents godoc
// @Summary      List public events
// @Description  Upcoming, live and past events, earliest start first.
// @Tags         events
// @Produce      json
// @Success      200  {object}  response.EventListBody
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListPublic(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "HandleListEvents -> h.svc.ListPublic", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithList(events))
}

// HandleListAllEvents godoc
// @Summary      List every event
// @Description  All events including drafts, newest first, with owner name and email. Admin only.
// @Tags         events
// @Produce      json
// @Success      200  {object}  response.EventListBody
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/admin/all [get]
// @Security BearerAuth
func (h *EventHandler) HandleListAllEvents(ctx *gin.Context) {
	events, err := h.svc.ListAll(ctx.Request.Context(), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleListAllEvents -> h.svc.ListAll", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithList(events))
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "event ID"
// @Success      200  {object}  response.EventBody
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	event, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		renderServiceErr(ctx, "HandleGetEvent -> h.svc.Get", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithData(event))
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  The new event is always "upcoming" and owned by the caller.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "event"
// @Success      201      {object}  response.EventBody
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Create(ctx.Request.Context(), req.ToDomain(), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleCreateEvent -> h.svc.Create", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.WithData(event))
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Partial update by the owner or an admin. participantCount and createdBy are ignored.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "event ID"
// @Param        request  body      request.UpdateEventRequest  true  "fields to change"
// @Success      200      {object}  response.EventBody
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{id} [put]
// @Security BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Update(ctx.Request.Context(), ctx.Param("id"), req.ToPatch(), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateEvent -> h.svc.Update", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithData(event))
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Owner or admin. Registrations of the event are kept.
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "event ID"
// @Success      200  {object}  response.MessageBody
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id} [delete]
// @Security BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	if err := h.svc.Delete(ctx.Request.Context(), ctx.Param("id"), middleware.CallerFromContext(ctx)); err != nil {
		renderServiceErr(ctx, "HandleDeleteEvent -> h.svc.Delete", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithMessage("Event deleted"))
}

// HandleRegister godoc
// @Summary      Register for an event
// @Description  teamName is optional and defaults to the caller's name.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true   "event ID"
// @Param        request  body      request.RegisterRequest  false  "team"
// @Success      201      {object}  response.RegistrationBody
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{id}/register [post]
// @Security BearerAuth
func (h *EventHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reg, err := h.svc.Register(ctx.Request.Context(), ctx.Param("id"), req.TeamName, middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleRegister -> h.svc.Register", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.WithData(reg))
}

// HandleListRegistrations godoc
// @Summary      List an event's registrations
// @Description  Owner or admin. Each registration carries the registrant's name and email.
// @Tags         registrations
// @Produce      json
// @Param        id   path      string  true  "event ID"
// @Success      200  {object}  response.RegistrationListBody
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id}/registrations [get]
// @Security BearerAuth
func (h *EventHandler) HandleListRegistrations(ctx *gin.Context) {
	regs, err := h.svc.ListRegistrations(ctx.Request.Context(), ctx.Param("id"), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleListRegistrations -> h.svc.ListRegistrations", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithList(regs))
}

// HandleGetRegistration godoc
// @Summary      Look up one registration
// @Description  Target of the ticket QR code. Owner or admin.
// @Tags         registrations
// @Produce      json
// @Param        id              path      string  true  "event ID"
// @Param        registrationId  path      string  true  "registration ID"
// @Success      200             {object}  response.RegistrationBody
// @Failure      401             {object}  response.Err
// @Failure      403             {object}  response.Err
// @Failure      404             {object}  response.Err
// @Failure      500             {object}  response.Err
// @Router       /events/{id}/registrations/{registrationId} [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetRegistration(ctx *gin.Context) {
	reg, err := h.svc.GetRegistration(ctx.Request.Context(), ctx.Param("id"), ctx.Param("registrationId"), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleGetRegistration -> h.svc.GetRegistration", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithData(reg))
}

// HandleMyRegistration godoc
// @Summary      Get the caller's registration
// @Tags         registrations
// @Produce      json
// @Param        id   path      string  true  "event ID"
// @Success      200  {object}  response.RegistrationBody
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id}/registration [get]
// @Security BearerAuth
func (h *EventHandler) HandleMyRegistration(ctx *gin.Context) {
	reg, err := h.svc.MyRegistration(ctx.Request.Context(), ctx.Param("id"), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleMyRegistration -> h.svc.MyRegistration", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithData(reg))
}

// HandleTicket godoc
// @Summary      Get the caller's ticket
// @Description  PNG QR code pointing at the caller's registration.
// @Tags         registrations
// @Produce      png
// @Param        id   path      string  true  "event ID"
// @Success      200  {file}    binary
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id}/ticket [get]
// @Security BearerAuth
func (h *EventHandler) HandleTicket(ctx *gin.Context) {
	png, err := h.tickets.Ticket(ctx.Request.Context(), ctx.Param("id"), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleTicket -> h.tickets.Ticket", err)
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}

// HandleExportRegistrations godoc
// @Summary      Export an event's registrations
// @Description  XLSX workbook. Owner or admin.
// @Tags         registrations
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path      string  true  "event ID"
// @Success      200  {file}    binary
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id}/registrations/export [get]
// @Security BearerAuth
func (h *EventHandler) HandleExportRegistrations(ctx *gin.Context) {
	eventID := ctx.Param("id")

	data, err := h.export.Registrations(ctx.Request.Context(), eventID, middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleExportRegistrations -> h.export.Registrations", err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="registrations-%s.xlsx"`, eventID))
	ctx.Data(http.StatusOK, xlsxContentType, data)
}

// HandleRecount godoc
// @Summary      Recount participants
// @Description  Resets participantCount to the number of stored registrations. Admin only.
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "event ID"
// @Success      200  {object}  response.EventBody
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id}/recount [post]
// @Security BearerAuth
func (h *EventHandler) HandleRecount(ctx *gin.Context) {
	event, err := h.svc.RecountParticipants(ctx.Request.Context(), ctx.Param("id"), middleware.CallerFromContext(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleRecount -> h.svc.RecountParticipants", err)
		return
	}

	ctx.JSON(http.StatusOK, response.WithData(event))
}
