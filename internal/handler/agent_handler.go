package handler

import (
	"net/http"
	"time"

	"visitepulse/internal/middleware"
	"visitepulse/internal/model"
	"visitepulse/internal/rbac"
	"visitepulse/internal/service"
	"visitepulse/pkg/pagination"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AgentHandler is the front-desk surface: access code lookup, check-in and
// check-out, walk-ins and on-site appointment registration.
type AgentHandler struct {
	visitService       service.VisitService
	appointmentService service.AppointmentService
}

func NewAgentHandler(visitService service.VisitService, appointmentService service.AppointmentService) *AgentHandler {
	return &AgentHandler{visitService: visitService, appointmentService: appointmentService}
}

func (h *AgentHandler) RegisterRoutes(router *gin.RouterGroup) {
	agent := router.Group("/agent", middleware.RequireRole(rbac.RoleAgent, rbac.RoleAdmin))
	{
		agent.GET("/appointments/search", h.SearchByCode)
		agent.POST("/appointments/onsite", h.CreateOnSite)
		agent.POST("/visits/checkin", h.CheckIn)
		agent.PUT("/visits/:id/checkout", h.CheckOut)
		agent.GET("/visits/active", h.ListActive)
		agent.GET("/visits", h.ListVisits)
	}
}

// visitView adds the running or final duration to a visit row.
type visitView struct {
	Visit           *model.Visit `json:"visit"`
	DurationMinutes int64        `json:"duration_minutes"`
}

// SearchByCode resolves an approved appointment from its access code
// @Summary      Find appointment by access code
// @Tags         agent
// @Produce      json
// @Security     BearerAuth
// @Param        code  query     string  true  "Access code"
// @Success      200   {object}  response.Response{data=model.Appointment}
// @Failure      404   {object}  response.Response
// @Router       /agent/appointments/search [get]
func (h *AgentHandler) SearchByCode(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetByCode(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, viewFor(appt, actor.Role)))
}

// CreateOnSite registers a walk-up appointment, approved and checked in at once
// @Summary      Register an on-site appointment
// @Description  Creates an appointment for a visitor at the desk; it is approved immediately, carries no access code, and the visit opens in the same transaction
// @Tags         agent
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OnSiteAppointmentRequest  true  "On-site Appointment"
// @Success      201      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /agent/appointments/onsite [post]
func (h *AgentHandler) CreateOnSite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.OnSiteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appt, visit, err := h.appointmentService.CreateOnSite(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, map[string]interface{}{
		"appointment": appt,
		"visit":       visit,
	}))
}

// CheckIn opens a visit for an approved appointment or a walk-in
// @Summary      Check a visitor in
// @Description  Opens a visit from an approved appointment plus its access code, or as a walk-in when no appointment is referenced
// @Tags         agent
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CheckInRequest  true  "Check-in Payload"
// @Success      201      {object}  response.Response{data=model.Visit}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /agent/visits/checkin [post]
func (h *AgentHandler) CheckIn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	visit, err := h.visitService.CheckIn(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, visit))
}

// CheckOut closes an open visit; a bound appointment becomes COMPLETED
// @Summary      Check a visitor out
// @Tags         agent
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Visit ID"
// @Success      200  {object}  response.Response{data=model.Visit}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /agent/visits/{id}/checkout [put]
func (h *AgentHandler) CheckOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid visit ID"))
		return
	}

	visit, err := h.visitService.CheckOut(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visitView{
		Visit:           visit,
		DurationMinutes: service.DurationMinutes(visit, time.Now()),
	}))
}

// ListActive returns all visits currently on site with running durations
func (h *AgentHandler) ListActive(c *gin.Context) {
	visits, err := h.visitService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	views := make([]visitView, 0, len(visits))
	for i := range visits {
		views = append(views, visitView{
			Visit:           &visits[i],
			DurationMinutes: service.DurationMinutes(&visits[i], now),
		})
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, views))
}

// ListVisits returns the paginated visit history, or a single day when
// ?date=YYYY-MM-DD is given
func (h *AgentHandler) ListVisits(c *gin.Context) {
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD"))
			return
		}
		visits, listErr := h.visitService.ListByDate(c.Request.Context(), date)
		if listErr != nil {
			respondError(c, listErr)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, visits))
		return
	}

	p := pagination.Parse(c)
	visits, total, err := h.visitService.History(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"visits":     visits,
		"pagination": p.MetaFor(total),
	}))
}
