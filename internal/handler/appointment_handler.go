package handler

import (
	"net/http"

	"visitepulse/internal/middleware"
	"visitepulse/internal/model"
	"visitepulse/internal/rbac"
	"visitepulse/internal/service"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// RegisterRoutes binds the visitor-facing appointment endpoints
func (h *AppointmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	appointments := router.Group("/visitor/appointments", middleware.RequireRole(rbac.RoleVisitor))
	{
		appointments.POST("", h.Submit)
		appointments.GET("", h.ListMine)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.DELETE("/:id", h.Cancel)
	}
}

// appointmentView decorates an appointment with the actions the caller may
// take on it, so the UI renders affordances without guessing.
type appointmentView struct {
	*model.Appointment
	PermittedActions []string `json:"permitted_actions"`
}

func viewFor(appt *model.Appointment, role string) appointmentView {
	return appointmentView{
		Appointment:      appt,
		PermittedActions: rbac.PermittedActions(role, appt.Status),
	}
}

// Submit handles POST /visitor/appointments
// @Summary      Request an appointment
// @Description  Submits a new appointment request; it starts PENDING with no access code
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitAppointmentRequest  true  "Appointment Request"
// @Success      201      {object}  response.Response{data=model.Appointment}
// @Failure      400      {object}  response.Response
// @Router       /visitor/appointments [post]
func (h *AppointmentHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.SubmitAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appt, err := h.appointmentService.Submit(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, viewFor(appt, actor.Role)))
}

// ListMine handles GET /visitor/appointments
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appts, err := h.appointmentService.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]appointmentView, 0, len(appts))
	for i := range appts {
		views = append(views, viewFor(&appts[i], actor.Role))
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, views))
}

// Get handles GET /visitor/appointments/:id
// @Summary      Get own appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response{data=model.Appointment}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /visitor/appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid appointment ID"))
		return
	}

	appt, err := h.appointmentService.Get(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, viewFor(appt, actor.Role)))
}

// Update handles PUT /visitor/appointments/:id (owner, PENDING only)
func (h *AppointmentHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid appointment ID"))
		return
	}

	var req service.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	appt, err := h.appointmentService.Update(c.Request.Context(), id, actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, viewFor(appt, actor.Role)))
}

// Cancel handles DELETE /visitor/appointments/:id (owner, PENDING only)
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid appointment ID"))
		return
	}

	if err := h.appointmentService.Cancel(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Appointment cancelled"))
}
