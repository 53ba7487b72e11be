package handler

import (
	"net/http"

	"visitepulse/internal/middleware"
	"visitepulse/internal/model"
	"visitepulse/internal/rbac"
	"visitepulse/internal/service"
	"visitepulse/pkg/pagination"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SecretaryHandler struct {
	appointmentService service.AppointmentService
}

func NewSecretaryHandler(appointmentService service.AppointmentService) *SecretaryHandler {
	return &SecretaryHandler{appointmentService: appointmentService}
}

// RegisterRoutes binds the review desk endpoints
func (h *SecretaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	secretary := router.Group("/secretary", middleware.RequireRole(rbac.RoleSecretary, rbac.RoleAdmin))
	{
		secretary.GET("/appointments", h.ListByStatus)
		secretary.GET("/appointments/today", h.ListTodayApproved)
		secretary.POST("/appointments/onsite", h.CreateOnSite)
		secretary.PUT("/appointments/:id/approve", h.Approve)
		secretary.PUT("/appointments/:id/reject", h.Reject)
	}
}

// ListByStatus returns appointments filtered by status, pending by default
// @Summary      List appointments for review
// @Tags         secretary
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter (default PENDING)"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response{data=object}
// @Router       /secretary/appointments [get]
func (h *SecretaryHandler) ListByStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := c.DefaultQuery("status", model.AppointmentPending)
	p := pagination.Parse(c)

	appts, total, err := h.appointmentService.ListByStatus(c.Request.Context(), status, p)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]appointmentView, 0, len(appts))
	for i := range appts {
		views = append(views, viewFor(&appts[i], actor.Role))
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"appointments": views,
		"pagination":   p.MetaFor(total),
	}))
}

// ListTodayApproved returns the approved appointments expected today
func (h *SecretaryHandler) ListTodayApproved(c *gin.Context) {
	appts, err := h.appointmentService.ListTodayApproved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}

// CreateOnSite registers a visitor already at the reception desk
// @Summary      Register an on-site appointment
// @Description  Creates an appointment for a visitor at the desk; it is approved immediately, carries no access code, and the visit opens in the same transaction
// @Tags         secretary
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OnSiteAppointmentRequest  true  "On-site Appointment"
// @Success      201      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /secretary/appointments/onsite [post]
func (h *SecretaryHandler) CreateOnSite(c *gin.Context) {
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

// Approve moves a pending appointment to APPROVED and issues its access code
// @Summary      Approve a pending appointment
// @Tags         secretary
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response{data=model.Appointment}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /secretary/appointments/{id}/approve [put]
func (h *SecretaryHandler) Approve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid appointment ID"))
		return
	}

	appt, err := h.appointmentService.Approve(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, viewFor(appt, actor.Role)))
}

// Reject moves a pending appointment to REJECTED with a required reason
// @Summary      Reject a pending appointment
// @Tags         secretary
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Appointment ID"
// @Param        payload  body      service.RejectAppointmentRequest  true  "Rejection Reason"
// @Success      200      {object}  response.Response{data=model.Appointment}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /secretary/appointments/{id}/reject [put]
func (h *SecretaryHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid appointment ID"))
		return
	}

	var req service.RejectAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Reason presence is validated by the service
		req.Reason = ""
	}

	appt, err := h.appointmentService.Reject(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, viewFor(appt, actor.Role)))
}
