package handler

import (
	"net/http"

	"visitepulse/internal/middleware"
	"visitepulse/internal/rbac"
	"visitepulse/internal/service"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler serves hosts their own visitor schedule.
type EmployeeHandler struct {
	appointmentService service.AppointmentService
}

func NewEmployeeHandler(appointmentService service.AppointmentService) *EmployeeHandler {
	return &EmployeeHandler{appointmentService: appointmentService}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	employee := router.Group("/employee", middleware.RequireRole(rbac.RoleEmployee, rbac.RoleAdmin))
	{
		employee.GET("/appointments/today", h.listWindow("today"))
		employee.GET("/appointments/upcoming", h.listWindow("upcoming"))
		employee.GET("/appointments/history", h.listWindow("history"))
		employee.GET("/stats", h.Stats)
	}
}

func (h *EmployeeHandler) listWindow(window string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}

		appts, err := h.appointmentService.ListForHost(c.Request.Context(), actor, window)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
	}
}

// Stats returns the host's appointment counters for the dashboard header
// @Summary      Host appointment counters
// @Tags         employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.EmployeeStats}
// @Router       /employee/stats [get]
func (h *EmployeeHandler) Stats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.appointmentService.HostStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
