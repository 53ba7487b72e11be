package handler

import (
	"net/http"
	"time"

	"visitepulse/internal/middleware"
	"visitepulse/internal/rbac"
	"visitepulse/internal/service"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/statistics", middleware.RequireRole(rbac.RoleSecretary, rbac.RoleAdmin))
	{
		statsGroup.GET("/departments", h.VisitsByDepartment)
		statsGroup.GET("/duration", h.AverageDuration)
		statsGroup.GET("/visits", h.DetailedVisits)
		statsGroup.GET("/admin", middleware.RequireRole(rbac.RoleAdmin), h.AdminStats)
	}
}

// VisitsByDepartment returns visit counts grouped by department
// @Summary      Visits per department
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.DepartmentStat}
// @Router       /statistics/departments [get]
func (h *StatisticsHandler) VisitsByDepartment(c *gin.Context) {
	stats, err := h.statisticsService.VisitsByDepartment(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// AverageDuration returns average/min/max presence time over closed visits
// @Summary      Visit duration statistics
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.DurationStats}
// @Router       /statistics/duration [get]
func (h *StatisticsHandler) AverageDuration(c *gin.Context) {
	stats, err := h.statisticsService.AverageDuration(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// AdminStats returns the admin dashboard counters
// @Summary      Admin dashboard counters
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.AdminStats}
// @Router       /statistics/admin [get]
func (h *StatisticsHandler) AdminStats(c *gin.Context) {
	stats, err := h.statisticsService.AdminStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// DetailedVisits returns visit rows inside a reporting window
// @Summary      Visit report
// @Description  Returns visits bounded by from/to dates (YYYY-MM-DD), newest first
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD, exclusive)"
// @Success      200   {object}  response.Response{data=[]model.Visit}
// @Failure      400   {object}  response.Response
// @Router       /statistics/visits [get]
func (h *StatisticsHandler) DetailedVisits(c *gin.Context) {
	var from, to time.Time
	var err error

	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD"))
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD"))
			return
		}
	}

	visits, err := h.statisticsService.DetailedVisits(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, visits))
}
