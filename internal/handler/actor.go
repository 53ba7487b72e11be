package handler

import (
	"net/http"

	"visitepulse/internal/service"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentActor rebuilds the authenticated identity from the claims the auth
// middleware stored in the gin context. Aborts with 401 when absent.
func currentActor(c *gin.Context) (service.Actor, bool) {
	rawID, ok := c.Get("userID")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return service.Actor{}, false
	}

	idStr, _ := rawID.(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid User ID format"))
		return service.Actor{}, false
	}

	email := c.GetString("userEmail")
	role := c.GetString("userRole")

	return service.Actor{ID: id, Email: email, Role: role}, true
}

// respondError maps a typed service error to its HTTP status and envelope.
func respondError(c *gin.Context, err error) {
	status, body := response.FromError(err)
	c.JSON(status, body)
}
