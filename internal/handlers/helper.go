package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// currentUserID returns the user set by the auth middleware. It writes a
// 401 and returns false when there is none.
func currentUserID(c *gin.Context) (string, bool) {
	if v, exists := c.Get(userIDKey); exists {
		if userID, ok := v.(string); ok && userID != "" {
			return userID, true
		}
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Message: "User not authenticated",
	})
	return "", false
}
