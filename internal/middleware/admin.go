package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
)

// RequireAdmin guards the admin route group. The services behind it re-check
// the caller's role themselves, so this is a fast-fail, not the only gate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || !rd.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
