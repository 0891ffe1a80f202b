package middleware

import (
	"errors"
	"net/http"

	"LearnForge/internal/delivery/http/controllers/response"

	"github.com/gin-gonic/gin"
)

func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, exists := Principal(c)
		if !exists {
			response.RespondError(c, http.StatusForbidden, response.CodeForbidden, errors.New("roles not found"))
			return
		}

		for _, role := range principal.Roles {
			if _, allowed := roleSet[role]; allowed {
				c.Next()
				return
			}
		}
		response.RespondError(c, http.StatusForbidden, response.CodeForbidden, errors.New("insufficient permissions"))
	}
}
