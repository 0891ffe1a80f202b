package middleware

import (
	"LearnForge/internal/models"

	"github.com/gin-gonic/gin"
)

const PrincipalCtx = "principal"

// Principal returns the authenticated caller stored by AuthMiddleware.
func Principal(c *gin.Context) (models.Principal, bool) {
	raw, ok := c.Get(PrincipalCtx)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := raw.(models.Principal)
	return p, ok
}
