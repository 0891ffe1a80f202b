package middleware

import (
	"errors"
	"net/http"
	"strings"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/delivery/http/controllers/response"
	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TokenVerifier interface {
	AccessClaims(token string) (*models.AccessTokenClaims, error)
}

type AuthMiddlewareProvider struct {
	log      logger.Log
	verifier TokenVerifier
}

func NewAuthMiddlewareProvider(log logger.Log, v TokenVerifier) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:      log,
		verifier: v,
	}
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("missing bearer token"))
		return
	}

	claims, err := h.verifier.AccessClaims(token)
	if err != nil {
		h.log.Debug("rejected access token", "error", err.Error())
		if errors.Is(err, app_errors.ErrTokenExpired) {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, app_errors.ErrTokenExpired)
			return
		}
		response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, app_errors.ErrInvalidToken)
		return
	}

	c.Set(PrincipalCtx, claims.Principal())
	c.Next()
}
