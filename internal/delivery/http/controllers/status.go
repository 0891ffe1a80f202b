package controllers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// Check reports the health of one backend.
type Check func(ctx context.Context) error

type StatusHandler struct {
	checks map[string]Check
}

func NewStatusHandler(checks map[string]Check) *StatusHandler {
	return &StatusHandler{checks: checks}
}

func (h *StatusHandler) Status(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "Available"
	code := http.StatusOK
	backends := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](c.Request.Context()); err != nil {
			backends[name] = err.Error()
			status = "Degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		backends[name] = "ok"
	}

	body := gin.H{"status": status}
	if len(backends) > 0 {
		body["backends"] = backends
	}
	c.JSON(code, body)
}
