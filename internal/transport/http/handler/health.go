package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// DependencyCheck reports whether one backing service is reachable.
type DependencyCheck func(ctx context.Context) error

// Dependency is a named check. An optional dependency that fails degrades
// the report without failing it.
type Dependency struct {
	Check    DependencyCheck
	Optional bool
}

type HealthHandler struct {
	appName   string
	env       string
	startedAt time.Time
	deps      map[string]Dependency
}

type dependencyStatus struct {
	OK       bool   `json:"ok"`
	Optional bool   `json:"optional,omitempty"`
	Message  string `json:"message,omitempty"`
}

func NewHealthHandler(appName, env string, startedAt time.Time, deps map[string]Dependency) *HealthHandler {
	return &HealthHandler{
		appName:   appName,
		env:       env,
		startedAt: startedAt,
		deps:      deps,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	overall := "ok"
	statusCode := http.StatusOK
	deps := make(gin.H, len(names))
	for _, name := range names {
		dep := h.deps[name]
		status := dependencyStatus{OK: true, Optional: dep.Optional}
		if err := dep.Check(ctx); err != nil {
			status.OK = false
			status.Message = err.Error()
			if dep.Optional {
				if overall == "ok" {
					overall = "degraded"
				}
			} else {
				overall = "down"
				statusCode = http.StatusServiceUnavailable
			}
		}
		deps[name] = status
	}

	c.JSON(statusCode, gin.H{
		"app":          h.appName,
		"env":          h.env,
		"status":       overall,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": deps,
	})
}
