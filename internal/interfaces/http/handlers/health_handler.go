package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports the health of one infrastructure component.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function into a HealthChecker.
type CheckerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (c CheckerFunc) Name() string                    { return c.ComponentName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// ComponentCheck is the per-component readiness result.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
}

func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
	}
}

// RegisterRoutes mounts the probes at the router root.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// Liveness only confirms the process is up; it never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startAt).Round(time.Second).String(),
	})
}

// Readiness checks every wired dependency concurrently.  Any failure turns
// the probe 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]ComponentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	healthy := true

	for _, checker := range h.checkers {
		checker := checker
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			check := ComponentCheck{
				Status:  "ok",
				Latency: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				check.Status = "unhealthy"
				check.Error = err.Error()
			}
			mu.Lock()
			components[checker.Name()] = check
			if err != nil {
				healthy = false
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := http.StatusOK
	statusText := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		statusText = "not ready"
	}
	c.JSON(status, gin.H{
		"status":     statusText,
		"components": components,
	})
}
