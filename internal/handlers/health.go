package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Environment string            `json:"environment"`
}

// Health reports liveness of the API's backing services. Any failing
// dependency degrades the overall status and flips the response to 503
// so load balancers can pull the instance.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": h.checkDependency(ctx, "database", func(ctx context.Context) error {
			return h.db.Ping(ctx)
		}),
		"cache": h.checkDependency(ctx, "cache", func(ctx context.Context) error {
			return h.cache.Ping(ctx).Err()
		}),
	}

	status := "ok"
	code := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, healthResponse{
		Status:      status,
		Checks:      checks,
		Environment: h.cfg.Environment,
	})
}

func (h HandlerSet) checkDependency(ctx context.Context, name string, ping func(context.Context) error) string {
	if err := ping(ctx); err != nil {
		h.log.Error().Err(err).Str("dependency", name).Msg("health check failed")
		return "error"
	}
	return "ok"
}
