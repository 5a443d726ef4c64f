package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkenlabs/identity-api/internal/container"
	"github.com/arkenlabs/identity-api/internal/interface/middleware"
)

type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/health", rl, func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := http.StatusOK
		if pool := container.GetPGPool(); pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				status["status"] = "degraded"
				status["postgres"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		if rdb := container.GetRedis(); rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, status)
	})

	// Public metrics endpoint (expvar), rate-limited per IP
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
