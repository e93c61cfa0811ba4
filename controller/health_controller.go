// api/controller/health_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/agentguard/db"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// HealthController exposes liveness/readiness probes and the in-process
// metrics export, per spec.md §6.
type HealthController struct {
	metrics *util.MetricsRegistry
}

func NewHealthController(metrics *util.MetricsRegistry) *HealthController {
	return &HealthController{metrics: metrics}
}

func (hc *HealthController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", hc.Health)
	r.GET("/health/ready", hc.Ready)
	r.GET("/health/live", hc.Live)
	r.GET("/metrics", hc.Metrics)
}

func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether this process can currently serve requests that
// touch Neo4j and Redis, the two dependencies every enforce call blocks on.
func (hc *HealthController) Ready(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if err := db.Neo4jDriver.VerifyConnectivity(); err != nil {
		checks["neo4j"] = err.Error()
		ready = false
	} else {
		checks["neo4j"] = "ok"
	}

	if _, err := db.RedisClient.Ping(c.Request.Context()).Result(); err != nil {
		checks["redis"] = err.Error()
		ready = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}

// Live reports whether the process itself is running; it never touches a
// dependency, so it can't be dragged down by a dependency outage.
func (hc *HealthController) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"live": true})
}

func (hc *HealthController) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, hc.metrics.Snapshot())
}
