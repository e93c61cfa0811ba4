// api/middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/agentguard/config"
	"github.com/dev-mohitbeniwal/agentguard/db"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
)

// Bucket names and default limits from spec.md §4.F. Each bucket's identity
// key is derived from the request's resolved Identity, falling back to the
// client IP for unauthenticated callers.
type Bucket struct {
	Name  string
	Limit int
	Per   time.Duration
}

var (
	BucketEnforce    = Bucket{Name: "enforce", Limit: 1000, Per: time.Minute}
	BucketLogs       = Bucket{Name: "logs", Limit: 1000, Per: time.Minute}
	BucketAdminWrite = Bucket{Name: "admin-write", Limit: 50, Per: time.Hour}
	BucketAdminRead  = Bucket{Name: "admin-read", Limit: 200, Per: time.Hour}
	BucketPublic     = Bucket{Name: "public", Limit: 100, Per: time.Minute}
)

// RateLimit admits or rejects a request against one of the buckets above,
// keyed by agent_id/admin_id when AuthGate has already resolved an
// Identity, or by client IP otherwise. Over-limit responses carry
// retry_after in seconds, per spec.md §7. When rate_limit_enabled is false
// every request is admitted.
func RateLimit(bucket Bucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg := config.GetConfig(); cfg != nil && !cfg.RateLimit.Enabled {
			c.Next()
			return
		}

		key := identityKey(c, bucket)

		allowed, err := db.RateLimit(c.Request.Context(), bucket.Name+":"+key, bucket.Limit, bucket.Per)
		if err != nil {
			logger.Error("rate limiting failed", zap.Error(err), zap.String("bucket", bucket.Name), zap.String("key", key))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "rate limiting unavailable"})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(bucket.Limit))
		c.Header("X-RateLimit-Bucket", bucket.Name)

		if !allowed {
			retryAfter := int(bucket.Per.Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logger.Warn("rate limit exceeded", zap.String("bucket", bucket.Name), zap.String("key", key))
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "rate limit exceeded", "retry_after": retryAfter})
			c.Abort()
			return
		}

		c.Next()
	}
}

func identityKey(c *gin.Context, bucket Bucket) string {
	id := GetIdentity(c)
	switch bucket.Name {
	case BucketAdminWrite.Name, BucketAdminRead.Name:
		if id.SubjectID != "" {
			return id.SubjectID
		}
	case BucketLogs.Name:
		if id.SubjectID != "" {
			return id.SubjectID
		}
	case BucketEnforce.Name:
		if id.SubjectID != "" {
			return id.SubjectID
		}
	}
	return c.ClientIP()
}
