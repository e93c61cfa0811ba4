// api/middleware/auth_gate.go
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/token"
	"github.com/dev-mohitbeniwal/agentguard/util"
	"go.uber.org/zap"
)

// Identity kinds the gate can resolve a request to, per spec.md §4.K.
const (
	KindAgent  = "agent"
	KindAdmin  = "admin"
	KindPublic = "public"
)

// Identity is what the Auth Gate attaches to the request context; every
// downstream handler that needs authorization consults this instead of
// re-parsing the token or key header.
type Identity struct {
	Kind      string
	SubjectID string
	Role      model.AdminRole
	Team      string
	Env       string
}

const identityContextKey = "agentguard.identity"

// GetIdentity reads the Identity the gate attached to c. Handlers reachable
// only through AuthGate can assume it is always present.
func GetIdentity(c *gin.Context) Identity {
	v, _ := c.Get(identityContextKey)
	id, _ := v.(Identity)
	return id
}

// SetIdentity attaches id to c the same way AuthGate does. Exported for
// handler tests that need to exercise a route without running the gate.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityContextKey, id)
}

// AuthGate implements spec.md §4.K: it accepts either a bearer token or a
// legacy static-key header, bearer taking precedence, and resolves the
// caller to an Identity. A bare static admin key matching the process-wide
// shared secret grants implicit super-admin with team = "*" and no database
// row. Missing or invalid credentials abort the chain with 401.
func AuthGate(
	keyStore *token.KeyStore,
	adminDAO *dao.AdminUserDAO,
	agentDAO *dao.AgentDAO,
	credentialDAO *dao.AgentCredentialDAO,
	revokedDAO *dao.RevokedTokenDAO,
	cacheService *util.CacheService,
	processAdminKey string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolveIdentity(c, keyStore, adminDAO, agentDAO, credentialDAO, revokedDAO, cacheService, processAdminKey)
		if err != nil {
			status, message := classifyAuthError(err)
			util.RespondWithError(c, status, message, err)
			c.Abort()
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

func resolveIdentity(
	c *gin.Context,
	keyStore *token.KeyStore,
	adminDAO *dao.AdminUserDAO,
	agentDAO *dao.AgentDAO,
	credentialDAO *dao.AgentCredentialDAO,
	revokedDAO *dao.RevokedTokenDAO,
	cacheService *util.CacheService,
	processAdminKey string,
) (Identity, error) {
	if authz := c.GetHeader("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		raw := strings.TrimPrefix(authz, "Bearer ")
		claims, err := keyStore.Verify(raw, func(jti string) bool {
			ctx := c.Request.Context()
			if revoked, cacheErr := cacheService.IsTokenRevoked(ctx, jti); cacheErr == nil && revoked {
				return true
			}
			// Cache miss or error: the Redis entry may have been evicted
			// before the token's own expiry, so fall back to the durable
			// Neo4j revocation set rather than treat a miss as "not revoked".
			revoked, err := revokedDAO.IsRevoked(ctx, jti)
			if err != nil {
				logger.Warn("durable revocation lookup failed, treating token as not revoked", zap.Error(err))
				return false
			}
			return revoked
		})
		if err != nil {
			return Identity{}, err
		}
		return Identity{
			Kind:      claims.Type,
			SubjectID: claims.Subject,
			Role:      model.AdminRole(claims.Role),
			Team:      claims.Team,
			Env:       claims.Env,
		}, nil
	}

	if key := c.GetHeader("x-admin-key"); key != "" {
		return resolveAdminKey(c, adminDAO, key, processAdminKey)
	}

	if key := c.GetHeader("x-agent-key"); key != "" {
		return resolveAgentKey(c, agentDAO, credentialDAO, key)
	}

	return Identity{}, echo_errors.ErrUnauthorized
}

func resolveAdminKey(c *gin.Context, adminDAO *dao.AdminUserDAO, key, processAdminKey string) (Identity, error) {
	if processAdminKey != "" && secureCompare(key, processAdminKey) {
		return Identity{Kind: KindAdmin, SubjectID: "super-admin", Role: model.RoleSuperAdmin, Team: "*"}, nil
	}

	if len(key) < 8 {
		return Identity{}, echo_errors.ErrUnauthorized
	}
	admin, err := adminDAO.GetByKeyPrefix(c.Request.Context(), key[:8])
	if err != nil || !admin.IsActive || !util.VerifySecret(key, admin.CredentialHash) {
		return Identity{}, echo_errors.ErrUnauthorized
	}
	return Identity{Kind: KindAdmin, SubjectID: admin.AdminID, Role: admin.Role, Team: admin.Team}, nil
}

func resolveAgentKey(c *gin.Context, agentDAO *dao.AgentDAO, credentialDAO *dao.AgentCredentialDAO, key string) (Identity, error) {
	if len(key) < 8 {
		return Identity{}, echo_errors.ErrUnauthorized
	}
	cred, err := credentialDAO.GetBySecretPrefix(c.Request.Context(), key[:8])
	if err != nil || !cred.IsActive || !util.VerifySecret(key, cred.SecretHash) {
		return Identity{}, echo_errors.ErrUnauthorized
	}
	agent, err := agentDAO.GetAgent(c.Request.Context(), cred.AgentID)
	if err != nil || !agent.IsActive {
		return Identity{}, echo_errors.ErrUnauthorized
	}
	return Identity{Kind: KindAgent, SubjectID: agent.AgentID, Team: agent.OwnerTeam, Env: agent.Environment}, nil
}

// secureCompare is a constant-time equality check so static-key comparison
// does not leak timing information about how much of the key matched.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func classifyAuthError(err error) (int, string) {
	switch err {
	case echo_errors.ErrTokenExpired, echo_errors.ErrTokenInvalid, echo_errors.ErrTokenRevoked:
		return http.StatusUnauthorized, "invalid or expired token"
	default:
		return http.StatusUnauthorized, "unauthorized"
	}
}

// RequireKind aborts with 403 unless the resolved identity is of the given
// kind, e.g. protecting an agent-only endpoint from an admin token.
func RequireKind(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id.Kind != kind {
			util.RespondWithError(c, http.StatusForbidden, kind+" token required", echo_errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyKind aborts with 403 unless the resolved identity matches one of
// the given kinds, for endpoints an agent or an admin may both call.
func RequireAnyKind(kinds ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		for _, k := range kinds {
			if id.Kind == k {
				c.Next()
				return
			}
		}
		util.RespondWithError(c, http.StatusForbidden, "forbidden", echo_errors.ErrForbidden)
		c.Abort()
	}
}

// RequireRole aborts with 403 unless the resolved identity is an admin whose
// role meets the minimum, per spec.md §4.K and model.AdminUser.RoleAtLeast.
func RequireRole(min model.AdminRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		admin := model.AdminUser{Role: id.Role}
		if id.Kind != KindAdmin || !admin.RoleAtLeast(min) {
			util.RespondWithError(c, http.StatusForbidden, "insufficient role", echo_errors.ErrInsufficientRole)
			c.Abort()
			return
		}
		c.Next()
	}
}
