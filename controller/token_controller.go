// api/controller/token_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/token"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// TokenController exposes the static-key-to-bearer-token exchange, token
// revocation, and the public JWKS document (spec.md §4.D/§4.E/§6).
type TokenController struct {
	tokenService *service.TokenService
	keyStore     *token.KeyStore
}

func NewTokenController(tokenService *service.TokenService, keyStore *token.KeyStore) *TokenController {
	return &TokenController{tokenService: tokenService, keyStore: keyStore}
}

func (tc *TokenController) RegisterRoutes(r *gin.RouterGroup, authGate gin.HandlerFunc) {
	r.POST("/token", tc.IssueToken)
	r.POST("/token/revoke", authGate, tc.RevokeToken)
	r.GET("/.well-known/jwks.json", tc.JWKS)
}

type issueTokenRequest struct {
	AgentKey string `json:"agent_key"`
	AdminKey string `json:"admin_key"`
}

// IssueToken implements POST /token: agent_key is used when set, otherwise
// admin_key; a request with neither is rejected with 422.
func (tc *TokenController) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	var (
		issued *service.IssuedToken
		err    error
	)
	switch {
	case req.AgentKey != "":
		issued, err = tc.tokenService.IssueForAgentKey(c.Request.Context(), req.AgentKey)
	case req.AdminKey != "":
		issued, err = tc.tokenService.IssueForAdminKey(c.Request.Context(), req.AdminKey)
	default:
		util.RespondWithError(c, http.StatusUnprocessableEntity, "agent_key or admin_key is required", echo_errors.ErrInvalidPolicyData)
		return
	}

	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	c.JSON(http.StatusOK, issued)
}

type revokeTokenRequest struct {
	Token string `json:"token"`
}

// RevokeToken implements POST /token/revoke. The caller's own bearer token
// is revoked unless a different token is named in the body.
func (tc *TokenController) RevokeToken(c *gin.Context) {
	raw := bearerToken(c)
	var body revokeTokenRequest
	if err := c.ShouldBindJSON(&body); err == nil && body.Token != "" {
		raw = body.Token
	}
	if raw == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "unauthorized", echo_errors.ErrUnauthorized)
		return
	}

	if err := tc.tokenService.Revoke(c.Request.Context(), raw); err != nil {
		if errors.Is(err, echo_errors.ErrTokenExpired) || errors.Is(err, echo_errors.ErrTokenInvalid) {
			util.RespondWithError(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to revoke token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": true})
}

func (tc *TokenController) JWKS(c *gin.Context) {
	c.JSON(http.StatusOK, tc.keyStore.JWKS())
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	authz := c.GetHeader("Authorization")
	if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
		return authz[len(prefix):]
	}
	return ""
}
