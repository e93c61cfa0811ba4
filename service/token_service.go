// api/service/token_service.go
package service

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/token"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// TokenService is the Token Signer/Verifier's service-layer face (spec.md
// §4.D/§4.E): it exchanges a static key for a bearer token and revokes a
// bearer token by jti.
type TokenService struct {
	keyStore       *token.KeyStore
	agentDAO       *dao.AgentDAO
	credentialDAO  *dao.AgentCredentialDAO
	adminDAO       *dao.AdminUserDAO
	revokedDAO     *dao.RevokedTokenDAO
	cacheService   *util.CacheService
	agentTTL       time.Duration
	adminTTL       time.Duration
	processAdminKey string
}

func NewTokenService(
	keyStore *token.KeyStore,
	agentDAO *dao.AgentDAO,
	credentialDAO *dao.AgentCredentialDAO,
	adminDAO *dao.AdminUserDAO,
	revokedDAO *dao.RevokedTokenDAO,
	cacheService *util.CacheService,
	agentTTL, adminTTL time.Duration,
	processAdminKey string,
) *TokenService {
	return &TokenService{
		keyStore:        keyStore,
		agentDAO:        agentDAO,
		credentialDAO:   credentialDAO,
		adminDAO:        adminDAO,
		revokedDAO:      revokedDAO,
		cacheService:    cacheService,
		agentTTL:        agentTTL,
		adminTTL:        adminTTL,
		processAdminKey: processAdminKey,
	}
}

// IssuedToken is the POST /token response shape of spec.md §6.
type IssuedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// IssueForAgentKey exchanges a static agent secret for an agent bearer
// token, per spec.md §4.D.
func (s *TokenService) IssueForAgentKey(ctx context.Context, agentKey string) (*IssuedToken, error) {
	if len(agentKey) < 8 {
		return nil, echo_errors.ErrUnauthorized
	}
	cred, err := s.credentialDAO.GetBySecretPrefix(ctx, agentKey[:8])
	if err != nil || !cred.IsActive || !util.VerifySecret(agentKey, cred.SecretHash) {
		return nil, echo_errors.ErrUnauthorized
	}
	agent, err := s.agentDAO.GetAgent(ctx, cred.AgentID)
	if err != nil || !agent.IsActive {
		return nil, echo_errors.ErrUnauthorized
	}

	signed, _, err := s.keyStore.Sign(agent.AgentID, token.TypeAgent, agent.Environment, agent.OwnerTeam, "", s.agentTTL)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{AccessToken: signed, TokenType: "bearer", ExpiresIn: int(s.agentTTL.Seconds())}, nil
}

// IssueForAdminKey exchanges a static admin secret (a named AdminUser's key
// or the process-wide shared secret) for an admin bearer token.
func (s *TokenService) IssueForAdminKey(ctx context.Context, adminKey string) (*IssuedToken, error) {
	if s.processAdminKey != "" && adminKey == s.processAdminKey {
		signed, _, err := s.keyStore.Sign("super-admin", token.TypeAdmin, "", "*", string(model.RoleSuperAdmin), s.adminTTL)
		if err != nil {
			return nil, err
		}
		return &IssuedToken{AccessToken: signed, TokenType: "bearer", ExpiresIn: int(s.adminTTL.Seconds())}, nil
	}

	if len(adminKey) < 8 {
		return nil, echo_errors.ErrUnauthorized
	}
	admin, err := s.adminDAO.GetByKeyPrefix(ctx, adminKey[:8])
	if err != nil || !admin.IsActive || !util.VerifySecret(adminKey, admin.CredentialHash) {
		return nil, echo_errors.ErrUnauthorized
	}

	signed, _, err := s.keyStore.Sign(admin.AdminID, token.TypeAdmin, "", admin.Team, string(admin.Role), s.adminTTL)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{AccessToken: signed, TokenType: "bearer", ExpiresIn: int(s.adminTTL.Seconds())}, nil
}

// Revoke parses rawToken just enough to learn its jti and expiry, then adds
// it to the revocation set (component E), both durably and in the hot
// cache so the next request sees it immediately.
func (s *TokenService) Revoke(ctx context.Context, rawToken string) error {
	claims, err := s.keyStore.Verify(rawToken, nil)
	if err != nil {
		return err
	}

	expiresAt := time.Unix(claims.ExpiresAt, 0).UTC()
	if err := s.revokedDAO.Revoke(ctx, model.RevokedToken{
		JTI:       claims.JTI,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}); err != nil {
		return echo_errors.ErrRevocationWriteFailed
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.cacheService.SetRevokedToken(ctx, claims.JTI, ttl)
}
