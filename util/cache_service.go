// api/util/cache_service.go

package util

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/db"
	"github.com/dev-mohitbeniwal/agentguard/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetAgentPolicy(ctx context.Context, agentID string) (*model.AgentPolicy, error) {
	return db.GetCachedAgentPolicy(ctx, agentID)
}

func (c *CacheService) SetAgentPolicy(ctx context.Context, policy model.AgentPolicy) error {
	return db.CacheAgentPolicy(ctx, &policy)
}

func (c *CacheService) DeleteAgentPolicy(ctx context.Context, agentID string) error {
	return db.DeleteCachedAgentPolicy(ctx, agentID)
}

func (c *CacheService) GetTeamPolicy(ctx context.Context, team string) (*model.TeamPolicy, error) {
	return db.GetCachedTeamPolicy(ctx, team)
}

func (c *CacheService) SetTeamPolicy(ctx context.Context, policy model.TeamPolicy) error {
	return db.CacheTeamPolicy(ctx, &policy)
}

func (c *CacheService) DeleteTeamPolicy(ctx context.Context, team string) error {
	return db.DeleteCachedTeamPolicy(ctx, team)
}

func (c *CacheService) SetRevokedToken(ctx context.Context, jti string, ttl time.Duration) error {
	return db.CacheRevokedToken(ctx, jti, ttl)
}

func (c *CacheService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return db.IsTokenRevokedInCache(ctx, jti)
}
