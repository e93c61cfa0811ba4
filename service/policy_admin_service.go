// api/service/policy_admin_service.go
package service

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// PolicyAdminService is the write-side of the policy store the Decision
// Engine reads from at enforce time: every mutation invalidates the
// corresponding cache entry so the next lookup is never stale.
type PolicyAdminService struct {
	agentPolicyDAO  *dao.AgentPolicyDAO
	teamPolicyDAO   *dao.TeamPolicyDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

func NewPolicyAdminService(
	agentPolicyDAO *dao.AgentPolicyDAO,
	teamPolicyDAO *dao.TeamPolicyDAO,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *PolicyAdminService {
	return &PolicyAdminService{
		agentPolicyDAO:  agentPolicyDAO,
		teamPolicyDAO:   teamPolicyDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

func (s *PolicyAdminService) SetAgentPolicy(ctx context.Context, policy model.AgentPolicy) (*model.AgentPolicy, error) {
	if err := s.validationUtil.ValidateAgentPolicy(policy); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	policy.UpdatedAt = now
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = now
	}

	saved, err := s.agentPolicyDAO.UpsertAgentPolicy(ctx, policy)
	if err != nil {
		return nil, err
	}
	if err := s.cacheService.DeleteAgentPolicy(ctx, policy.AgentID); err != nil {
		return nil, err
	}
	if err := s.notificationSvc.NotifyAgentPolicyChange(ctx, "updated", *saved); err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, "agent_policy.updated", *saved)
	return saved, nil
}

func (s *PolicyAdminService) GetAgentPolicy(ctx context.Context, agentID string) (*model.AgentPolicy, error) {
	return s.agentPolicyDAO.GetAgentPolicy(ctx, agentID)
}

func (s *PolicyAdminService) DeleteAgentPolicy(ctx context.Context, agentID string) error {
	if err := s.agentPolicyDAO.DeleteAgentPolicy(ctx, agentID); err != nil {
		return err
	}
	if err := s.cacheService.DeleteAgentPolicy(ctx, agentID); err != nil {
		return err
	}
	return s.notificationSvc.NotifyAgentPolicyChange(ctx, "deleted", model.AgentPolicy{AgentID: agentID})
}

func (s *PolicyAdminService) SetTeamPolicy(ctx context.Context, policy model.TeamPolicy) (*model.TeamPolicy, error) {
	if err := s.validationUtil.ValidateTeamPolicy(policy); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	policy.UpdatedAt = now
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = now
	}

	saved, err := s.teamPolicyDAO.UpsertTeamPolicy(ctx, policy)
	if err != nil {
		return nil, err
	}
	if err := s.cacheService.DeleteTeamPolicy(ctx, policy.Team); err != nil {
		return nil, err
	}
	if err := s.notificationSvc.NotifyTeamPolicyChange(ctx, "updated", *saved); err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, "team_policy.updated", *saved)
	return saved, nil
}

func (s *PolicyAdminService) GetTeamPolicy(ctx context.Context, team string) (*model.TeamPolicy, error) {
	return s.teamPolicyDAO.GetTeamPolicy(ctx, team)
}

func (s *PolicyAdminService) DeleteTeamPolicy(ctx context.Context, team string) error {
	if err := s.teamPolicyDAO.DeleteTeamPolicy(ctx, team); err != nil {
		return err
	}
	if err := s.cacheService.DeleteTeamPolicy(ctx, team); err != nil {
		return err
	}
	return s.notificationSvc.NotifyTeamPolicyChange(ctx, "deleted", model.TeamPolicy{Team: team})
}
