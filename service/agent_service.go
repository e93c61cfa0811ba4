// api/service/agent_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// AgentService handles agent lifecycle and credential issuance, per
// spec.md §3's Agent/AgentCredential entities.
type AgentService struct {
	agentDAO       *dao.AgentDAO
	credentialDAO  *dao.AgentCredentialDAO
	validationUtil *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus       *util.EventBus
}

func NewAgentService(
	agentDAO *dao.AgentDAO,
	credentialDAO *dao.AgentCredentialDAO,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *AgentService {
	return &AgentService{
		agentDAO:        agentDAO,
		credentialDAO:   credentialDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// CreateAgent registers a new agent and immediately issues its first
// credential. The raw secret is returned once; only AgentService and the
// caller ever see it.
func (s *AgentService) CreateAgent(ctx context.Context, agent model.Agent) (*model.Agent, string, error) {
	agent.AgentID = "agt_" + uuid.NewString()
	agent.IsActive = true
	now := time.Now().UTC()
	agent.CreatedAt, agent.UpdatedAt = now, now

	if err := s.validationUtil.ValidateAgent(agent); err != nil {
		return nil, "", err
	}

	if _, err := s.agentDAO.CreateAgent(ctx, agent); err != nil {
		return nil, "", err
	}

	rawSecret, hash, prefix, err := util.GenerateSecret()
	if err != nil {
		return nil, "", err
	}
	cred := model.AgentCredential{
		AgentID:      agent.AgentID,
		SecretHash:   hash,
		SecretPrefix: prefix,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := s.credentialDAO.CreateCredential(ctx, cred); err != nil {
		return nil, "", err
	}

	s.eventBus.Publish(ctx, "agent.created", agent)
	return &agent, rawSecret, nil
}

func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	return s.agentDAO.GetAgent(ctx, agentID)
}

func (s *AgentService) SearchAgents(ctx context.Context, criteria model.AgentSearchCriteria) ([]*model.Agent, error) {
	return s.agentDAO.SearchAgents(ctx, criteria)
}

// DeactivateAgent implements the soft-delete lifecycle of spec.md §3: the
// agent row survives, its credentials no longer authenticate, policy and
// audit history are retained.
func (s *AgentService) DeactivateAgent(ctx context.Context, agentID string) error {
	creds, err := s.credentialDAO.ListForAgent(ctx, agentID)
	if err != nil {
		return err
	}
	for _, cred := range creds {
		if cred.IsActive {
			if err := s.credentialDAO.RevokeCredential(ctx, cred.SecretPrefix); err != nil {
				return err
			}
			if notifyErr := s.notificationSvc.NotifyAgentCredentialRevoked(ctx, agentID, cred.SecretPrefix); notifyErr != nil {
				return notifyErr
			}
		}
	}

	agent, err := s.agentDAO.GetAgent(ctx, agentID)
	if err != nil {
		return err
	}
	agent.IsActive = false
	agent.UpdatedAt = time.Now().UTC()
	if _, err := s.agentDAO.UpdateAgent(ctx, *agent); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, "agent.deactivated", *agent)
	return nil
}

// RotateCredential revokes every active credential for the agent and issues
// a fresh one, for callers that need a new secret without a full
// deactivate/recreate cycle.
func (s *AgentService) RotateCredential(ctx context.Context, agentID string) (string, error) {
	creds, err := s.credentialDAO.ListForAgent(ctx, agentID)
	if err != nil {
		return "", err
	}
	for _, cred := range creds {
		if cred.IsActive {
			if err := s.credentialDAO.RevokeCredential(ctx, cred.SecretPrefix); err != nil {
				return "", err
			}
		}
	}

	rawSecret, hash, prefix, err := util.GenerateSecret()
	if err != nil {
		return "", err
	}
	cred := model.AgentCredential{
		AgentID:      agentID,
		SecretHash:   hash,
		SecretPrefix: prefix,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.credentialDAO.CreateCredential(ctx, cred); err != nil {
		return "", err
	}
	return rawSecret, nil
}
