// api/service/decision_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/audit"
	"github.com/dev-mohitbeniwal/agentguard/dao"
	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/policy"
	"github.com/dev-mohitbeniwal/agentguard/util"
	"go.uber.org/zap"
)

// VerdictStatus is the closed set of outcomes the Decision Engine returns,
// per spec.md §4.J.
type VerdictStatus string

const (
	VerdictAllow   VerdictStatus = "allow"
	VerdictDeny    VerdictStatus = "deny"
	VerdictPending VerdictStatus = "pending"
)

// Verdict is the Decision Engine's output for a single enforce call.
type Verdict struct {
	Status     VerdictStatus
	Reason     string
	ApprovalID string
}

// MatchExplanation is the non-mutating counterpart of Verdict returned by
// Playground: which list and rule position would have matched, without
// opening an approval or writing an audit entry.
type MatchExplanation struct {
	Status       VerdictStatus
	Reason       string
	MatchedList  string
	MatchedIndex int
}

// DecisionService is the Decision Engine (spec.md §4.J): it orchestrates the
// Normalizer, Condition Evaluator, and Policy Store to produce a verdict,
// routes approval-required verdicts through the Approval Queue, and writes
// exactly one AuditEntry per call.
type DecisionService interface {
	Enforce(ctx context.Context, agentID, rawAction, resource string, reqContext map[string]interface{}, requestID string) (Verdict, error)
	Playground(ctx context.Context, agentID, rawAction, resource string, reqContext map[string]interface{}) (MatchExplanation, error)
}

type decisionService struct {
	agentDAO       *dao.AgentDAO
	agentPolicyDAO *dao.AgentPolicyDAO
	teamPolicyDAO  *dao.TeamPolicyDAO
	cacheService   *util.CacheService
	auditService   audit.Service
	approvalSvc    ApprovalService
	metrics        *util.MetricsRegistry
}

func NewDecisionService(
	agentDAO *dao.AgentDAO,
	agentPolicyDAO *dao.AgentPolicyDAO,
	teamPolicyDAO *dao.TeamPolicyDAO,
	cacheService *util.CacheService,
	auditService audit.Service,
	approvalSvc ApprovalService,
	metrics *util.MetricsRegistry,
) DecisionService {
	return &decisionService{
		agentDAO:       agentDAO,
		agentPolicyDAO: agentPolicyDAO,
		teamPolicyDAO:  teamPolicyDAO,
		cacheService:   cacheService,
		auditService:   auditService,
		approvalSvc:    approvalSvc,
		metrics:        metrics,
	}
}

// loadedPolicies is the outcome of step 1 of §4.J: the agent record and its
// effective rule set, or an error distinguishing "store unreachable" from
// "agent unknown."
type loadedPolicies struct {
	agent     *model.Agent
	effective model.EffectiveRuleSet
}

func (s *decisionService) load(ctx context.Context, agentID string) (*loadedPolicies, error) {
	agent, err := s.agentDAO.GetAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, echo_errors.ErrAgentNotFound) {
			return nil, err
		}
		return nil, echo_errors.ErrPolicyUnavailable
	}

	agentPolicy, err := s.loadAgentPolicy(ctx, agentID)
	if err != nil {
		return nil, err
	}

	teamPolicy, err := s.loadTeamPolicy(ctx, agent.OwnerTeam)
	if err != nil {
		return nil, err
	}

	return &loadedPolicies{
		agent:     agent,
		effective: model.Merge(teamPolicy, agentPolicy),
	}, nil
}

// loadAgentPolicy prefers the encrypted Redis cache (§G) and falls through to
// Neo4j on a miss, repopulating the cache; absence of a row is the normal
// "deny everything" case, not an error.
func (s *decisionService) loadAgentPolicy(ctx context.Context, agentID string) (*model.AgentPolicy, error) {
	if cached, err := s.cacheService.GetAgentPolicy(ctx, agentID); err == nil && cached != nil {
		return cached, nil
	}

	p, err := s.agentPolicyDAO.GetAgentPolicy(ctx, agentID)
	if err != nil {
		if errors.Is(err, echo_errors.ErrAgentPolicyNotFound) {
			return nil, nil
		}
		return nil, echo_errors.ErrPolicyUnavailable
	}

	if err := s.cacheService.SetAgentPolicy(ctx, *p); err != nil {
		logger.Warn("failed to repopulate agent policy cache", zap.String("agentID", agentID), zap.Error(err))
	}
	return p, nil
}

func (s *decisionService) loadTeamPolicy(ctx context.Context, team string) (*model.TeamPolicy, error) {
	if team == "" {
		return nil, nil
	}
	if cached, err := s.cacheService.GetTeamPolicy(ctx, team); err == nil && cached != nil {
		return cached, nil
	}

	p, err := s.teamPolicyDAO.GetTeamPolicy(ctx, team)
	if err != nil {
		if errors.Is(err, echo_errors.ErrTeamPolicyNotFound) {
			return nil, nil
		}
		return nil, echo_errors.ErrPolicyUnavailable
	}

	if err := s.cacheService.SetTeamPolicy(ctx, *p); err != nil {
		logger.Warn("failed to repopulate team policy cache", zap.String("team", team), zap.Error(err))
	}
	return p, nil
}

// matchRules implements the "first match by position" rule of spec.md §9:
// the action and resource globs must both match and, if present, the rule's
// conditions must hold.
func matchRules(rules []model.PolicyRule, normalizedAction, resource string, rc policy.RuntimeContext) int {
	for i, r := range rules {
		if !policy.MatchAction(policy.Normalize(r.Action), normalizedAction) {
			continue
		}
		if !policy.MatchGlob(r.Resource, resource) {
			continue
		}
		if !policy.EvaluateConditions(r.Conditions, rc) {
			continue
		}
		return i
	}
	return -1
}

func matchReason(list string, rule model.PolicyRule) string {
	res := rule.Resource
	if res == "" {
		res = "*"
	}
	return fmt.Sprintf("matched %s rule %s on %s", list, rule.Action, res)
}

// Enforce implements spec.md §4.J end to end: it composes the effective
// policy, evaluates deny before approval before allow, and writes exactly
// one AuditEntry regardless of outcome. It never fails open: any error on
// the policy-store path resolves to Deny, and a failed audit write is
// returned as an error with no verdict.
func (s *decisionService) Enforce(ctx context.Context, agentID, rawAction, resource string, reqContext map[string]interface{}, requestID string) (Verdict, error) {
	if resource == "" {
		resource = "*"
	}
	normalizedAction := policy.Normalize(rawAction)
	now := time.Now().UTC()

	loaded, err := s.load(ctx, agentID)
	if err != nil {
		verdict := Verdict{Status: VerdictDeny}
		result := audit.ResultDenied
		if errors.Is(err, echo_errors.ErrAgentNotFound) {
			verdict.Reason = "agent not found"
		} else {
			verdict.Reason = "policy unavailable"
			result = audit.ResultError
		}
		if auditErr := s.writeAudit(ctx, agentID, normalizedAction, resource, reqContext, requestID, false, result, nil); auditErr != nil {
			return Verdict{}, auditErr
		}
		return verdict, nil
	}

	rc := policy.RuntimeContext{Env: loaded.agent.Environment, Now: now, Context: reqContext}

	verdict, metadata := s.decide(ctx, loaded.agent, loaded.effective, normalizedAction, resource, reqContext, rc)

	allowed := verdict.Status == VerdictAllow
	result := audit.ResultDenied
	switch verdict.Status {
	case VerdictAllow:
		result = audit.ResultSuccess
	case VerdictPending:
		result = audit.ResultPending
	}

	if err := s.writeAudit(ctx, agentID, normalizedAction, resource, reqContext, requestID, allowed, result, metadata); err != nil {
		return Verdict{}, err
	}
	if s.metrics != nil {
		s.metrics.Incr("enforce." + string(verdict.Status))
	}
	return verdict, nil
}

func (s *decisionService) decide(
	ctx context.Context,
	agent *model.Agent,
	effective model.EffectiveRuleSet,
	normalizedAction, resource string,
	reqContext map[string]interface{},
	rc policy.RuntimeContext,
) (Verdict, map[string]interface{}) {
	if idx := matchRules(effective.Deny, normalizedAction, resource, rc); idx >= 0 {
		rule := effective.Deny[idx]
		return Verdict{Status: VerdictDeny, Reason: matchReason("deny", rule)},
			map[string]interface{}{"matched_list": "deny", "matched_rule_index": idx}
	}

	if idx := matchRules(effective.RequireApproval, normalizedAction, resource, rc); idx >= 0 {
		req, err := s.approvalSvc.RequestApproval(ctx, agent.AgentID, normalizedAction, resource, reqContext)
		if err != nil {
			logger.Error("failed to open approval request", zap.String("agentID", agent.AgentID), zap.Error(err))
			return Verdict{Status: VerdictDeny, Reason: "policy unavailable"},
				map[string]interface{}{"matched_list": "require_approval", "matched_rule_index": idx}
		}
		return Verdict{Status: VerdictPending, ApprovalID: req.ApprovalID},
			map[string]interface{}{"matched_list": "require_approval", "matched_rule_index": idx, "approval_id": req.ApprovalID}
	}

	if idx := matchRules(effective.Allow, normalizedAction, resource, rc); idx >= 0 {
		rule := effective.Allow[idx]
		return Verdict{Status: VerdictAllow, Reason: matchReason("allow", rule)},
			map[string]interface{}{"matched_list": "allow", "matched_rule_index": idx}
	}

	return Verdict{Status: VerdictDeny, Reason: "no matching rule"}, nil
}

// writeAudit implements the atomicity rule of spec.md §5: the response is
// emitted only after the audit entry is durable, and a failed audit write
// surfaces as an error to the caller rather than a silent decision.
func (s *decisionService) writeAudit(
	ctx context.Context,
	agentID, action, resource string,
	reqContext map[string]interface{},
	requestID string,
	allowed bool,
	result audit.Result,
	metadata map[string]interface{},
) error {
	_, err := s.auditService.Submit(ctx, audit.Entry{
		AgentID:   agentID,
		Action:    action,
		Resource:  resource,
		Context:   reqContext,
		Allowed:   allowed,
		Result:    result,
		Metadata:  metadata,
		RequestID: requestID,
	})
	if err != nil {
		logger.Error("audit write failed for enforce call", zap.String("agentID", agentID), zap.Error(err))
		return echo_errors.ErrAuditWriteFailed
	}
	return nil
}

// Playground implements the dry-run enforce of SPEC_FULL.md's supplemented
// features: it reuses the same match logic as Enforce but skips the audit
// write and never opens an ApprovalRequest.
func (s *decisionService) Playground(ctx context.Context, agentID, rawAction, resource string, reqContext map[string]interface{}) (MatchExplanation, error) {
	if resource == "" {
		resource = "*"
	}
	normalizedAction := policy.Normalize(rawAction)

	loaded, err := s.load(ctx, agentID)
	if err != nil {
		if errors.Is(err, echo_errors.ErrAgentNotFound) {
			return MatchExplanation{Status: VerdictDeny, Reason: "agent not found"}, nil
		}
		return MatchExplanation{Status: VerdictDeny, Reason: "policy unavailable"}, nil
	}

	rc := policy.RuntimeContext{Env: loaded.agent.Environment, Now: time.Now().UTC(), Context: reqContext}

	if idx := matchRules(loaded.effective.Deny, normalizedAction, resource, rc); idx >= 0 {
		return MatchExplanation{Status: VerdictDeny, Reason: matchReason("deny", loaded.effective.Deny[idx]), MatchedList: "deny", MatchedIndex: idx}, nil
	}
	if idx := matchRules(loaded.effective.RequireApproval, normalizedAction, resource, rc); idx >= 0 {
		return MatchExplanation{Status: VerdictPending, Reason: "would require approval", MatchedList: "require_approval", MatchedIndex: idx}, nil
	}
	if idx := matchRules(loaded.effective.Allow, normalizedAction, resource, rc); idx >= 0 {
		return MatchExplanation{Status: VerdictAllow, Reason: matchReason("allow", loaded.effective.Allow[idx]), MatchedList: "allow", MatchedIndex: idx}, nil
	}
	return MatchExplanation{Status: VerdictDeny, Reason: "no matching rule", MatchedIndex: -1}, nil
}
