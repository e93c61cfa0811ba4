// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/dev-mohitbeniwal/agentguard/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateAgent(agent model.Agent) error {
	if agent.AgentID == "" {
		return fmt.Errorf("agent ID cannot be empty")
	}
	if agent.DisplayName == "" {
		return fmt.Errorf("agent display name cannot be empty")
	}
	if agent.OwnerTeam == "" {
		return fmt.Errorf("agent owner team cannot be empty")
	}
	if agent.Environment == "" {
		return fmt.Errorf("agent environment cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateAgentPolicy(policy model.AgentPolicy) error {
	if policy.AgentID == "" {
		return fmt.Errorf("agent policy must name an agent ID")
	}
	if err := validateRules(policy.Allow); err != nil {
		return fmt.Errorf("invalid allow rule: %w", err)
	}
	if err := validateRules(policy.Deny); err != nil {
		return fmt.Errorf("invalid deny rule: %w", err)
	}
	if err := validateRules(policy.RequireApproval); err != nil {
		return fmt.Errorf("invalid require_approval rule: %w", err)
	}
	return nil
}

func (v *ValidationUtil) ValidateTeamPolicy(policy model.TeamPolicy) error {
	if policy.Team == "" {
		return fmt.Errorf("team policy must name a team")
	}
	if err := validateRules(policy.Allow); err != nil {
		return fmt.Errorf("invalid allow rule: %w", err)
	}
	if err := validateRules(policy.Deny); err != nil {
		return fmt.Errorf("invalid deny rule: %w", err)
	}
	if err := validateRules(policy.RequireApproval); err != nil {
		return fmt.Errorf("invalid require_approval rule: %w", err)
	}
	return nil
}

func validateRules(rules []model.PolicyRule) error {
	for _, r := range rules {
		if r.Action == "" {
			return fmt.Errorf("rule action cannot be empty")
		}
		if r.Conditions != nil && r.Conditions.TimeRange != nil {
			tr := r.Conditions.TimeRange
			if tr.Start == "" && tr.End == "" {
				return fmt.Errorf("time_range must set at least one of start/end")
			}
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateAdminUser(user model.AdminUser) error {
	if user.AdminID == "" {
		return fmt.Errorf("admin ID cannot be empty")
	}
	if user.DisplayName == "" {
		return fmt.Errorf("admin display name cannot be empty")
	}
	switch user.Role {
	case model.RoleSuperAdmin, model.RoleAdmin, model.RoleAuditor, model.RoleApprover:
	default:
		return fmt.Errorf("admin role %q is not a recognized role", user.Role)
	}
	return nil
}

func (v *ValidationUtil) ValidateAgentCredential(cred model.AgentCredential) error {
	if cred.AgentID == "" {
		return fmt.Errorf("credential must name an agent ID")
	}
	if cred.SecretHash == "" {
		return fmt.Errorf("credential secret hash cannot be empty")
	}
	return nil
}

// ValidateApprovalDecision enforces spec.md §4.H's "decision_reason is
// required for denied, optional for approved" rule on top of the plain
// status enum check.
func (v *ValidationUtil) ValidateApprovalDecision(status model.ApprovalStatus, reason string) error {
	if status != model.ApprovalApproved && status != model.ApprovalDenied {
		return fmt.Errorf("approval decision must be 'approved' or 'denied', got %q", status)
	}
	if status == model.ApprovalDenied && reason == "" {
		return fmt.Errorf("decision_reason is required when denying an approval")
	}
	return nil
}
