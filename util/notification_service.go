// api/util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyAgentPolicyChange(ctx context.Context, changeType string, policy model.AgentPolicy) error {
	switch changeType {
	case "created", "updated":
		logger.Info("NOTIFICATION: Agent policy changed",
			zap.String("changeType", changeType),
			zap.String("agentID", policy.AgentID))
	case "deleted":
		logger.Info("NOTIFICATION: Agent policy deleted", zap.String("agentID", policy.AgentID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyTeamPolicyChange(ctx context.Context, changeType string, policy model.TeamPolicy) error {
	switch changeType {
	case "created", "updated":
		logger.Info("NOTIFICATION: Team policy changed",
			zap.String("changeType", changeType),
			zap.String("team", policy.Team))
	case "deleted":
		logger.Info("NOTIFICATION: Team policy deleted", zap.String("team", policy.Team))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

// NotifyApprovalRequested fires when the decision engine suspends an
// action pending a human decision — the approval service sends this on
// the same path it dispatches the outbound webhook.
func (n *NotificationService) NotifyApprovalRequested(ctx context.Context, req model.ApprovalRequest) error {
	logger.Info("NOTIFICATION: Approval requested",
		zap.String("approvalID", req.ApprovalID),
		zap.String("agentID", req.AgentID),
		zap.String("action", req.Action))
	return nil
}

func (n *NotificationService) NotifyApprovalDecided(ctx context.Context, req model.ApprovalRequest) error {
	logger.Info("NOTIFICATION: Approval decided",
		zap.String("approvalID", req.ApprovalID),
		zap.String("status", string(req.Status)),
		zap.String("decidedBy", req.DecidedBy))
	return nil
}

func (n *NotificationService) NotifyAgentCredentialRevoked(ctx context.Context, agentID, secretPrefix string) error {
	logger.Info("NOTIFICATION: Agent credential revoked",
		zap.String("agentID", agentID),
		zap.String("secretPrefix", secretPrefix))
	return nil
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}

func (n *NotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	logger.Info("Sending email",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}
