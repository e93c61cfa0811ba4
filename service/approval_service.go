// api/service/approval_service.go
package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

const (
	eventApprovalCreated = "approval.created"
	eventApprovalDecided = "approval.decided"
)

// ApprovalService is the Approval Queue (spec.md §4.H): it opens and decides
// ApprovalRequest rows and fans out best-effort webhook notifications off
// the request path.
type ApprovalService interface {
	RequestApproval(ctx context.Context, agentID, action, resource string, reqContext map[string]interface{}) (*model.ApprovalRequest, error)
	Decide(ctx context.Context, approvalID string, status model.ApprovalStatus, decidedBy, reason string) (*model.ApprovalRequest, error)
	Get(ctx context.Context, approvalID string) (*model.ApprovalRequest, error)
	List(ctx context.Context, criteria model.ApprovalSearchCriteria) (model.ApprovalListResult, error)
}

type approvalService struct {
	approvalDAO    *dao.ApprovalDAO
	agentDAO       *dao.AgentDAO
	validationUtil *util.ValidationUtil
	notifier       *util.NotificationService
	bus            *util.EventBus
	webhookURL     string
	webhookSecret  string
	httpClient     *http.Client
	metrics        *util.MetricsRegistry
}

func NewApprovalService(
	approvalDAO *dao.ApprovalDAO,
	agentDAO *dao.AgentDAO,
	validationUtil *util.ValidationUtil,
	notifier *util.NotificationService,
	bus *util.EventBus,
	webhookURL, webhookSecret string,
	metrics *util.MetricsRegistry,
) ApprovalService {
	s := &approvalService{
		approvalDAO:    approvalDAO,
		agentDAO:       agentDAO,
		validationUtil: validationUtil,
		notifier:       notifier,
		bus:            bus,
		webhookURL:     webhookURL,
		webhookSecret:  webhookSecret,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		metrics:        metrics,
	}
	bus.Subscribe(eventApprovalCreated, s.deliverWebhook)
	bus.Subscribe(eventApprovalDecided, s.deliverWebhook)
	return s
}

// RequestApproval implements the "open a pending row" half of spec.md §4.H.
// It is called by the Decision Engine when an action matches a
// require_approval rule; the caller is responsible for the resulting
// Verdict, this method only persists state and notifies.
func (s *approvalService) RequestApproval(ctx context.Context, agentID, action, resource string, reqContext map[string]interface{}) (*model.ApprovalRequest, error) {
	req := model.ApprovalRequest{
		ApprovalID: "ap_" + uuid.NewString(),
		AgentID:    agentID,
		Status:     model.ApprovalPending,
		Action:     action,
		Resource:   resource,
		Context:    reqContext,
		CreatedAt:  time.Now().UTC(),
	}

	id, err := s.approvalDAO.CreateApproval(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ApprovalID = id

	if err := s.notifier.NotifyApprovalRequested(ctx, req); err != nil {
		logger.Warn("approval-requested notification failed", zap.String("approvalID", id), zap.Error(err))
	}
	s.bus.Publish(context.Background(), eventApprovalCreated, req)

	return &req, nil
}

// Decide implements the "resolve a pending row" half of spec.md §4.H. A
// webhook and notification fire only once a decision is recorded.
func (s *approvalService) Decide(ctx context.Context, approvalID string, status model.ApprovalStatus, decidedBy, reason string) (*model.ApprovalRequest, error) {
	if err := s.validationUtil.ValidateApprovalDecision(status, reason); err != nil {
		return nil, fmt.Errorf("%w: %v", echo_errors.ErrInvalidApprovalData, err)
	}

	updated, err := s.approvalDAO.Decide(ctx, approvalID, status, decidedBy, reason)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyApprovalDecided(ctx, *updated); err != nil {
		logger.Warn("approval-decided notification failed", zap.String("approvalID", approvalID), zap.Error(err))
	}
	s.bus.Publish(context.Background(), eventApprovalDecided, *updated)
	if s.metrics != nil {
		s.metrics.Incr("approvals.decided." + string(status))
	}

	return updated, nil
}

func (s *approvalService) Get(ctx context.Context, approvalID string) (*model.ApprovalRequest, error) {
	return s.approvalDAO.GetApproval(ctx, approvalID)
}

func (s *approvalService) List(ctx context.Context, criteria model.ApprovalSearchCriteria) (model.ApprovalListResult, error) {
	return s.approvalDAO.ListApprovals(ctx, criteria)
}

// webhookPayload builds the JSON body of spec.md §4.H: always the event
// envelope plus request identity; context on creation, decision fields on
// a terminal decision.
func (s *approvalService) webhookPayload(eventType string, req model.ApprovalRequest) map[string]interface{} {
	agentName := req.AgentID
	if agent, err := s.agentDAO.GetAgent(context.Background(), req.AgentID); err == nil {
		agentName = agent.DisplayName
	}

	payload := map[string]interface{}{
		"event":       eventType,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"approval_id": req.ApprovalID,
		"agent_id":    req.AgentID,
		"agent_name":  agentName,
		"action":      req.Action,
		"resource":    req.Resource,
	}

	switch eventType {
	case eventApprovalCreated:
		payload["context"] = req.Context
	case eventApprovalDecided:
		payload["decision_reason"] = req.DecisionReason
		payload["decided_by"] = req.DecidedBy
	}
	return payload
}

// deliverWebhook is the event-bus handler dispatched off the request path:
// the EventBus already runs each subscriber in its own goroutine, so the
// Decide/RequestApproval caller never waits on this. Its own timeout is
// independent of the originating request's context, which may already be
// gone by the time this runs.
func (s *approvalService) deliverWebhook(_ context.Context, event util.Event) error {
	if s.webhookURL == "" {
		return nil
	}
	req, ok := event.Payload.(model.ApprovalRequest)
	if !ok {
		return fmt.Errorf("approval webhook: unexpected payload type %T", event.Payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, err := json.Marshal(s.webhookPayload(event.Type, req))
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.webhookSecret != "" {
		httpReq.Header.Set("x-agentguard-signature", "sha256="+signWebhookBody(s.webhookSecret, body))
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn("webhook delivery failed", zap.String("approvalID", req.ApprovalID), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warn("webhook endpoint returned non-2xx",
			zap.String("approvalID", req.ApprovalID), zap.Int("status", resp.StatusCode))
	}
	return nil
}

func signWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
