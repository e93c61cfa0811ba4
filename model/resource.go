// api/model/resource.go
package model

import "time"

// ApprovalStatus is the closed set of states an ApprovalRequest can hold.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDenied   ApprovalStatus = "denied"
)

// ApprovalRequest tracks an agent action suspended pending a human decision.
// It is created only when the decision engine matches a require_approval
// rule and is terminal once decided — see spec.md §4.H.
type ApprovalRequest struct {
	ApprovalID     string                 `json:"approval_id"`
	AgentID        string                 `json:"agent_id"`
	Status         ApprovalStatus         `json:"status"`
	Action         string                 `json:"action"`
	Resource       string                 `json:"resource,omitempty"`
	Context        map[string]interface{} `json:"context,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	DecidedAt      *time.Time             `json:"decided_at,omitempty"`
	DecidedBy      string                 `json:"decided_by,omitempty"`
	DecisionReason string                 `json:"decision_reason,omitempty"`
}

// ApprovalSearchCriteria filters GET /approvals listings.
type ApprovalSearchCriteria struct {
	Status  ApprovalStatus `json:"status,omitempty"`
	AgentID string         `json:"agent_id,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// ApprovalListResult pairs the matched page with the count of all
// currently-pending requests, per spec.md §4.H's listing contract.
type ApprovalListResult struct {
	Items        []ApprovalRequest `json:"items"`
	PendingCount int               `json:"pending_count"`
}
