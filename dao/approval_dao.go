// api/dao/approval_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	echo_neo4j "github.com/dev-mohitbeniwal/agentguard/model/neo4j"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// ApprovalDAO persists ApprovalRequest rows raised by the Decision Engine
// when an action matches a require_approval rule (spec.md §4.H).
type ApprovalDAO struct {
	Driver neo4j.Driver
}

func NewApprovalDAO(driver neo4j.Driver) *ApprovalDAO {
	dao := &ApprovalDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for ApprovalRequest", zap.Error(err))
	}
	return dao
}

func (dao *ApprovalDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_approval_id IF NOT EXISTS
        FOR (a:` + echo_neo4j.LabelApprovalRequest + `) REQUIRE a.approvalId IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *ApprovalDAO) CreateApproval(ctx context.Context, req model.ApprovalRequest) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	contextJSON, _ := json.Marshal(req.Context)

	result, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (ag:` + echo_neo4j.LabelAgent + ` {agentId: $agentId})
        MERGE (a:` + echo_neo4j.LabelApprovalRequest + ` {approvalId: $id})
        ON CREATE SET a += $props
        MERGE (a)-[:` + echo_neo4j.RelRequestedBy + `]->(ag)
        RETURN a.approvalId as id
        `
		params := map[string]interface{}{
			"id":      req.ApprovalID,
			"agentId": req.AgentID,
			"props": map[string]interface{}{
				"approvalId": req.ApprovalID,
				"agentId":    req.AgentID,
				"status":     string(req.Status),
				"action":     req.Action,
				"resource":   req.Resource,
				"context":    string(contextJSON),
				"createdAt":  time.Now().UTC().Format(time.RFC3339),
			},
		}
		res, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if !res.Next() {
			return nil, echo_errors.ErrAgentNotFound
		}
		return res.Record().Values[0], nil
	})

	if err != nil {
		logger.Error("Failed to create approval request", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", err
	}
	return fmt.Sprintf("%v", result), nil
}

// Decide sets the terminal status, decider, and reason for a pending
// approval. It fails with ErrApprovalNotPending if the row is already
// terminal, per spec.md §4.H's pending-is-the-only-mutable-state rule.
func (dao *ApprovalDAO) Decide(ctx context.Context, approvalID string, status model.ApprovalStatus, decidedBy, reason string) (*model.ApprovalRequest, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	var updated *model.ApprovalRequest
	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + echo_neo4j.LabelApprovalRequest + ` {approvalId: $id})
        WHERE a.status = $pending
        SET a.status = $status, a.decidedAt = $decidedAt, a.decidedBy = $decidedBy, a.decisionReason = $reason
        RETURN a
        `
		params := map[string]interface{}{
			"id":        approvalID,
			"pending":   string(model.ApprovalPending),
			"status":    string(status),
			"decidedAt": time.Now().UTC().Format(time.RFC3339),
			"decidedBy": decidedBy,
			"reason":    reason,
		}
		res, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if res.Next() {
			node := res.Record().Values[0].(neo4j.Node)
			updated, err = mapNodeToApproval(node)
			return nil, err
		}

		if _, getErr := dao.GetApproval(ctx, approvalID); getErr == nil {
			return nil, echo_errors.ErrApprovalNotPending
		}
		return nil, echo_errors.ErrApprovalNotFound
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (dao *ApprovalDAO) GetApproval(ctx context.Context, approvalID string) (*model.ApprovalRequest, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (a:` + echo_neo4j.LabelApprovalRequest + ` {approvalId: $id}) RETURN a`
	result, err := session.Run(query, map[string]interface{}{"id": approvalID})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}
	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToApproval(node)
	}
	return nil, echo_errors.ErrApprovalNotFound
}

// ListApprovals answers GET /approvals with the optional status/agent_id
// filters of spec.md §6, and always reports the current pending count.
func (dao *ApprovalDAO) ListApprovals(ctx context.Context, criteria model.ApprovalSearchCriteria) (model.ApprovalListResult, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var q strings.Builder
	q.WriteString("MATCH (a:" + echo_neo4j.LabelApprovalRequest + ") WHERE 1=1")
	params := map[string]interface{}{}

	if criteria.Status != "" {
		q.WriteString(" AND a.status = $status")
		params["status"] = string(criteria.Status)
	}
	if criteria.AgentID != "" {
		q.WriteString(" AND a.agentId = $agentId")
		params["agentId"] = criteria.AgentID
	}

	q.WriteString(" RETURN a ORDER BY a.createdAt DESC")
	if criteria.Limit > 0 {
		q.WriteString(" LIMIT $limit")
		params["limit"] = criteria.Limit
	}

	result, err := session.Run(q.String(), params)
	if err != nil {
		return model.ApprovalListResult{}, echo_errors.ErrDatabaseOperation
	}

	var out model.ApprovalListResult
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		a, err := mapNodeToApproval(node)
		if err != nil {
			return model.ApprovalListResult{}, err
		}
		out.Items = append(out.Items, *a)
	}

	countResult, err := session.Run(
		"MATCH (a:"+echo_neo4j.LabelApprovalRequest+` {status: $pending}) RETURN count(a) as c`,
		map[string]interface{}{"pending": string(model.ApprovalPending)},
	)
	if err != nil {
		return model.ApprovalListResult{}, echo_errors.ErrDatabaseOperation
	}
	if countResult.Next() {
		out.PendingCount = int(countResult.Record().Values[0].(int64))
	}

	return out, nil
}

func mapNodeToApproval(node neo4j.Node) (*model.ApprovalRequest, error) {
	props := node.Props
	a := &model.ApprovalRequest{}
	a.ApprovalID, _ = props["approvalId"].(string)
	a.AgentID, _ = props["agentId"].(string)
	if s, ok := props["status"].(string); ok {
		a.Status = model.ApprovalStatus(s)
	}
	a.Action, _ = props["action"].(string)
	a.Resource, _ = props["resource"].(string)
	if ctxJSON, ok := props["context"].(string); ok && ctxJSON != "" {
		_ = json.Unmarshal([]byte(ctxJSON), &a.Context)
	}
	if v, ok := props["createdAt"].(string); ok {
		a.CreatedAt, _ = helper_util.ParseTime(v)
	}
	if v, ok := props["decidedAt"].(string); ok && v != "" {
		t, err := helper_util.ParseTime(v)
		if err == nil {
			a.DecidedAt = &t
		}
	}
	a.DecidedBy, _ = props["decidedBy"].(string)
	a.DecisionReason, _ = props["decisionReason"].(string)
	return a, nil
}
