// api/dao/agent_policy_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	echo_neo4j "github.com/dev-mohitbeniwal/agentguard/model/neo4j"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// AgentPolicyDAO persists the single AgentPolicy row that governs one
// agent. Absence of a row is equivalent to "deny everything" (spec.md §3),
// so callers must treat ErrAgentPolicyNotFound as a valid, non-exceptional
// outcome rather than retrying.
type AgentPolicyDAO struct {
	Driver neo4j.Driver
}

func NewAgentPolicyDAO(driver neo4j.Driver) *AgentPolicyDAO {
	dao := &AgentPolicyDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for AgentPolicy", zap.Error(err))
	}
	return dao
}

func (dao *AgentPolicyDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_agent_policy_id IF NOT EXISTS
        FOR (p:` + echo_neo4j.LabelAgentPolicy + `) REQUIRE p.agentId IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	return err
}

// UpsertAgentPolicy replaces the policy row wholesale — AgentPolicy has no
// partial-update operation in spec.md §6, only PUT-style replacement.
func (dao *AgentPolicyDAO) UpsertAgentPolicy(ctx context.Context, policy model.AgentPolicy) (*model.AgentPolicy, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	allowJSON, _ := json.Marshal(policy.Allow)
	denyJSON, _ := json.Marshal(policy.Deny)
	approvalJSON, _ := json.Marshal(policy.RequireApproval)

	result, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + echo_neo4j.LabelAgent + ` {agentId: $agentId})
        MERGE (p:` + echo_neo4j.LabelAgentPolicy + ` {agentId: $agentId})
        ON CREATE SET p.createdAt = $now
        SET p.allow = $allow, p.deny = $deny, p.requireApproval = $approval, p.updatedAt = $now
        MERGE (a)-[:` + echo_neo4j.RelGovernedBy + `]->(p)
        RETURN p
        `
		params := map[string]interface{}{
			"agentId":  policy.AgentID,
			"allow":    string(allowJSON),
			"deny":     string(denyJSON),
			"approval": string(approvalJSON),
			"now":      time.Now().UTC().Format(time.RFC3339),
		}
		res, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if !res.Next() {
			return nil, echo_errors.ErrAgentNotFound
		}
		node := res.Record().Values[0].(neo4j.Node)
		return mapNodeToAgentPolicy(node)
	})

	if err != nil {
		logger.Error("Failed to upsert agent policy", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	return result.(*model.AgentPolicy), nil
}

func (dao *AgentPolicyDAO) GetAgentPolicy(ctx context.Context, agentID string) (*model.AgentPolicy, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (p:` + echo_neo4j.LabelAgentPolicy + ` {agentId: $agentId}) RETURN p`
	result, err := session.Run(query, map[string]interface{}{"agentId": agentID})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}
	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToAgentPolicy(node)
	}
	return nil, echo_errors.ErrAgentPolicyNotFound
}

func (dao *AgentPolicyDAO) DeleteAgentPolicy(ctx context.Context, agentID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		res, err := tx.Run(
			`MATCH (p:`+echo_neo4j.LabelAgentPolicy+` {agentId: $agentId}) DETACH DELETE p`,
			map[string]interface{}{"agentId": agentID},
		)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		summary, err := res.Consume()
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, echo_errors.ErrAgentPolicyNotFound
		}
		return nil, nil
	})
	return err
}

func mapNodeToAgentPolicy(node neo4j.Node) (*model.AgentPolicy, error) {
	props := node.Props
	p := &model.AgentPolicy{}
	p.AgentID, _ = props["agentId"].(string)

	if err := unmarshalRules(props["allow"], &p.Allow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent policy allow: %w", err)
	}
	if err := unmarshalRules(props["deny"], &p.Deny); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent policy deny: %w", err)
	}
	if err := unmarshalRules(props["requireApproval"], &p.RequireApproval); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent policy requireApproval: %w", err)
	}

	if v, ok := props["createdAt"].(string); ok {
		p.CreatedAt, _ = helper_util.ParseTime(v)
	}
	if v, ok := props["updatedAt"].(string); ok {
		p.UpdatedAt, _ = helper_util.ParseTime(v)
	}
	return p, nil
}

func unmarshalRules(raw interface{}, out *[]model.PolicyRule) error {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
