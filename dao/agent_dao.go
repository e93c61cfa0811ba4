// api/dao/agent_dao.go
package dao

import (
	"context"
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

// AgentDAO persists the Agent identity record (spec.md §3) in Neo4j.
// Credentials, policies, and approvals hang off an Agent node by relationship
// but live in their own DAOs.
type AgentDAO struct {
	Driver neo4j.Driver
}

func NewAgentDAO(driver neo4j.Driver) *AgentDAO {
	dao := &AgentDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Agent", zap.Error(err))
	}
	return dao
}

func (dao *AgentDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_agent_id IF NOT EXISTS
        FOR (a:` + echo_neo4j.LabelAgent + `) REQUIRE a.agentId IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Agent ID", zap.Error(err))
		return err
	}
	return nil
}

func (dao *AgentDAO) CreateAgent(ctx context.Context, agent model.Agent) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (a:` + echo_neo4j.LabelAgent + ` {agentId: $id})
        ON CREATE SET a += $props
        RETURN a.agentId as id
        `
		params := map[string]interface{}{
			"id": agent.AgentID,
			"props": map[string]interface{}{
				"agentId":     agent.AgentID,
				"displayName": agent.DisplayName,
				"ownerTeam":   agent.OwnerTeam,
				"environment": agent.Environment,
				"isActive":    agent.IsActive,
				"createdAt":   time.Now().UTC().Format(time.RFC3339),
				"updatedAt":   time.Now().UTC().Format(time.RFC3339),
			},
		}

		res, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if res.Next() {
			return res.Record().Values[0], nil
		}
		return nil, echo_errors.ErrInternalServer
	})

	if err != nil {
		logger.Error("Failed to create agent", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", err
	}

	agentID := fmt.Sprintf("%v", result)
	logger.Info("Agent created", zap.String("agentID", agentID), zap.Duration("duration", time.Since(start)))
	return agentID, nil
}

func (dao *AgentDAO) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (a:` + echo_neo4j.LabelAgent + ` {agentId: $id}) RETURN a`
	result, err := session.Run(query, map[string]interface{}{"id": agentID})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToAgent(node)
	}
	return nil, echo_errors.ErrAgentNotFound
}

func (dao *AgentDAO) UpdateAgent(ctx context.Context, agent model.Agent) (*model.Agent, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	var updated *model.Agent
	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + echo_neo4j.LabelAgent + ` {agentId: $id})
        SET a += $props
        RETURN a
        `
		params := map[string]interface{}{
			"id": agent.AgentID,
			"props": map[string]interface{}{
				"displayName": agent.DisplayName,
				"ownerTeam":   agent.OwnerTeam,
				"environment": agent.Environment,
				"isActive":    agent.IsActive,
				"updatedAt":   time.Now().UTC().Format(time.RFC3339),
			},
		}

		res, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if res.Next() {
			node := res.Record().Values[0].(neo4j.Node)
			updated, err = mapNodeToAgent(node)
			return nil, err
		}
		return nil, echo_errors.ErrAgentNotFound
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (dao *AgentDAO) DeleteAgent(ctx context.Context, agentID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		res, err := tx.Run(
			`MATCH (a:`+echo_neo4j.LabelAgent+` {agentId: $id}) DETACH DELETE a`,
			map[string]interface{}{"id": agentID},
		)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		summary, err := res.Consume()
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, echo_errors.ErrAgentNotFound
		}
		return nil, nil
	})
	return err
}

func (dao *AgentDAO) SearchAgents(ctx context.Context, criteria model.AgentSearchCriteria) ([]*model.Agent, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var q strings.Builder
	q.WriteString("MATCH (a:" + echo_neo4j.LabelAgent + ") WHERE 1=1")
	params := map[string]interface{}{}

	if criteria.OwnerTeam != "" {
		q.WriteString(" AND a.ownerTeam = $ownerTeam")
		params["ownerTeam"] = criteria.OwnerTeam
	}
	if criteria.Environment != "" {
		q.WriteString(" AND a.environment = $environment")
		params["environment"] = criteria.Environment
	}
	if criteria.IsActive != nil {
		q.WriteString(" AND a.isActive = $isActive")
		params["isActive"] = *criteria.IsActive
	}

	q.WriteString(" RETURN a ORDER BY a.createdAt DESC")
	if criteria.Offset > 0 {
		q.WriteString(" SKIP $offset")
		params["offset"] = criteria.Offset
	}
	if criteria.Limit > 0 {
		q.WriteString(" LIMIT $limit")
		params["limit"] = criteria.Limit
	}

	result, err := session.Run(q.String(), params)
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}

	var agents []*model.Agent
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		a, err := mapNodeToAgent(node)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}

func mapNodeToAgent(node neo4j.Node) (*model.Agent, error) {
	props := node.Props
	a := &model.Agent{}
	a.AgentID, _ = props["agentId"].(string)
	a.DisplayName, _ = props["displayName"].(string)
	a.OwnerTeam, _ = props["ownerTeam"].(string)
	a.Environment, _ = props["environment"].(string)
	a.IsActive, _ = props["isActive"].(bool)
	if v, ok := props["createdAt"].(string); ok {
		a.CreatedAt, _ = helper_util.ParseTime(v)
	}
	if v, ok := props["updatedAt"].(string); ok {
		a.UpdatedAt, _ = helper_util.ParseTime(v)
	}
	return a, nil
}
