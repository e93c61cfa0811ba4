// api/dao/team_policy_dao.go
package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	echo_neo4j "github.com/dev-mohitbeniwal/agentguard/model/neo4j"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// TeamPolicyDAO persists the base policy merged into every agent of a team
// at enforcement time. Absence of a row is equivalent to "contributes
// nothing" (spec.md §3).
type TeamPolicyDAO struct {
	Driver neo4j.Driver
}

func NewTeamPolicyDAO(driver neo4j.Driver) *TeamPolicyDAO {
	dao := &TeamPolicyDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for TeamPolicy", zap.Error(err))
	}
	return dao
}

func (dao *TeamPolicyDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_team_policy_team IF NOT EXISTS
        FOR (p:` + echo_neo4j.LabelTeamPolicy + `) REQUIRE p.team IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *TeamPolicyDAO) UpsertTeamPolicy(ctx context.Context, policy model.TeamPolicy) (*model.TeamPolicy, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	allowJSON, _ := json.Marshal(policy.Allow)
	denyJSON, _ := json.Marshal(policy.Deny)
	approvalJSON, _ := json.Marshal(policy.RequireApproval)

	result, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (p:` + echo_neo4j.LabelTeamPolicy + ` {team: $team})
        ON CREATE SET p.createdAt = $now
        SET p.allow = $allow, p.deny = $deny, p.requireApproval = $approval, p.updatedAt = $now
        RETURN p
        `
		params := map[string]interface{}{
			"team":     policy.Team,
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
			return nil, echo_errors.ErrInternalServer
		}
		node := res.Record().Values[0].(neo4j.Node)
		return mapNodeToTeamPolicy(node)
	})

	if err != nil {
		logger.Error("Failed to upsert team policy", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	return result.(*model.TeamPolicy), nil
}

func (dao *TeamPolicyDAO) GetTeamPolicy(ctx context.Context, team string) (*model.TeamPolicy, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (p:` + echo_neo4j.LabelTeamPolicy + ` {team: $team}) RETURN p`
	result, err := session.Run(query, map[string]interface{}{"team": team})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}
	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToTeamPolicy(node)
	}
	return nil, echo_errors.ErrTeamPolicyNotFound
}

func (dao *TeamPolicyDAO) DeleteTeamPolicy(ctx context.Context, team string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		res, err := tx.Run(
			`MATCH (p:`+echo_neo4j.LabelTeamPolicy+` {team: $team}) DETACH DELETE p`,
			map[string]interface{}{"team": team},
		)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		summary, err := res.Consume()
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, echo_errors.ErrTeamPolicyNotFound
		}
		return nil, nil
	})
	return err
}

func mapNodeToTeamPolicy(node neo4j.Node) (*model.TeamPolicy, error) {
	props := node.Props
	p := &model.TeamPolicy{}
	p.Team, _ = props["team"].(string)

	if err := unmarshalRules(props["allow"], &p.Allow); err != nil {
		return nil, err
	}
	if err := unmarshalRules(props["deny"], &p.Deny); err != nil {
		return nil, err
	}
	if err := unmarshalRules(props["requireApproval"], &p.RequireApproval); err != nil {
		return nil, err
	}

	if v, ok := props["createdAt"].(string); ok {
		p.CreatedAt, _ = helper_util.ParseTime(v)
	}
	if v, ok := props["updatedAt"].(string); ok {
		p.UpdatedAt, _ = helper_util.ParseTime(v)
	}
	return p, nil
}
