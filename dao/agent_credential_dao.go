// api/dao/agent_credential_dao.go
package dao

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	echo_neo4j "github.com/dev-mohitbeniwal/agentguard/model/neo4j"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// AgentCredentialDAO persists hashed static secrets, keyed by their public
// prefix, and the HAS_CREDENTIAL edge linking a credential to its agent.
type AgentCredentialDAO struct {
	Driver neo4j.Driver
}

func NewAgentCredentialDAO(driver neo4j.Driver) *AgentCredentialDAO {
	dao := &AgentCredentialDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for AgentCredential", zap.Error(err))
	}
	return dao
}

func (dao *AgentCredentialDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_credential_prefix IF NOT EXISTS
        FOR (c:` + echo_neo4j.LabelAgentCredential + `) REQUIRE c.secretPrefix IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *AgentCredentialDAO) CreateCredential(ctx context.Context, cred model.AgentCredential) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + echo_neo4j.LabelAgent + ` {agentId: $agentId})
        MERGE (c:` + echo_neo4j.LabelAgentCredential + ` {secretPrefix: $prefix})
        ON CREATE SET c += $props
        MERGE (a)-[:` + echo_neo4j.RelHasCredential + `]->(c)
        RETURN c.secretPrefix as id
        `
		params := map[string]interface{}{
			"agentId": cred.AgentID,
			"prefix":  cred.SecretPrefix,
			"props": map[string]interface{}{
				"agentId":      cred.AgentID,
				"secretPrefix": cred.SecretPrefix,
				"secretHash":   cred.SecretHash,
				"isActive":     true,
				"createdAt":    time.Now().UTC().Format(time.RFC3339),
			},
		}
		res, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if !res.Next() {
			return nil, echo_errors.ErrAgentNotFound
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to create agent credential", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return err
	}
	return nil
}

// GetBySecretPrefix is the lookup the legacy x-agent-key auth path uses:
// resolve the prefix to its hash for a constant-time comparison by the
// caller, never by the query itself.
func (dao *AgentCredentialDAO) GetBySecretPrefix(ctx context.Context, prefix string) (*model.AgentCredential, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (c:` + echo_neo4j.LabelAgentCredential + ` {secretPrefix: $prefix}) RETURN c`
	result, err := session.Run(query, map[string]interface{}{"prefix": prefix})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}
	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToCredential(node)
	}
	return nil, echo_errors.ErrCredentialNotFound
}

func (dao *AgentCredentialDAO) ListForAgent(ctx context.Context, agentID string) ([]*model.AgentCredential, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (a:` + echo_neo4j.LabelAgent + ` {agentId: $agentId})-[:` + echo_neo4j.RelHasCredential + `]->(c:` + echo_neo4j.LabelAgentCredential + `)
    RETURN c ORDER BY c.createdAt DESC
    `
	result, err := session.Run(query, map[string]interface{}{"agentId": agentID})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}

	var creds []*model.AgentCredential
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		c, err := mapNodeToCredential(node)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, nil
}

func (dao *AgentCredentialDAO) RevokeCredential(ctx context.Context, prefix string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		res, err := tx.Run(
			`MATCH (c:`+echo_neo4j.LabelAgentCredential+` {secretPrefix: $prefix}) SET c.isActive = false`,
			map[string]interface{}{"prefix": prefix},
		)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		summary, err := res.Consume()
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if summary.Counters().PropertiesSet() == 0 {
			return nil, echo_errors.ErrCredentialNotFound
		}
		return nil, nil
	})
	return err
}

func mapNodeToCredential(node neo4j.Node) (*model.AgentCredential, error) {
	props := node.Props
	c := &model.AgentCredential{}
	c.AgentID, _ = props["agentId"].(string)
	c.SecretHash, _ = props["secretHash"].(string)
	c.SecretPrefix, _ = props["secretPrefix"].(string)
	c.IsActive, _ = props["isActive"].(bool)
	if v, ok := props["createdAt"].(string); ok {
		c.CreatedAt, _ = helper_util.ParseTime(v)
	}
	return c, nil
}
