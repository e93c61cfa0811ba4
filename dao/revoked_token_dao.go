// api/dao/revoked_token_dao.go
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

// RevokedTokenDAO is the durable half of the revocation set (§4.E). The
// token service also keeps a hot Redis cache; this DAO is the source of
// truth a restarted process reloads from, and SweepExpired prunes rows
// whose jti's own expiry has passed.
type RevokedTokenDAO struct {
	Driver neo4j.Driver
}

func NewRevokedTokenDAO(driver neo4j.Driver) *RevokedTokenDAO {
	dao := &RevokedTokenDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for RevokedToken", zap.Error(err))
	}
	return dao
}

func (dao *RevokedTokenDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_revoked_jti IF NOT EXISTS
        FOR (r:` + echo_neo4j.LabelRevokedToken + `) REQUIRE r.jti IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	return err
}

// Revoke is idempotent: revoking an already-revoked jti is a no-op success,
// matching the "duplicate revocations are idempotent" contract on RevokedToken.
func (dao *RevokedTokenDAO) Revoke(ctx context.Context, token model.RevokedToken) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (r:` + echo_neo4j.LabelRevokedToken + ` {jti: $jti})
        ON CREATE SET r.revokedAt = $revokedAt, r.expiresAt = $expiresAt
        `
		params := map[string]interface{}{
			"jti":       token.JTI,
			"revokedAt": token.RevokedAt.UTC().Format(time.RFC3339),
			"expiresAt": token.ExpiresAt.UTC().Format(time.RFC3339),
		}
		_, err := tx.Run(query, params)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to revoke token", zap.Error(err), zap.Duration("duration", time.Since(start)))
	}
	return err
}

func (dao *RevokedTokenDAO) IsRevoked(ctx context.Context, jti string) (bool, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (r:` + echo_neo4j.LabelRevokedToken + ` {jti: $jti}) RETURN r.jti`
	result, err := session.Run(query, map[string]interface{}{"jti": jti})
	if err != nil {
		return false, echo_errors.ErrDatabaseOperation
	}
	return result.Next(), nil
}

// ListActive loads every row whose token has not yet expired, for
// rehydrating the Redis revocation cache on process start.
func (dao *RevokedTokenDAO) ListActive(ctx context.Context) ([]model.RevokedToken, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + echo_neo4j.LabelRevokedToken + `)
    WHERE r.expiresAt > $now
    RETURN r
    `
	result, err := session.Run(query, map[string]interface{}{"now": time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}

	var tokens []model.RevokedToken
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		t, err := mapNodeToRevokedToken(node)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// SweepExpired deletes rows whose underlying token has already expired on
// its own terms; they no longer need to occupy the blocklist. Nothing in
// this module calls it on a timer; expired rows stay until it is called.
func (dao *RevokedTokenDAO) SweepExpired(ctx context.Context) (int, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		res, err := tx.Run(
			`MATCH (r:`+echo_neo4j.LabelRevokedToken+`) WHERE r.expiresAt <= $now DETACH DELETE r`,
			map[string]interface{}{"now": time.Now().UTC().Format(time.RFC3339)},
		)
		if err != nil {
			return 0, echo_errors.ErrDatabaseOperation
		}
		summary, err := res.Consume()
		if err != nil {
			return 0, echo_errors.ErrDatabaseOperation
		}
		return summary.Counters().NodesDeleted(), nil
	})

	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func mapNodeToRevokedToken(node neo4j.Node) (model.RevokedToken, error) {
	props := node.Props
	t := model.RevokedToken{}
	t.JTI, _ = props["jti"].(string)
	if v, ok := props["revokedAt"].(string); ok {
		t.RevokedAt, _ = helper_util.ParseTime(v)
	}
	if v, ok := props["expiresAt"].(string); ok {
		t.ExpiresAt, _ = helper_util.ParseTime(v)
	}
	return t, nil
}
