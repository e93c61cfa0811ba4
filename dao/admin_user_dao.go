// api/dao/admin_user_dao.go
package dao

import (
	"context"
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

type AdminUserDAO struct {
	Driver neo4j.Driver
}

func NewAdminUserDAO(driver neo4j.Driver) *AdminUserDAO {
	dao := &AdminUserDAO{Driver: driver}
	if err := dao.EnsureUniqueConstraint(context.Background()); err != nil {
		logger.Fatal("Failed to ensure unique constraint for AdminUser", zap.Error(err))
	}
	return dao
}

func (dao *AdminUserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_admin_id IF NOT EXISTS
        FOR (u:` + echo_neo4j.LabelAdminUser + `) REQUIRE u.adminId IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *AdminUserDAO) CreateAdminUser(ctx context.Context, u model.AdminUser) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (u:` + echo_neo4j.LabelAdminUser + ` {adminId: $id})
        ON CREATE SET u += $props
        RETURN u.adminId as id
        `
		params := map[string]interface{}{
			"id": u.AdminID,
			"props": map[string]interface{}{
				"adminId":        u.AdminID,
				"displayName":    u.DisplayName,
				"credentialHash": u.CredentialHash,
				"keyPrefix":      u.KeyPrefix,
				"role":           string(u.Role),
				"team":           u.Team,
				"isActive":       u.IsActive,
				"createdAt":      time.Now().UTC().Format(time.RFC3339),
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
		logger.Error("Failed to create admin user", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", err
	}
	return fmt.Sprintf("%v", result), nil
}

func (dao *AdminUserDAO) GetAdminUser(ctx context.Context, adminID string) (*model.AdminUser, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (u:` + echo_neo4j.LabelAdminUser + ` {adminId: $id}) RETURN u`
	result, err := session.Run(query, map[string]interface{}{"id": adminID})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}
	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToAdminUser(node)
	}
	return nil, echo_errors.ErrAdminUserNotFound
}

func (dao *AdminUserDAO) GetByKeyPrefix(ctx context.Context, prefix string) (*model.AdminUser, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (u:` + echo_neo4j.LabelAdminUser + ` {keyPrefix: $prefix}) RETURN u`
	result, err := session.Run(query, map[string]interface{}{"prefix": prefix})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}
	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToAdminUser(node)
	}
	return nil, echo_errors.ErrAdminUserNotFound
}

func (dao *AdminUserDAO) ListAdminUsers(ctx context.Context, limit, offset int) ([]*model.AdminUser, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + echo_neo4j.LabelAdminUser + `)
    RETURN u ORDER BY u.createdAt DESC SKIP $offset LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{"limit": limit, "offset": offset})
	if err != nil {
		return nil, echo_errors.ErrDatabaseOperation
	}

	var users []*model.AdminUser
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		u, err := mapNodeToAdminUser(node)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (dao *AdminUserDAO) DeleteAdminUser(ctx context.Context, adminID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		res, err := tx.Run(
			`MATCH (u:`+echo_neo4j.LabelAdminUser+` {adminId: $id}) DETACH DELETE u`,
			map[string]interface{}{"id": adminID},
		)
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		summary, err := res.Consume()
		if err != nil {
			return nil, echo_errors.ErrDatabaseOperation
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, echo_errors.ErrAdminUserNotFound
		}
		return nil, nil
	})
	return err
}

func mapNodeToAdminUser(node neo4j.Node) (*model.AdminUser, error) {
	props := node.Props
	u := &model.AdminUser{}
	u.AdminID, _ = props["adminId"].(string)
	u.DisplayName, _ = props["displayName"].(string)
	u.CredentialHash, _ = props["credentialHash"].(string)
	u.KeyPrefix, _ = props["keyPrefix"].(string)
	if r, ok := props["role"].(string); ok {
		u.Role = model.AdminRole(r)
	}
	u.Team, _ = props["team"].(string)
	u.IsActive, _ = props["isActive"].(bool)
	if v, ok := props["createdAt"].(string); ok {
		u.CreatedAt, _ = helper_util.ParseTime(v)
	}
	return u, nil
}
