// api/dao/approval_dao_test.go
package dao_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	mockpkg "github.com/dev-mohitbeniwal/agentguard/test/mock"
)

func TestApprovalDAO_EnsureUniqueConstraint_PropagatesDriverError(t *testing.T) {
	session := &mockpkg.MockSession{}
	driver := &mockpkg.MockDriver{}

	driver.On("NewSession", neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite}).Return(session)
	session.On("WriteTransaction", mock.Anything, mock.Anything).Return(nil, errors.New("constraint creation failed"))
	session.On("Close").Return(nil)

	a := &dao.ApprovalDAO{Driver: driver}
	err := a.EnsureUniqueConstraint(context.Background())

	assert.EqualError(t, err, "constraint creation failed")
	driver.AssertExpectations(t)
	session.AssertExpectations(t)
}

func TestApprovalDAO_GetApproval_NotFound(t *testing.T) {
	session := &mockpkg.MockSession{}
	result := &mockpkg.MockResult{}
	driver := &mockpkg.MockDriver{}

	driver.On("NewSession", neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead}).Return(session)
	session.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(result, nil)
	session.On("Close").Return(nil)
	result.On("Next").Return(false)

	a := &dao.ApprovalDAO{Driver: driver}
	got, err := a.GetApproval(context.Background(), "ap_missing")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, echo_errors.ErrApprovalNotFound)
	driver.AssertExpectations(t)
	session.AssertExpectations(t)
	result.AssertExpectations(t)
}
