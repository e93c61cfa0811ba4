// test/mock/audit.go
package mock

import (
	"context"

	"github.com/dev-mohitbeniwal/agentguard/audit"
	"github.com/stretchr/testify/mock"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Submit(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(audit.Entry), args.Error(1)
}

func (m *MockAuditService) Query(ctx context.Context, criteria audit.QueryCriteria) ([]audit.Entry, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]audit.Entry), args.Error(1)
}

func (m *MockAuditService) VerifyChain(ctx context.Context, agentID string) (audit.VerifyResult, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).(audit.VerifyResult), args.Error(1)
}
