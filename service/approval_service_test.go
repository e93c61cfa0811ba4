// api/service/approval_service_test.go
package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

func newApprovalServiceForDecisionTest() service.ApprovalService {
	bus := util.NewEventBus()
	return service.NewApprovalService(
		nil, nil, util.NewValidationUtil(), util.NewNotificationService(), bus,
		"", "", util.NewMetricsRegistry(),
	)
}

func TestApprovalService_Decide_DeniedWithoutReason(t *testing.T) {
	s := newApprovalServiceForDecisionTest()

	_, err := s.Decide(context.Background(), "ap_1", model.ApprovalDenied, "admin_1", "")

	assert.True(t, errors.Is(err, echo_errors.ErrInvalidApprovalData))
}

func TestApprovalService_Decide_InvalidStatus(t *testing.T) {
	s := newApprovalServiceForDecisionTest()

	_, err := s.Decide(context.Background(), "ap_1", model.ApprovalPending, "admin_1", "")

	assert.True(t, errors.Is(err, echo_errors.ErrInvalidApprovalData))
}
