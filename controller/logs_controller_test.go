// api/controller/logs_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/agentguard/audit"
	"github.com/dev-mohitbeniwal/agentguard/controller"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/middleware"
	mockpkg "github.com/dev-mohitbeniwal/agentguard/test/mock"
)

func setupLogsRouter(identity middleware.Identity) (*gin.Engine, *mockpkg.MockAuditService) {
	logger.InitLogger()

	mockAudit := &mockpkg.MockAuditService{}
	lc := controller.NewLogsController(mockAudit)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, identity)
		c.Next()
	})
	api := r.Group("/")
	lc.RegisterRoutes(api)
	return r, mockAudit
}

func TestLogsController_Submit(t *testing.T) {
	agentIdentity := middleware.Identity{Kind: middleware.KindAgent, SubjectID: "agt_1"}
	router, mockAudit := setupLogsRouter(agentIdentity)

	mockAudit.On("Submit", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.AgentID == "agt_1" && e.Action == "read_file"
	})).Return(audit.Entry{LogID: "log_1", AgentID: "agt_1", Action: "read_file"}, nil)

	body := strings.NewReader(`{"action":"read_file","result":"success","allowed":true}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/logs", body)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockAudit.AssertExpectations(t)
}

func TestLogsController_Query_AgentScopedToSelf(t *testing.T) {
	agentIdentity := middleware.Identity{Kind: middleware.KindAgent, SubjectID: "agt_1"}
	router, mockAudit := setupLogsRouter(agentIdentity)

	mockAudit.On("Query", mock.Anything, mock.MatchedBy(func(c audit.QueryCriteria) bool {
		return c.AgentID == "agt_1"
	})).Return([]audit.Entry{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/logs?agent_id=someone_else", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAudit.AssertExpectations(t)
}

func TestLogsController_VerifyChain_MissingAgentID(t *testing.T) {
	adminIdentity := middleware.Identity{Kind: middleware.KindAdmin, SubjectID: "admin_1"}
	router, mockAudit := setupLogsRouter(adminIdentity)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/logs/verify", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockAudit.AssertNotCalled(t, "VerifyChain", mock.Anything, mock.Anything)
}
