package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/agentguard/audit"
	"github.com/dev-mohitbeniwal/agentguard/config"
	"github.com/dev-mohitbeniwal/agentguard/controller"
	"github.com/dev-mohitbeniwal/agentguard/dao"
	"github.com/dev-mohitbeniwal/agentguard/db"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/middleware"
	"github.com/dev-mohitbeniwal/agentguard/router"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/token"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	logger.InitLogger()
	defer logger.Sync()

	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	eventBus := util.NewEventBus()
	busCtx, cancelBus := context.WithCancel(context.Background())
	defer cancelBus()
	eventBus.Start(busCtx)

	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()
	notificationService := util.NewNotificationService()
	metrics := util.NewMetricsRegistry()

	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	keyStore, err := token.NewKeyStore(cfg.Auth.JWTPrivateKey)
	if err != nil {
		logger.Fatal("Failed to initialize token signing key", zap.Error(err))
	}

	// DAOs
	agentDAO := dao.NewAgentDAO(db.Neo4jDriver)
	agentCredentialDAO := dao.NewAgentCredentialDAO(db.Neo4jDriver)
	agentPolicyDAO := dao.NewAgentPolicyDAO(db.Neo4jDriver)
	teamPolicyDAO := dao.NewTeamPolicyDAO(db.Neo4jDriver)
	adminUserDAO := dao.NewAdminUserDAO(db.Neo4jDriver)
	approvalDAO := dao.NewApprovalDAO(db.Neo4jDriver)
	revokedTokenDAO := dao.NewRevokedTokenDAO(db.Neo4jDriver)

	if err := rehydrateRevocationCache(context.Background(), revokedTokenDAO, cacheService); err != nil {
		logger.Warn("failed to rehydrate revocation cache from Neo4j", zap.Error(err))
	}

	// Services
	approvalService := service.NewApprovalService(
		approvalDAO, agentDAO, validationUtil, notificationService, eventBus,
		cfg.Webhook.URL, cfg.Webhook.Secret, metrics,
	)
	decisionService := service.NewDecisionService(
		agentDAO, agentPolicyDAO, teamPolicyDAO, cacheService,
		auditService, approvalService, metrics,
	)
	agentService := service.NewAgentService(
		agentDAO, agentCredentialDAO, validationUtil, notificationService, eventBus,
	)
	policyAdminService := service.NewPolicyAdminService(
		agentPolicyDAO, teamPolicyDAO, validationUtil, cacheService, notificationService, eventBus,
	)
	adminUserService := service.NewAdminUserService(adminUserDAO, validationUtil, notificationService)
	tokenService := service.NewTokenService(
		keyStore, agentDAO, agentCredentialDAO, adminUserDAO, revokedTokenDAO, cacheService,
		time.Duration(cfg.Auth.JWTAgentExpireSecs)*time.Second,
		time.Duration(cfg.Auth.JWTAdminExpireSecs)*time.Second,
		cfg.Auth.AdminAPIKey,
	)

	// Controllers
	tokenController := controller.NewTokenController(tokenService, keyStore)
	agentController := controller.NewAgentController(agentService, policyAdminService)
	teamPolicyController := controller.NewTeamPolicyController(policyAdminService)
	enforceController := controller.NewEnforceController(decisionService)
	logsController := controller.NewLogsController(auditService)
	approvalController := controller.NewApprovalController(approvalService)
	adminUserController := controller.NewAdminUserController(adminUserService)
	healthController := controller.NewHealthController(metrics)

	authGate := middleware.AuthGate(keyStore, adminUserDAO, agentDAO, agentCredentialDAO, revokedTokenDAO, cacheService, cfg.Auth.AdminAPIKey)

	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(
		authGate,
		cfg.CORS.Origins,
		tokenController,
		agentController,
		teamPolicyController,
		enforceController,
		logsController,
		approvalController,
		adminUserController,
		healthController,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	}

	go func() {
		logger.Info("Starting server", zap.String("host", cfg.Server.Host), zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// rehydrateRevocationCache loads every still-active revocation from Neo4j
// into the Redis hot-path cache at startup, so a process restart doesn't
// momentarily accept a token revoked before it went down.
func rehydrateRevocationCache(ctx context.Context, revokedDAO *dao.RevokedTokenDAO, cacheService *util.CacheService) error {
	active, err := revokedDAO.ListActive(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, t := range active {
		ttl := t.ExpiresAt.Sub(now)
		if ttl <= 0 {
			continue
		}
		if err := cacheService.SetRevokedToken(ctx, t.JTI, ttl); err != nil {
			logger.Warn("failed to cache revoked token during rehydration", zap.String("jti", t.JTI), zap.Error(err))
		}
	}
	logger.Info("revocation cache rehydrated", zap.Int("count", len(active)))
	return nil
}
