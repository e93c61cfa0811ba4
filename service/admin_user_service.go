// api/service/admin_user_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dev-mohitbeniwal/agentguard/dao"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// AdminUserService manages named human operators (spec.md §3's AdminUser),
// supplementing the implicit process-wide super-admin key with per-person
// accounts that carry a role and an optional team scope.
type AdminUserService struct {
	adminDAO       *dao.AdminUserDAO
	validationUtil *util.ValidationUtil
	notificationSvc *util.NotificationService
}

func NewAdminUserService(adminDAO *dao.AdminUserDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService) *AdminUserService {
	return &AdminUserService{adminDAO: adminDAO, validationUtil: validationUtil, notificationSvc: notificationSvc}
}

// CreateAdminUser issues a new admin account and its one-time static key.
func (s *AdminUserService) CreateAdminUser(ctx context.Context, user model.AdminUser) (*model.AdminUser, string, error) {
	user.AdminID = "adm_" + uuid.NewString()
	user.IsActive = true
	user.CreatedAt = time.Now().UTC()

	if err := s.validationUtil.ValidateAdminUser(user); err != nil {
		return nil, "", err
	}

	rawKey, hash, prefix, err := util.GenerateSecret()
	if err != nil {
		return nil, "", err
	}
	user.CredentialHash = hash
	user.KeyPrefix = prefix

	if _, err := s.adminDAO.CreateAdminUser(ctx, user); err != nil {
		return nil, "", err
	}

	if err := s.notificationSvc.NotifyAdmins(ctx, "new admin user created: "+user.DisplayName); err != nil {
		return nil, "", err
	}
	return &user, rawKey, nil
}

func (s *AdminUserService) GetAdminUser(ctx context.Context, adminID string) (*model.AdminUser, error) {
	return s.adminDAO.GetAdminUser(ctx, adminID)
}

func (s *AdminUserService) ListAdminUsers(ctx context.Context, limit, offset int) ([]*model.AdminUser, error) {
	return s.adminDAO.ListAdminUsers(ctx, limit, offset)
}

func (s *AdminUserService) DeleteAdminUser(ctx context.Context, adminID string) error {
	return s.adminDAO.DeleteAdminUser(ctx, adminID)
}
