// api/controller/admin_user_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/util"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// AdminUserController supplements the implicit process-wide super-admin key
// with named human operators bound to a role and an optional team. Every
// route requires a super-admin caller.
type AdminUserController struct {
	adminUserService *service.AdminUserService
}

func NewAdminUserController(adminUserService *service.AdminUserService) *AdminUserController {
	return &AdminUserController{adminUserService: adminUserService}
}

func (ac *AdminUserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/admin/users")
	{
		users.POST("", ac.Create)
		users.GET("", ac.List)
		users.GET("/:id", ac.Get)
		users.DELETE("/:id", ac.Delete)
	}
}

func (ac *AdminUserController) Create(c *gin.Context) {
	var user model.AdminUser
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid admin user data", err)
		return
	}

	created, rawKey, err := ac.adminUserService.CreateAdminUser(c.Request.Context(), user)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid admin user data", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"admin_user": created, "admin_key": rawKey})
}

func (ac *AdminUserController) Get(c *gin.Context) {
	user, err := ac.adminUserService.GetAdminUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, echo_errors.ErrAdminUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to retrieve admin user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AdminUserController) List(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid pagination parameters", err)
		return
	}
	users, err := ac.adminUserService.ListAdminUsers(c.Request.Context(), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to list admin users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

func (ac *AdminUserController) Delete(c *gin.Context) {
	if err := ac.adminUserService.DeleteAdminUser(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, echo_errors.ErrAdminUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to delete admin user", err)
		return
	}
	c.Status(http.StatusNoContent)
}
