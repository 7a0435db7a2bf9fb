package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/tallysync/backend/internal/application/identity"
	"github.com/tallysync/backend/internal/domain/identity"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/interfaces/http/middleware"
)

// AdminService is the part of identityapp.AdminService the handler needs
type AdminService interface {
	Login(ctx context.Context, uid string) (*identityapp.LoginResult, error)
	Roles(ctx context.Context, uid string) ([]identity.AdminRole, error)
	Get(ctx context.Context, id int64) (*identity.Admin, error)
}

// AdminHandler serves the admin endpoints. Their bodies keep the shapes
// the web portal already parses, so they bypass dto.Response.
type AdminHandler struct {
	BaseHandler
	admins AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admins AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// LoginResponse is the body of a successful admin login
type LoginResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	User     *identity.Admin `json:"user"`
	UserType string          `json:"userType"`
}

// Me godoc
// @ID           getMeAdmin
// @Summary      Roles of the signed-in admin
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} identity.AdminRole
// @Router       /me-admin [get]
func (h *AdminHandler) Me(c *gin.Context) {
	roles, err := h.admins.Roles(c.Request.Context(), middleware.GetUID(c))
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to load admin roles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, roles)
}

// Login godoc
// @ID           loginAdmin
// @Summary      Sign in as an admin
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} LoginResponse
// @Failure      404 {object} map[string]any
// @Router       /login-admin [post]
func (h *AdminHandler) Login(c *gin.Context) {
	result, err := h.admins.Login(c.Request.Context(), middleware.GetUID(c))
	if err != nil {
		if errors.Is(err, identity.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Admin not found. Please sign up first.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Database error",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:  true,
		Message:  "Admin login successful",
		User:     result.Admin,
		UserType: result.UserType,
	})
}

// Get godoc
// @ID           getAdmin
// @Summary      Get an admin by id
// @Tags         admin
// @Produce      json
// @Param        id path int true "Admin ID"
// @Success      200 {object} identity.Admin
// @Failure      400 {object} map[string]any
// @Router       /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	raw := c.Param("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin ID is required"})
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// a malformed id matches no row
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin not found"})
		return
	}

	admin, err := h.admins.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, identity.ErrAdminNotFound):
		// the portal expects 400 for a missing admin
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin not found"})
	case err != nil:
		logger.GetGinLogger(c).Error("Failed to load admin", zap.Int64("admin_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	default:
		c.JSON(http.StatusOK, admin)
	}
}
