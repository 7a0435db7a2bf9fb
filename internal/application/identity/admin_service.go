package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/tallysync/backend/internal/domain/identity"
	"github.com/tallysync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserTypeAdmin tags login responses for back-office users
const UserTypeAdmin = "admin"

// LoginResult is returned by a successful admin login
type LoginResult struct {
	Admin    *identity.Admin
	UserType string
}

// AdminService resolves identity-provider users to admins
type AdminService struct {
	repo   identity.AdminRepository
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repo identity.AdminRepository, logger *zap.Logger) *AdminService {
	return &AdminService{repo: repo, logger: logger}
}

// Login looks up the admin linked to uid. An unknown uid yields
// identity.ErrAdminNotFound.
func (s *AdminService) Login(ctx context.Context, uid string) (*LoginResult, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, shared.ErrUnauthorized
	}

	admin, err := s.repo.FindByFirebaseUID(ctx, uid)
	if err != nil {
		if errors.Is(err, identity.ErrAdminNotFound) {
			s.logger.Warn("Login attempt for unknown admin", zap.String("uid", uid))
		} else {
			s.logger.Error("Failed to load admin", zap.String("uid", uid), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Admin logged in", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
	return &LoginResult{Admin: admin, UserType: UserTypeAdmin}, nil
}

// Roles returns the role rows for uid, empty when it is not linked
func (s *AdminService) Roles(ctx context.Context, uid string) ([]identity.AdminRole, error) {
	return s.repo.RolesByFirebaseUID(ctx, strings.TrimSpace(uid))
}

// Get returns an admin by id
func (s *AdminService) Get(ctx context.Context, id int64) (*identity.Admin, error) {
	if id <= 0 {
		return nil, identity.ErrAdminNotFound
	}
	return s.repo.FindByID(ctx, id)
}
