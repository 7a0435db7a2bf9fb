package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/domain/identity"
	"github.com/tallysync/backend/internal/domain/shared"
)

// MockAdminRepository is a mock implementation of identity.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) FindByID(ctx context.Context, id int64) (*identity.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func (m *MockAdminRepository) FindByFirebaseUID(ctx context.Context, uid string) (*identity.Admin, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func (m *MockAdminRepository) RolesByFirebaseUID(ctx context.Context, uid string) ([]identity.AdminRole, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).([]identity.AdminRole), args.Error(1)
}

func testAdmin() *identity.Admin {
	uid := "uid-1"
	return &identity.Admin{ID: 7, Username: "ops", Role: "admin", FirebaseUID: &uid}
}

func TestAdminService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("known uid", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByFirebaseUID", ctx, "uid-1").Return(testAdmin(), nil)
		svc := NewAdminService(repo, zap.NewNop())

		result, err := svc.Login(ctx, " uid-1 ")
		require.NoError(t, err)
		assert.Equal(t, int64(7), result.Admin.ID)
		assert.Equal(t, UserTypeAdmin, result.UserType)
		repo.AssertExpectations(t)
	})

	t.Run("unknown uid", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByFirebaseUID", ctx, "nobody").Return(nil, identity.ErrAdminNotFound)
		svc := NewAdminService(repo, zap.NewNop())

		_, err := svc.Login(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByFirebaseUID", ctx, "uid-1").Return(nil, errors.New("connection reset"))
		svc := NewAdminService(repo, zap.NewNop())

		_, err := svc.Login(ctx, "uid-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("blank uid", func(t *testing.T) {
		repo := new(MockAdminRepository)
		svc := NewAdminService(repo, zap.NewNop())

		_, err := svc.Login(ctx, "  ")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		repo.AssertNotCalled(t, "FindByFirebaseUID", mock.Anything, mock.Anything)
	})
}

func TestAdminService_Roles(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAdminRepository)
	repo.On("RolesByFirebaseUID", ctx, "uid-1").Return([]identity.AdminRole{{Role: "admin"}}, nil)
	svc := NewAdminService(repo, zap.NewNop())

	roles, err := svc.Roles(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, []identity.AdminRole{{Role: "admin"}}, roles)
}

func TestAdminService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("FindByID", ctx, int64(7)).Return(testAdmin(), nil)
		svc := NewAdminService(repo, zap.NewNop())

		admin, err := svc.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "ops", admin.Username)
	})

	t.Run("non-positive id", func(t *testing.T) {
		repo := new(MockAdminRepository)
		svc := NewAdminService(repo, zap.NewNop())

		_, err := svc.Get(ctx, 0)
		assert.ErrorIs(t, err, identity.ErrAdminNotFound)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
