package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityapp "github.com/tallysync/backend/internal/application/identity"
	"github.com/tallysync/backend/internal/domain/identity"
	"github.com/tallysync/backend/internal/interfaces/http/middleware"
)

type mockAdminService struct {
	mock.Mock
}

func (m *mockAdminService) Login(ctx context.Context, uid string) (*identityapp.LoginResult, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.LoginResult), args.Error(1)
}

func (m *mockAdminService) Roles(ctx context.Context, uid string) ([]identity.AdminRole, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).([]identity.AdminRole), args.Error(1)
}

func (m *mockAdminService) Get(ctx context.Context, id int64) (*identity.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func strPtr(s string) *string { return &s }

func sampleAdmin() *identity.Admin {
	return &identity.Admin{
		ID:          3,
		Username:    "ops",
		Email:       strPtr("ops@example.com"),
		Role:        "admin",
		FirebaseUID: strPtr("uid-1"),
	}
}

func TestAdminHandler_Me(t *testing.T) {
	svc := new(mockAdminService)
	svc.On("Roles", mock.Anything, "uid-1").Return([]identity.AdminRole{{Role: "admin"}}, nil)
	h := NewAdminHandler(svc)

	c, w := newTestContext(http.MethodGet, "/me-admin", nil)
	c.Set(middleware.UIDKey, "uid-1")
	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"role":"admin"}]`, w.Body.String())
}

func TestAdminHandler_Me_Empty(t *testing.T) {
	svc := new(mockAdminService)
	svc.On("Roles", mock.Anything, "uid-2").Return([]identity.AdminRole{}, nil)
	h := NewAdminHandler(svc)

	c, w := newTestContext(http.MethodGet, "/me-admin", nil)
	c.Set(middleware.UIDKey, "uid-2")
	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockAdminService)
		svc.On("Login", mock.Anything, "uid-1").
			Return(&identityapp.LoginResult{Admin: sampleAdmin(), UserType: identityapp.UserTypeAdmin}, nil)
		h := NewAdminHandler(svc)

		c, w := newTestContext(http.MethodPost, "/login-admin", nil)
		c.Set(middleware.UIDKey, "uid-1")
		h.Login(c)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Admin login successful", body["message"])
		assert.Equal(t, "admin", body["userType"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "ops", user["username"])
		assert.Equal(t, "uid-1", user["firebase_uid"])
	})

	t.Run("unknown admin", func(t *testing.T) {
		svc := new(mockAdminService)
		svc.On("Login", mock.Anything, "uid-9").Return(nil, identity.ErrAdminNotFound)
		h := NewAdminHandler(svc)

		c, w := newTestContext(http.MethodPost, "/login-admin", nil)
		c.Set(middleware.UIDKey, "uid-9")
		h.Login(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Admin not found. Please sign up first."}`, w.Body.String())
	})

	t.Run("database error", func(t *testing.T) {
		svc := new(mockAdminService)
		svc.On("Login", mock.Anything, "uid-1").Return(nil, errors.New("connection reset"))
		h := NewAdminHandler(svc)

		c, w := newTestContext(http.MethodPost, "/login-admin", nil)
		c.Set(middleware.UIDKey, "uid-1")
		h.Login(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Database error"}`, w.Body.String())
	})
}

func TestAdminHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(mockAdminService)
		svc.On("Get", mock.Anything, int64(3)).Return(sampleAdmin(), nil)
		h := NewAdminHandler(svc)

		c, w := newTestContext(http.MethodGet, "/admins/3", nil)
		c.Params = gin.Params{{Key: "id", Value: "3"}}
		h.Get(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), decodeBody(t, w)["id"])
	})

	t.Run("missing admin is a 400", func(t *testing.T) {
		svc := new(mockAdminService)
		svc.On("Get", mock.Anything, int64(99)).Return(nil, identity.ErrAdminNotFound)
		h := NewAdminHandler(svc)

		c, w := newTestContext(http.MethodGet, "/admins/99", nil)
		c.Params = gin.Params{{Key: "id", Value: "99"}}
		h.Get(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Admin not found"}`, w.Body.String())
	})

	t.Run("non-numeric id", func(t *testing.T) {
		svc := new(mockAdminService)
		h := NewAdminHandler(svc)

		c, w := newTestContext(http.MethodGet, "/admins/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}
		h.Get(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("empty id", func(t *testing.T) {
		h := NewAdminHandler(new(mockAdminService))

		c, w := newTestContext(http.MethodGet, "/admins/", nil)
		h.Get(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Admin ID is required"}`, w.Body.String())
	})
}
