package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallysync/backend/internal/infrastructure/auth"
)

type stubVerifier struct {
	tokens map[string]string
}

func (s stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if uid, ok := s.tokens[token]; ok {
		return &auth.Identity{UID: uid}, nil
	}
	return nil, auth.ErrInvalidToken
}

func newAuthRouter() *gin.Engine {
	router := gin.New()
	router.Use(BearerAuth(stubVerifier{tokens: map[string]string{"good": "uid-1"}}))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": GetUID(c), "identity": GetIdentity(c).UID})
	})
	return router
}

func TestBearerAuth(t *testing.T) {
	router := newAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"error":"No token provided"}`},
		{"scheme only", "Bearer", http.StatusUnauthorized, `{"error":"No token provided"}`},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"valid token", "Bearer good", http.StatusOK, `{"uid":"uid-1","identity":"uid-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestGetIdentity_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetIdentity(c))
	assert.Empty(t, GetUID(c))
}

func TestAPIKey(t *testing.T) {
	router := gin.New()
	router.Use(APIKey("bridge-secret"))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for _, key := range []string{"", "wrong", "bridge-secret-but-longer"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, "key %q", key)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, map[string]string{"error": "Unauthorized", "message": "Invalid or missing API key"}, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(APIKeyHeader, "bridge-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKey_EmptyKeyRejectsAll(t *testing.T) {
	router := gin.New()
	router.Use(APIKey(""))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(APIKeyHeader, "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
