package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newBodyLimitRouter(limit int64, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(logger.GinMiddleware(log), BodyLimit(limit))
	router.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	t.Run("passes bodies within the limit", func(t *testing.T) {
		router := newBodyLimitRouter(16, zap.NewNop())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "small", w.Body.String())
	})

	t.Run("rejects declared length over the limit and logs it", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		router := newBodyLimitRouter(4, zap.New(core))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("far too long")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())

		entries := recorded.FilterMessage("Request body over limit").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "/echo", fields["path"])
		assert.Equal(t, int64(12), fields["content_length"])
		assert.Equal(t, int64(4), fields["limit"])
	})

	t.Run("caps bodies of unknown length while reading", func(t *testing.T) {
		router := newBodyLimitRouter(4, zap.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/echo", io.NopCloser(strings.NewReader("far too long")))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("non-positive limit disables the check", func(t *testing.T) {
		router := newBodyLimitRouter(0, zap.NewNop())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("anything goes")))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
