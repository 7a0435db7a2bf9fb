package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestMount(t *testing.T) {
	engine := gin.New()
	Mount(engine.Group(APIPrefix),
		NewDomainGroup("/a").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "a") }),
		NewDomainGroup("/b").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "b") }),
	)

	assert.Equal(t, "a", get(engine, http.MethodGet, "/api/v1/a/ping").Body.String())
	assert.Equal(t, "b", get(engine, http.MethodGet, "/api/v1/b/ping").Body.String())
	assert.Equal(t, http.StatusNotFound, get(engine, http.MethodGet, "/a/ping").Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("registers GET and POST routes", func(t *testing.T) {
		engine := gin.New()
		NewDomainGroup("/sync").
			GET("/status", func(c *gin.Context) { c.String(http.StatusOK, "status") }).
			POST("/:kind", func(c *gin.Context) { c.String(http.StatusAccepted, c.Param("kind")) }).
			RegisterRoutes(engine.Group(APIPrefix))

		assert.Equal(t, http.StatusOK, get(engine, http.MethodGet, "/api/v1/sync/status").Code)

		w := get(engine, http.MethodPost, "/api/v1/sync/items")
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "items", w.Body.String())
	})

	t.Run("middleware only covers the group", func(t *testing.T) {
		engine := gin.New()
		guard := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
		Mount(engine.Group(APIPrefix),
			NewDomainGroup("/sync").Use(guard).GET("/status", func(c *gin.Context) { c.Status(http.StatusOK) }),
			NewDomainGroup("/open").GET("/status", func(c *gin.Context) { c.Status(http.StatusOK) }),
		)

		assert.Equal(t, http.StatusUnauthorized, get(engine, http.MethodGet, "/api/v1/sync/status").Code)
		assert.Equal(t, http.StatusOK, get(engine, http.MethodGet, "/api/v1/open/status").Code)
	})
}
