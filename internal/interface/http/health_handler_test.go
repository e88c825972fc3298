package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/rosterhq/roster/internal/interface/http"
	"github.com/rosterhq/roster/internal/router/modules"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newHealthRouter(db handlers.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	modules.NewHealthModule(handlers.NewHealthHandler(db, nil)).Register(api)
	return r
}

func getHealth(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthAllUp(t *testing.T) {
	r := newHealthRouter(pingFunc(func(ctx context.Context) error { return nil }))

	rec := getHealth(r)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Status     string            `json:"status"`
			Uptime     string            `json:"uptime"`
			Goroutines int               `json:"goroutines"`
			Checks     map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, "up", env.Data.Checks["postgres"])
	assert.Greater(t, env.Data.Goroutines, 0)
}

func TestHealthStoreDown(t *testing.T) {
	r := newHealthRouter(pingFunc(func(ctx context.Context) error { return errors.New("no route to host") }))

	rec := getHealth(r)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unavailable"`)
	assert.Contains(t, rec.Body.String(), `"postgres":"down"`)
	assert.NotContains(t, rec.Body.String(), "no route to host")
}

func TestHealthWithoutCollaborators(t *testing.T) {
	r := newHealthRouter(nil)

	rec := getHealth(r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
