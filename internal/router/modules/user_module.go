package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/rosterhq/roster/internal/interface/http"
	"github.com/rosterhq/roster/internal/interface/middleware"
)

// UserModule mounts the user CRUD, search and stats routes.
//
//	GET    /api/users          paginated list, optional ?search=
//	POST   /api/users          create
//	GET    /api/users/search   full-text search (Elasticsearch)
//	GET    /api/users/:id      fetch one
//	PUT    /api/users/:id      partial update
//	DELETE /api/users/:id      delete, returns the removed record
//	GET    /api/stats          service statistics
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil) // 300 req/min per IP
	writeLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil) // 60 req/min per IP
	searchLimiter := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	{
		users.GET("", readLimiter, m.Handler.List)
		users.POST("", writeLimiter, m.Handler.Create)
		users.GET("/search", searchLimiter, m.Handler.Search)
		users.GET("/:id", readLimiter, m.Handler.Get)
		users.PUT("/:id", writeLimiter, m.Handler.Update)
		users.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}

	rg.GET("/stats", readLimiter, m.Handler.Stats)
}
