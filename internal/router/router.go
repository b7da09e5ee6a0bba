package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskforge/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New assembles the canonical routing table under /api/v1.
func New(handlers Handlers, auth Middleware, limit Middleware) *router.Router {
	r := router.New()

	if limit == nil {
		limit = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}

	r.GET("/api/v1/healthcheck", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/signup", limit(handlers.Auth.Signup))
	r.POST("/api/v1/auth/login", limit(handlers.Auth.Login))
	r.POST("/api/v1/auth/refresh-token", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", auth(handlers.Auth.Logout))
	r.GET("/api/v1/auth/current-user", auth(handlers.Auth.CurrentUser))
	r.PUT("/api/v1/auth/update-user", auth(handlers.Auth.UpdateUser))
	r.PUT("/api/v1/auth/change-password", auth(handlers.Auth.ChangePassword))

	// Task routes. Static paths register before the {id} captures.
	r.GET("/api/v1/tasks", auth(handlers.Task.List))
	r.POST("/api/v1/tasks", auth(handlers.Task.Create))
	r.GET("/api/v1/tasks/stats", auth(handlers.Task.Stats))
	r.GET("/api/v1/tasks/activity", auth(handlers.Task.Activity))
	r.GET("/api/v1/tasks/{id}", auth(handlers.Task.Get))
	r.PUT("/api/v1/tasks/{id}", auth(handlers.Task.Update))
	r.DELETE("/api/v1/tasks/{id}", auth(handlers.Task.Delete))
	r.POST("/api/v1/tasks/{id}/toggle", auth(handlers.Task.Toggle))

	return r
}
