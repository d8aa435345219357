package http

import (
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the postgres-backed handlers onto the engine.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config) {
	users := repository.NewUserRepository(db)
	tasks := service.NewTaskService(repository.NewTaskRepository(db))
	tokens := auth.NewTokens(cfg.JWTSecret)

	h := handlers.New(users, tasks, tokens, cfg.CookieSecure)
	Register(r, h, handlers.NewHealthHandler(db), cfg.AuthRateLimit, cfg.AuthRateWindow)
}

// Register attaches all routes to the engine. Split out from RegisterRoutes
// so tests can supply their own handler wiring.
func Register(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, authRateLimit int, authRateWindow time.Duration) {
	r.GET("/health", health.Health)

	authRL := middleware.RedisRateLimit(authRateLimit, authRateWindow)
	r.POST("/register", authRL, h.Register)
	r.POST("/login", authRL, h.Login)
	r.POST("/logout", h.Logout)

	authed := middleware.Auth(h.Tokens)
	r.GET("/me", authed, h.Me)

	r.GET("/tasks", authed, h.ListTasks)
	r.POST("/tasks", authed, h.CreateTask)
	r.PUT("/tasks/:id", authed, h.UpdateTask)
	r.DELETE("/tasks/:id", authed, h.DeleteTask)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "endpoint not found",
			"message": fmt.Sprintf("%s %s is not a valid endpoint", c.Request.Method, c.Request.URL.Path),
		})
	})
}
