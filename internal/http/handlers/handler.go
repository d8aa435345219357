package handlers

import (
	"taskboard/internal/auth"
	"taskboard/internal/http/middleware"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	Users        service.UserRepository
	Tasks        *service.TaskService
	Tokens       *auth.Tokens
	CookieSecure bool
}

func New(users service.UserRepository, tasks *service.TaskService, tokens *auth.Tokens, cookieSecure bool) *Handler {
	return &Handler{
		Users:        users,
		Tasks:        tasks,
		Tokens:       tokens,
		CookieSecure: cookieSecure,
	}
}

// getUserID extracts the authenticated user id set by the auth middleware.
func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
