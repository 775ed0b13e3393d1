package user

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	jwtSecret string,
	logger *zap.Logger,
) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware(jwtSecret))
	users.Use(middleware.ExtractUserID())
	users.Use(middleware.ContextLogger(logger))
	{
		users.GET("/me",
			middleware.RateLimitByUser(3, 10),
			handler.GetMe,
		)
	}
}
