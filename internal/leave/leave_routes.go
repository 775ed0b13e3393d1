package leave

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret string
	// Actors supplies the stored role checked by the route gate.
	Actors    middleware.ActorResolver
	RateLimit rate.Limit
	RateBurst int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	cfg RouteConfig,
	logger *zap.Logger,
) {
	limit := middleware.RateLimitByUser(cfg.RateLimit, cfg.RateBurst)

	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	leaves.Use(middleware.ExtractUserID())
	leaves.Use(middleware.ResolveRole(cfg.Actors))
	leaves.Use(middleware.ContextLogger(logger))
	leaves.Use(limit)
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetMine)
		leaves.GET("/pending", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.GetPending)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetByID)

		leaves.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			middleware.Idempotency(rdb, logger),
			handler.Submit,
		)

		decide := leaves.Group("/decide/:id")
		decide.Use(middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide))
		{
			decide.POST("/approve", handler.Approve)
			decide.POST("/reject", handler.Reject)
		}
	}
}
