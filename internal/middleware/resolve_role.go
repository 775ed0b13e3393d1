package middleware

import (
	"context"

	"go-leave/internal/authz"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ActorResolver loads the stored role and employee link of a user.
type ActorResolver interface {
	GetActor(ctx context.Context, userID string) (authz.Actor, error)
}

// ResolveRole replaces the token's role and employee claims with the values
// stored for the user, so RBACAuthorize and the request policies read the
// same source. Must run after ExtractUserID.
func ResolveRole(actors ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(string(ContextValidatedID))

		actor, err := actors.GetActor(c.Request.Context(), userID)
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Set(string(ContextRole), actor.Role.String())
		c.Set(string(ContextEmployeeID), actor.EmployeeID)
		c.Next()
	}
}
