package middleware

import "github.com/gin-gonic/gin"

type ContextKey string

const (
	ContextUserID      ContextKey = "user_id"
	ContextEmployeeID  ContextKey = "employee_id"
	ContextRole        ContextKey = "role"
	ContextValidatedID ContextKey = "user_id_validated"
	ContextRequestID   ContextKey = "request_id"
)

// GetString reads a string value set by one of the middlewares in this package.
func GetString(c *gin.Context, key ContextKey) string {
	return c.GetString(string(key))
}
