package middleware

import "github.com/gin-gonic/gin"

// InjectAdmin exposes the admin flag to handlers and templates as "IsAdmin".
func InjectAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("IsAdmin", adminSession(c))
		c.Next()
	}
}
