package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AdminSessionKey is the session flag set by a successful password check.
const AdminSessionKey = "admin"

func adminSession(c *gin.Context) bool {
	v, _ := sessions.Default(c).Get(AdminSessionKey).(bool)
	return v
}

// RequireAdmin sends visitors without admin mode to the password page.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !adminSession(c) {
			target := "/admin/login"
			if c.Request.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
