package handlers

import (
	"net/http"

	"plan-dashboard/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) ShowLogin(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"error": "", "next": c.Query("next")})
}

type loginForm struct {
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Invalid form data", "next": c.PostForm("next")})
		return
	}
	if msg := h.check(form); msg != "" {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{"error": msg, "next": form.Next})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(form.Password)); err != nil {
		h.log.Warn("admin login failed")
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{"error": "Incorrect password", "next": form.Next})
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.AdminSessionKey, true)
	if err := sess.Save(); err != nil {
		h.fail(c, "save session", err)
		return
	}
	h.audit(c.Request.Context(), "session", "", "login", "Admin mode enabled")

	c.Redirect(http.StatusFound, safeNext(form.Next))
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/")
}

// safeNext only allows local paths as a post-login target.
func safeNext(next string) string {
	if len(next) > 1 && next[0] == '/' && next[1] != '/' && next[1] != '\\' {
		return next
	}
	return "/dashboard"
}
