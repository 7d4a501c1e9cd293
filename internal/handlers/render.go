package handlers

import (
	"plan-dashboard/internal/planning"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// render wraps c.HTML and passes the admin flag and logo into every page.
func (h *Handler) render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["IsAdmin"] = isAdmin(c)
	data["Path"] = c.Request.URL.Path
	data["Today"] = planning.FormatDisplayDate(h.today())

	if logo, ok, err := h.media.Logo(c.Request.Context()); err != nil {
		h.log.Warn("load logo", zap.Error(err))
	} else if ok {
		data["Logo"] = logo
	}

	c.HTML(status, tmpl, data)
}

func isAdmin(c *gin.Context) bool {
	v, _ := c.Get("IsAdmin")
	ok, _ := v.(bool)
	return ok
}
