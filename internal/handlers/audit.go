package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAuditLogs(c *gin.Context) {
	logs, err := h.store.ListAudit(c.Request.Context(), auditLimit)
	if err != nil {
		h.fail(c, "list audit", err)
		return
	}
	h.render(c, http.StatusOK, "audit_list.html", gin.H{"logs": logs})
}
