package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"plan-dashboard/internal/media"

	"github.com/gin-gonic/gin"
)

func (h *Handler) MediaLibrary(c *gin.Context) {
	items, err := h.media.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list media", err)
		return
	}
	h.render(c, http.StatusOK, "media.html", gin.H{
		"items":    items,
		"driver":   h.media.Store().Driver(),
		"maxBytes": h.media.MaxBytes(),
		"error":    c.Query("error"),
	})
}

func mediaError(c *gin.Context, msg string) {
	c.Redirect(http.StatusFound, "/media?error="+url.QueryEscape(msg))
}

func (h *Handler) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		mediaError(c, "Choose an image to upload")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, "open upload", err)
		return
	}
	defer f.Close()

	var r io.Reader = f
	if limit := h.media.MaxBytes(); limit > 0 {
		r = io.LimitReader(f, int64(limit)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		h.fail(c, "read upload", err)
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fh.Filename
	}
	ctx := c.Request.Context()
	item, err := h.media.Add(ctx, name, data)
	switch {
	case errors.Is(err, media.ErrNotImage):
		mediaError(c, "Only image files can be uploaded")
		return
	case errors.Is(err, media.ErrTooLarge):
		mediaError(c, "The image is too large")
		return
	case err != nil:
		h.fail(c, "add media", err)
		return
	}
	h.audit(ctx, "media", item.ID, "create", item.Name+" ("+item.Type+")")
	c.Redirect(http.StatusFound, "/media")
}

// RawMedia serves image bytes; it is public so the logo shows on every page.
func (h *Handler) RawMedia(c *gin.Context) {
	item, err := h.media.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get media", err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, item.Type, item.Data)
}

func (h *Handler) RenameMedia(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := h.media.Rename(ctx, c.Param("id"), c.PostForm("name"))
	if errors.Is(err, media.ErrNameRequired) {
		mediaError(c, "Name cannot be empty")
		return
	}
	if err != nil {
		h.fail(c, "rename media", err)
		return
	}
	h.audit(ctx, "media", item.ID, "rename", item.Name)
	c.Redirect(http.StatusFound, "/media")
}

func (h *Handler) DeleteMedia(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.media.Delete(ctx, id); err != nil {
		h.fail(c, "delete media", err)
		return
	}
	h.audit(ctx, "media", id, "delete", "")
	c.Redirect(http.StatusFound, "/media")
}

func (h *Handler) SetLogo(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.media.SetLogo(ctx, id); err != nil {
		h.fail(c, "set logo", err)
		return
	}
	h.audit(ctx, "logo", id, "update", "Custom logo set")
	c.Redirect(http.StatusFound, "/media")
}

func (h *Handler) ResetLogo(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.media.ResetLogo(ctx); err != nil {
		h.fail(c, "reset logo", err)
		return
	}
	h.audit(ctx, "logo", "", "reset", "Default logo restored")
	c.Redirect(http.StatusFound, "/media")
}
