package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"

	"github.com/gin-gonic/gin"
)

//
// DIRECTION / OBJECTIVES
//

type directionForm struct {
	Vision  string `form:"vision" validate:"required,max=2000"`
	Mission string `form:"mission" validate:"required,max=2000"`
	Goal    string `form:"goal" validate:"required,max=2000"`
}

// backWithError redirects to a page that shows ?error= above its content.
func backWithError(c *gin.Context, path, msg string) {
	c.Redirect(http.StatusFound, path+"?error="+url.QueryEscape(msg))
}

func (h *Handler) UpdateDirection(c *gin.Context) {
	var form directionForm
	if err := c.ShouldBind(&form); err != nil {
		backWithError(c, "/", "Invalid form data")
		return
	}
	form.Vision = strings.TrimSpace(form.Vision)
	form.Mission = strings.TrimSpace(form.Mission)
	form.Goal = strings.TrimSpace(form.Goal)
	if msg := h.check(form); msg != "" {
		backWithError(c, "/", msg)
		return
	}

	ctx := c.Request.Context()
	d := models.Direction{Vision: form.Vision, Mission: form.Mission, Goal: form.Goal}
	if err := h.store.SaveDirection(ctx, d); err != nil {
		h.fail(c, "save direction", err)
		return
	}
	h.audit(ctx, "direction", strconv.Itoa(models.DirectionID), "update", "")
	c.Redirect(http.StatusFound, "/")
}

type objectiveForm struct {
	Title       string `form:"title" validate:"required,max=255"`
	Description string `form:"description" validate:"max=2000"`
}

func (h *Handler) UpdateObjective(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}
	ctx := c.Request.Context()
	o, err := h.store.GetObjective(ctx, id)
	if err != nil {
		h.fail(c, "get objective", err)
		return
	}

	var form objectiveForm
	if err := c.ShouldBind(&form); err != nil {
		backWithError(c, "/", "Invalid form data")
		return
	}
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	if msg := h.check(form); msg != "" {
		backWithError(c, "/", msg)
		return
	}

	o.Title = form.Title
	o.Description = form.Description
	if err := h.store.SaveObjective(ctx, o); err != nil {
		h.fail(c, "save objective", err)
		return
	}
	h.audit(ctx, "objective", strconv.Itoa(o.ID), "update", o.Title)
	c.Redirect(http.StatusFound, "/")
}

//
// SUCCESS STORIES
//

func (h *Handler) Stories(c *gin.Context) {
	stories, err := h.store.ListStories(c.Request.Context())
	if err != nil {
		h.fail(c, "list stories", err)
		return
	}
	h.render(c, http.StatusOK, "stories.html", gin.H{"stories": stories, "error": c.Query("error")})
}

// AddStory appends a placeholder card for the admin to fill in.
func (h *Handler) AddStory(c *gin.Context) {
	ctx := c.Request.Context()
	s := planning.NewStory()
	if err := h.store.CreateStory(ctx, &s); err != nil {
		h.fail(c, "create story", err)
		return
	}
	h.audit(ctx, "story", strconv.FormatUint(uint64(s.ID), 10), "create", s.Title)
	c.Redirect(http.StatusFound, fmt.Sprintf("/stories#story-%d", s.ID))
}

type storyForm struct {
	Title       string `form:"title" validate:"required,max=255"`
	Subtitle    string `form:"subtitle" validate:"max=255"`
	Description string `form:"description" validate:"max=2000"`
	Link        string `form:"link" validate:"max=512"`
	ButtonText  string `form:"button_text" validate:"max=100"`
}

func (h *Handler) storyParam(c *gin.Context) (models.SuccessStory, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return models.SuccessStory{}, false
	}
	s, err := h.store.GetStory(c.Request.Context(), uint(id))
	if err != nil {
		h.fail(c, "get story", err)
		return models.SuccessStory{}, false
	}
	return s, true
}

func (h *Handler) UpdateStory(c *gin.Context) {
	s, ok := h.storyParam(c)
	if !ok {
		return
	}
	var form storyForm
	if err := c.ShouldBind(&form); err != nil {
		backWithError(c, "/stories", "Invalid form data")
		return
	}
	form.Title = strings.TrimSpace(form.Title)
	if msg := h.check(form); msg != "" {
		backWithError(c, "/stories", msg)
		return
	}

	s.Title = form.Title
	s.Subtitle = strings.TrimSpace(form.Subtitle)
	s.Description = strings.TrimSpace(form.Description)
	s.Link = strings.TrimSpace(form.Link)
	s.ButtonText = strings.TrimSpace(form.ButtonText)

	ctx := c.Request.Context()
	if err := h.store.SaveStory(ctx, &s); err != nil {
		h.fail(c, "save story", err)
		return
	}
	h.audit(ctx, "story", c.Param("id"), "update", s.Title)
	c.Redirect(http.StatusFound, fmt.Sprintf("/stories#story-%d", s.ID))
}

func (h *Handler) DeleteStory(c *gin.Context) {
	s, ok := h.storyParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.DeleteStory(ctx, s.ID); err != nil {
		h.fail(c, "delete story", err)
		return
	}
	h.audit(ctx, "story", c.Param("id"), "delete", s.Title)
	c.Redirect(http.StatusFound, "/stories")
}
