package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"

	"github.com/gin-gonic/gin"
)

//
// OVERVIEW
//

type objectiveView struct {
	models.Objective
	Thrusts []models.Thrust
}

func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	initiatives, err := h.store.ListInitiatives(ctx)
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}
	kpis, err := h.store.ListKPIs(ctx)
	if err != nil {
		h.fail(c, "list kpis", err)
		return
	}

	direction, err := h.store.GetDirection(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.fail(c, "get direction", err)
		return
	}
	stored, err := h.store.ListObjectives(ctx)
	if err != nil {
		h.fail(c, "list objectives", err)
		return
	}
	objectives := make([]objectiveView, 0, len(stored))
	for _, o := range stored {
		objectives = append(objectives, objectiveView{Objective: o, Thrusts: h.data.ObjectiveThrusts(o)})
	}

	today := h.today()
	views := h.classifier.ClassifyAll(initiatives, today)

	h.render(c, http.StatusOK, "overview.html", gin.H{
		"direction":  direction,
		"objectives": objectives,
		"error":      c.Query("error"),
		"counts":     statusCounts(planning.CountByStatus(views)),
		"total":      len(views),
		"summary":    planning.Summarize(planning.DeriveAll(kpis, initiatives), today),
	})
}

type statusCount struct {
	Status planning.Status
	Count  int
}

// statusCounts orders counts by status precedence for display.
func statusCounts(m map[planning.Status]int) []statusCount {
	out := make([]statusCount, 0, len(planning.Statuses))
	for _, s := range planning.Statuses {
		out = append(out, statusCount{Status: s, Count: m[s]})
	}
	return out
}

//
// THRUSTS
//

type thrustView struct {
	models.Thrust
	Initiatives int
	AvgProgress float64
	Counts      []statusCount
}

func (h *Handler) Thrusts(c *gin.Context) {
	initiatives, err := h.store.ListInitiatives(c.Request.Context())
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}
	views := h.classifier.ClassifyAll(initiatives, h.today())

	byThrust := make(map[int][]planning.InitiativeView)
	for _, v := range views {
		byThrust[v.ThrustID] = append(byThrust[v.ThrustID], v)
	}

	thrusts := make([]thrustView, 0, len(h.data.Thrusts))
	for _, t := range h.data.Thrusts {
		list := byThrust[t.ID]
		tv := thrustView{Thrust: t, Initiatives: len(list), Counts: statusCounts(planning.CountByStatus(list))}
		if len(list) > 0 {
			sum := 0
			for _, v := range list {
				sum += v.Progress
			}
			tv.AvgProgress = float64(sum) / float64(len(list))
		}
		thrusts = append(thrusts, tv)
	}

	h.render(c, http.StatusOK, "thrusts.html", gin.H{"thrusts": thrusts})
}

//
// ROADMAP
//

func (h *Handler) Roadmap(c *gin.Context) {
	tiers, err := h.store.ListTiers(c.Request.Context())
	if err != nil {
		h.fail(c, "list tiers", err)
		return
	}
	h.render(c, http.StatusOK, "roadmap.html", gin.H{"tiers": tiers, "error": c.Query("error")})
}

type milestoneForm struct {
	Text string `form:"text" validate:"required,max=2000"`
}

func (h *Handler) bindMilestone(c *gin.Context) (milestoneForm, bool) {
	var form milestoneForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, "/roadmap?error=Invalid+form+data")
		return form, false
	}
	form.Text = strings.TrimSpace(form.Text)
	if msg := h.check(form); msg != "" {
		c.Redirect(http.StatusFound, "/roadmap?error="+url.QueryEscape(msg))
		return form, false
	}
	return form, true
}

func (h *Handler) AddMilestone(c *gin.Context) {
	tierID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}
	form, ok := h.bindMilestone(c)
	if !ok {
		return
	}
	m, err := h.store.AddMilestone(c.Request.Context(), uint(tierID), form.Text)
	if err != nil {
		h.fail(c, "add milestone", err)
		return
	}
	h.audit(c.Request.Context(), "milestone", strconv.FormatUint(uint64(m.ID), 10), "create", m.Text)
	c.Redirect(http.StatusFound, "/roadmap")
}

func (h *Handler) UpdateMilestone(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}
	form, ok := h.bindMilestone(c)
	if !ok {
		return
	}
	if err := h.store.UpdateMilestone(c.Request.Context(), uint(id), form.Text); err != nil {
		h.fail(c, "update milestone", err)
		return
	}
	h.audit(c.Request.Context(), "milestone", c.Param("id"), "update", form.Text)
	c.Redirect(http.StatusFound, "/roadmap")
}

func (h *Handler) DeleteMilestone(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteMilestone(c.Request.Context(), uint(id)); err != nil {
		h.fail(c, "delete milestone", err)
		return
	}
	h.audit(c.Request.Context(), "milestone", c.Param("id"), "delete", "")
	c.Redirect(http.StatusFound, "/roadmap")
}

//
// FINANCIALS
//

type financialLine struct {
	models.ThrustFinancial
	Title       string
	Utilisation float64
}

func (h *Handler) Financials(c *gin.Context) {
	lines, err := h.store.ListFinancials(c.Request.Context())
	if err != nil {
		h.fail(c, "list financials", err)
		return
	}
	view := make([]financialLine, 0, len(lines))
	for _, l := range lines {
		view = append(view, financialLine{
			ThrustFinancial: l,
			Title:           h.thrustTitle(l.ThrustID),
			Utilisation:     planning.TotalFinancials([]models.ThrustFinancial{l}).Utilisation,
		})
	}
	h.render(c, http.StatusOK, "financials.html", gin.H{
		"title":    h.data.Financials.Title,
		"subtitle": h.data.Financials.Subtitle,
		"lines":    view,
		"totals":   planning.TotalFinancials(lines),
		"error":    c.Query("error"),
	})
}

type financialForm struct {
	Budget   int64 `form:"budget" validate:"gte=0"`
	Spending int64 `form:"spending" validate:"gte=0"`
}

func (h *Handler) UpdateFinancial(c *gin.Context) {
	thrust, err := strconv.Atoi(c.Param("thrust"))
	if err != nil || thrust < 1 || thrust > planning.ThrustCount {
		c.String(http.StatusNotFound, "unknown thrust")
		return
	}
	var form financialForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, "/financials?error=Budget+and+spending+must+be+whole+numbers")
		return
	}
	if msg := h.check(form); msg != "" {
		c.Redirect(http.StatusFound, "/financials?error="+url.QueryEscape(msg))
		return
	}

	line := models.ThrustFinancial{ThrustID: thrust, Budget: form.Budget, Spending: form.Spending}
	if err := h.store.SaveFinancial(c.Request.Context(), line); err != nil {
		h.fail(c, "save financial", err)
		return
	}
	h.audit(c.Request.Context(), "financial", c.Param("thrust"), "update",
		"budget="+strconv.FormatInt(form.Budget, 10)+" spending="+strconv.FormatInt(form.Spending, 10))
	c.Redirect(http.StatusFound, "/financials")
}
