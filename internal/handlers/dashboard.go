package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"

	"github.com/gin-gonic/gin"
)

type kpiCard struct {
	planning.DerivedKPI
	Status planning.KPIStatus
	Trend  *planning.Trend
}

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	kpis, err := h.store.ListKPIs(ctx)
	if err != nil {
		h.fail(c, "list kpis", err)
		return
	}
	initiatives, err := h.store.ListInitiatives(ctx)
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}

	today := h.today()
	derived := planning.DeriveAll(kpis, initiatives)

	filter := planning.KPIFilter{
		Status: planning.KPIStatus(c.Query("status")),
		Due:    planning.DueWindow(c.Query("due")),
		Search: c.Query("q"),
	}
	filter.ThrustID, _ = strconv.Atoi(c.Query("thrust"))

	shown := planning.FilterKPIs(derived, filter, today)
	cards := make([]kpiCard, 0, len(shown))
	for _, d := range shown {
		cards = append(cards, kpiCard{
			DerivedKPI: d,
			Status:     planning.KPIStatusOf(d, today),
			Trend:      planning.ComputeTrend(d.History),
		})
	}

	h.render(c, http.StatusOK, "dashboard.html", gin.H{
		"cards":    cards,
		"summary":  planning.Summarize(derived, today),
		"filter":   filter,
		"thrusts":  h.data.Thrusts,
		"statuses": planning.KPIStatuses,
	})
}

type trendRow struct {
	Date   string
	Value  float64
	Fitted float64
}

func (h *Handler) ShowKPI(c *gin.Context) {
	ctx := c.Request.Context()
	k, ok := h.kpiParam(c)
	if !ok {
		return
	}
	initiatives, err := h.store.ListInitiatives(ctx)
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}

	d := planning.Derive(k, planning.IndexInitiatives(initiatives))
	history := planning.SortHistory(d.History)
	trend := planning.ComputeTrend(history)

	rows := make([]trendRow, 0, len(history))
	for _, p := range history {
		row := trendRow{Date: p.Date, Value: p.Value}
		if v, ok := trend.ValueAt(p.Date); ok {
			row.Fitted = v
		}
		rows = append(rows, row)
	}

	h.render(c, http.StatusOK, "kpi.html", gin.H{
		"kpi":    d,
		"status": planning.KPIStatusOf(d, h.today()),
		"trend":  trend,
		"rows":   rows,
		"thrust": h.thrustTitle(d.ThrustID),
	})
}

func (h *Handler) kpiParam(c *gin.Context) (models.KPI, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return models.KPI{}, false
	}
	k, err := h.store.GetKPI(c.Request.Context(), uint(id))
	if err != nil {
		h.fail(c, "get kpi", err)
		return models.KPI{}, false
	}
	return k, true
}

//
// KPI FORMS
//

type kpiForm struct {
	Name               string  `form:"name" validate:"required"`
	LinkedInitiativeID string  `form:"linked_initiative"`
	Current            string  `form:"current"`
	Target             string  `form:"target"`
	CurrentValue       float64 `form:"current_value"`
	TargetValue        float64 `form:"target_value" validate:"gte=0"`
	PlanStart          string  `form:"plan_start"`
	PlanEnd            string  `form:"plan_end"`
	ActualStart        string  `form:"actual_start"`
	ActualEnd          string  `form:"actual_end"`
	History            string  `form:"history"`
}

func formFromKPI(k models.KPI) kpiForm {
	f := kpiForm{
		Name:         k.Name,
		Current:      k.Current,
		Target:       k.Target,
		CurrentValue: k.CurrentValue,
		TargetValue:  k.TargetValue,
		PlanStart:    planning.DisplayToISO(k.PlanStart),
		PlanEnd:      planning.DisplayToISO(k.PlanEnd),
		ActualStart:  planning.DisplayToISO(k.ActualStart),
		ActualEnd:    planning.DisplayToISO(k.ActualEnd),
		History:      formatHistory(k.History),
	}
	if k.LinkedInitiativeID != nil {
		f.LinkedInitiativeID = *k.LinkedInitiativeID
	}
	return f
}

// formatHistory writes one "YYYY-MM-DD value" line per point.
func formatHistory(h []models.KPIHistoryPoint) string {
	var b strings.Builder
	for _, p := range planning.SortHistory(h) {
		fmt.Fprintf(&b, "%s %s\n", p.Date, strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
	return b.String()
}

// parseHistory reads the history textarea. Blank lines are skipped; a date
// and value may be separated by spaces, a comma or a tab.
func parseHistory(text string) ([]models.KPIHistoryPoint, error) {
	var out []models.KPIHistoryPoint
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
		if len(fields) != 2 {
			return nil, fmt.Errorf("history line %d: want \"YYYY-MM-DD value\"", i+1)
		}
		t, ok := planning.ParseDate(fields[0])
		if !ok {
			return nil, fmt.Errorf("history line %d: invalid date %q", i+1, fields[0])
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("history line %d: invalid value %q", i+1, fields[1])
		}
		out = append(out, models.KPIHistoryPoint{Date: planning.FormatISODate(t), Value: v})
	}
	return out, nil
}

func (h *Handler) renderKPIForm(c *gin.Context, status int, action string, form kpiForm, msg string) {
	initiatives, err := h.store.ListInitiatives(c.Request.Context())
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}
	planning.SortInitiatives(initiatives)
	h.render(c, status, "kpi_form.html", gin.H{
		"action":      action,
		"form":        form,
		"initiatives": initiatives,
		"error":       msg,
	})
}

func (h *Handler) ShowNewKPI(c *gin.Context) {
	h.renderKPIForm(c, http.StatusOK, "/kpis", formFromKPI(planning.NewKPI()), "")
}

func (h *Handler) ShowEditKPI(c *gin.Context) {
	k, ok := h.kpiParam(c)
	if !ok {
		return
	}
	h.renderKPIForm(c, http.StatusOK, fmt.Sprintf("/kpis/%d", k.ID), formFromKPI(k), "")
}

// applyKPIForm binds the form and merges it into stored. It renders the
// form itself on failure.
func (h *Handler) applyKPIForm(c *gin.Context, action string, stored models.KPI) (models.KPI, bool) {
	var form kpiForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderKPIForm(c, http.StatusBadRequest, action, form, "Invalid form data")
		return stored, false
	}
	form.Name = strings.TrimSpace(form.Name)
	if msg := h.check(form); msg != "" {
		h.renderKPIForm(c, http.StatusBadRequest, action, form, msg)
		return stored, false
	}
	history, err := parseHistory(form.History)
	if err != nil {
		h.renderKPIForm(c, http.StatusBadRequest, action, form, err.Error())
		return stored, false
	}

	initiatives, err := h.store.ListInitiatives(c.Request.Context())
	if err != nil {
		h.fail(c, "list initiatives", err)
		return stored, false
	}
	k, err := planning.ApplyKPIEdit(stored, planning.KPIEdit{
		Name:               form.Name,
		LinkedInitiativeID: form.LinkedInitiativeID,
		Current:            form.Current,
		Target:             form.Target,
		CurrentValue:       form.CurrentValue,
		TargetValue:        form.TargetValue,
		History:            history,
		PlanStart:          form.PlanStart,
		PlanEnd:            form.PlanEnd,
		ActualStart:        form.ActualStart,
		ActualEnd:          form.ActualEnd,
	}, planning.IndexInitiatives(initiatives))
	if err != nil {
		h.renderKPIForm(c, http.StatusBadRequest, action, form, "KPI name is required")
		return stored, false
	}
	return k, true
}

func (h *Handler) CreateKPI(c *gin.Context) {
	k, ok := h.applyKPIForm(c, "/kpis", planning.NewKPI())
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.CreateKPI(ctx, &k); err != nil {
		h.fail(c, "create kpi", err)
		return
	}
	h.audit(ctx, "kpi", strconv.FormatUint(uint64(k.ID), 10), "create", k.Name)
	c.Redirect(http.StatusFound, fmt.Sprintf("/kpis/%d", k.ID))
}

func (h *Handler) UpdateKPI(c *gin.Context) {
	stored, ok := h.kpiParam(c)
	if !ok {
		return
	}
	k, ok := h.applyKPIForm(c, fmt.Sprintf("/kpis/%d", stored.ID), stored)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.SaveKPI(ctx, &k); err != nil {
		h.fail(c, "save kpi", err)
		return
	}
	details := "manual"
	if id := planning.LinkTarget(k); id != "" {
		details = "linked to " + id
	}
	h.audit(ctx, "kpi", c.Param("id"), "update", k.Name+" ("+details+")")
	c.Redirect(http.StatusFound, fmt.Sprintf("/kpis/%d", k.ID))
}

func (h *Handler) DeleteKPI(c *gin.Context) {
	k, ok := h.kpiParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.DeleteKPI(ctx, k.ID); err != nil {
		h.fail(c, "delete kpi", err)
		return
	}
	h.audit(ctx, "kpi", c.Param("id"), "delete", k.Name)
	c.Redirect(http.StatusFound, "/dashboard")
}
