package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"

	"github.com/gin-gonic/gin"
)

// initiativeFilter reads the timeline controls from the query string.
func initiativeFilter(c *gin.Context) planning.InitiativeFilter {
	var f planning.InitiativeFilter
	for _, v := range c.QueryArray("thrust") {
		if n, err := strconv.Atoi(v); err == nil {
			f.Thrusts = append(f.Thrusts, n)
		}
	}
	for _, v := range c.QueryArray("branch") {
		if v = strings.TrimSpace(v); v != "" {
			f.Branches = append(f.Branches, v)
		}
	}
	f.Tier = c.Query("tier")
	if s, ok := planning.StatusFromSlug(c.Query("status")); ok {
		f.Status = s
	}
	f.Year, _ = strconv.Atoi(c.Query("year"))
	f.From = c.Query("from")
	f.To = c.Query("to")
	return f
}

func (h *Handler) Timeline(c *gin.Context) {
	ctx := c.Request.Context()
	initiatives, err := h.store.ListInitiatives(ctx)
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}
	tiers, err := h.store.ListTiers(ctx)
	if err != nil {
		h.fail(c, "list tiers", err)
		return
	}

	planning.SortInitiatives(initiatives)
	all := h.classifier.ClassifyAll(initiatives, h.today())
	filter := initiativeFilter(c)
	shown := planning.FilterInitiatives(all, filter)

	h.render(c, http.StatusOK, "timeline.html", gin.H{
		"initiatives": shown,
		"total":       len(all),
		"filter":      filter,
		"counts":      statusCounts(planning.CountByStatus(shown)),
		"thrusts":     h.data.Thrusts,
		"branches":    planning.Branches(all),
		"tiers":       tiers,
		"statuses":    planning.Statuses,
	})
}

func (h *Handler) ShowInitiative(c *gin.Context) {
	in, err := h.store.GetInitiative(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get initiative", err)
		return
	}
	h.renderInitiative(c, http.StatusOK, in, "")
}

func (h *Handler) renderInitiative(c *gin.Context, status int, in models.Initiative, msg string) {
	h.render(c, status, "initiative.html", gin.H{
		"initiative": in,
		"status":     h.classifier.Classify(in, h.today()),
		"thrust":     h.thrustTitle(in.ThrustID),
		"notes":      planning.NoteEntries(in.Notes),
		"planStart":  planning.DisplayToISO(in.PlanStart),
		"planEnd":    planning.DisplayToISO(in.PlanEnd),
		"actStart":   planning.DisplayToISO(in.ActualStart),
		"actEnd":     planning.DisplayToISO(in.ActualEnd),
		"error":      msg,
	})
}

//
// CREATE
//

type newInitiativeForm struct {
	ThrustID          int    `form:"thrust" validate:"required,min=1,max=12"`
	Name              string `form:"name" validate:"required"`
	Tier              string `form:"tier"`
	PlanStart         string `form:"plan_start" validate:"required"`
	PlanEnd           string `form:"plan_end" validate:"required"`
	ActualStart       string `form:"actual_start"`
	ActualEnd         string `form:"actual_end"`
	Progress          int    `form:"progress" validate:"gte=0,lte=100"`
	ResponsibleBranch string `form:"branch"`
	ExpectedOutcome   string `form:"outcome"`
	Remarks           string `form:"remarks"`
	Note              string `form:"note"`
}

func (h *Handler) ShowNewInitiative(c *gin.Context) {
	h.renderNewInitiative(c, http.StatusOK, newInitiativeForm{}, "")
}

func (h *Handler) renderNewInitiative(c *gin.Context, status int, form newInitiativeForm, msg string) {
	tiers, err := h.store.ListTiers(c.Request.Context())
	if err != nil {
		h.fail(c, "list tiers", err)
		return
	}
	h.render(c, status, "initiative_new.html", gin.H{
		"form":    form,
		"thrusts": h.data.Thrusts,
		"tiers":   tiers,
		"error":   msg,
	})
}

func (h *Handler) CreateInitiative(c *gin.Context) {
	var form newInitiativeForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderNewInitiative(c, http.StatusBadRequest, form, "Invalid form data")
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	if msg := h.check(form); msg != "" {
		h.renderNewInitiative(c, http.StatusBadRequest, form, msg)
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.ListInitiatives(ctx)
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}
	in, err := planning.BuildInitiative(existing, planning.NewInitiative{
		ThrustID:          form.ThrustID,
		Name:              form.Name,
		Tier:              form.Tier,
		PlanStart:         form.PlanStart,
		PlanEnd:           form.PlanEnd,
		ActualStart:       form.ActualStart,
		ActualEnd:         form.ActualEnd,
		Progress:          form.Progress,
		ResponsibleBranch: form.ResponsibleBranch,
		ExpectedOutcome:   form.ExpectedOutcome,
		Remarks:           form.Remarks,
		Note:              form.Note,
	}, h.now())
	if err != nil {
		h.renderNewInitiative(c, http.StatusBadRequest, form, initiativeMessage(err))
		return
	}

	if err := h.store.CreateInitiative(ctx, &in); err != nil {
		if errors.Is(err, store.ErrExists) {
			h.renderNewInitiative(c, http.StatusConflict, form, "An initiative with ID "+in.ID+" already exists")
			return
		}
		h.fail(c, "create initiative", err)
		return
	}
	h.audit(ctx, "initiative", in.ID, "create", in.Name)

	c.Redirect(http.StatusFound, "/initiatives/"+in.ID)
}

//
// UPDATE / DELETE
//

type updateInitiativeForm struct {
	Progress          int    `form:"progress"`
	PlanStart         string `form:"plan_start"`
	PlanEnd           string `form:"plan_end"`
	ActualStart       string `form:"actual_start"`
	ActualEnd         string `form:"actual_end"`
	ResponsibleBranch string `form:"branch"`
	ExpectedOutcome   string `form:"outcome"`
	Remarks           string `form:"remarks"`
	Note              string `form:"note" validate:"required"`
}

func (h *Handler) UpdateInitiative(c *gin.Context) {
	ctx := c.Request.Context()
	in, err := h.store.GetInitiative(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "get initiative", err)
		return
	}

	var form updateInitiativeForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderInitiative(c, http.StatusBadRequest, in, "Invalid form data")
		return
	}
	form.Note = strings.TrimSpace(form.Note)
	if msg := h.check(form); msg != "" {
		h.renderInitiative(c, http.StatusBadRequest, in, msg)
		return
	}

	updated, err := planning.ApplyUpdate(in, planning.InitiativeUpdate{
		Progress:          form.Progress,
		PlanStart:         form.PlanStart,
		PlanEnd:           form.PlanEnd,
		ActualStart:       form.ActualStart,
		ActualEnd:         form.ActualEnd,
		ResponsibleBranch: form.ResponsibleBranch,
		ExpectedOutcome:   form.ExpectedOutcome,
		Remarks:           form.Remarks,
		Note:              form.Note,
	}, h.now())
	if err != nil {
		h.renderInitiative(c, http.StatusBadRequest, in, initiativeMessage(err))
		return
	}

	if err := h.store.SaveInitiative(ctx, &updated); err != nil {
		h.fail(c, "save initiative", err)
		return
	}
	h.audit(ctx, "initiative", updated.ID, "update",
		"progress "+strconv.Itoa(in.Progress)+" -> "+strconv.Itoa(updated.Progress)+": "+form.Note)

	c.Redirect(http.StatusFound, "/initiatives/"+updated.ID)
}

func (h *Handler) DeleteInitiative(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.store.DeleteInitiative(ctx, id); err != nil {
		h.fail(c, "delete initiative", err)
		return
	}
	h.audit(ctx, "initiative", id, "delete", "")
	c.Redirect(http.StatusFound, "/timeline")
}

// ResetAllProgress zeroes every initiative.
func (h *Handler) ResetAllProgress(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.store.ListInitiatives(ctx)
	if err != nil {
		h.fail(c, "list initiatives", err)
		return
	}
	if err := h.store.SaveInitiatives(ctx, planning.ResetProgress(list, h.now())); err != nil {
		h.fail(c, "reset initiatives", err)
		return
	}
	h.audit(ctx, "initiative", "*", "reset", strconv.Itoa(len(list))+" initiatives reset to 0%")
	c.Redirect(http.StatusFound, "/timeline")
}

func initiativeMessage(err error) string {
	switch {
	case errors.Is(err, planning.ErrNameRequired):
		return "Initiative name is required"
	case errors.Is(err, planning.ErrUnknownThrust):
		return "Select a strategic thrust"
	case errors.Is(err, planning.ErrPlanDatesRequired):
		return "Planned start and end dates are required"
	case errors.Is(err, planning.ErrPlanOrder):
		return "Planned end date must be after the planned start date"
	case errors.Is(err, planning.ErrActualOrder):
		return "Actual end date must be after the actual start date"
	case errors.Is(err, planning.ErrNoteRequired):
		return "An update note is required"
	}
	return err.Error()
}
