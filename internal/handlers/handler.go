package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plan-dashboard/internal/media"
	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/seed"
	"plan-dashboard/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// auditLimit is how many entries the audit page shows.
const auditLimit = 200

type Deps struct {
	Store      store.Store
	Media      *media.Library
	Dataset    *seed.Dataset
	Classifier planning.Classifier
	// Today is the reference date for classification; Now stamps notes.
	Today     func() time.Time
	Now       func() time.Time
	AdminHash []byte
	Log       *zap.Logger
}

type Handler struct {
	store      store.Store
	media      *media.Library
	data       *seed.Dataset
	classifier planning.Classifier
	today      func() time.Time
	now        func() time.Time
	adminHash  []byte
	log        *zap.Logger
	validate   *validator.Validate
}

func New(d Deps) *Handler {
	h := &Handler{
		store:      d.Store,
		media:      d.Media,
		data:       d.Dataset,
		classifier: d.Classifier,
		today:      d.Today,
		now:        d.Now,
		adminHash:  d.AdminHash,
		log:        d.Log,
		validate:   validator.New(),
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.today == nil {
		h.today = func() time.Time { return planning.DateOf(h.now()) }
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// fail reports a store error: 404 for unknown records, 500 otherwise.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, media.ErrNotFound) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	h.log.Error(op, zap.Error(err))
	c.String(http.StatusInternalServerError, "internal error")
}

func (h *Handler) audit(ctx context.Context, entity, entityID, action, details string) {
	entry := models.AuditLog{
		Actor:    "admin",
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := h.store.RecordAudit(ctx, entry); err != nil {
		h.log.Error("record audit", zap.Error(err), zap.String("entity", entity), zap.String("id", entityID))
	}
}

// check runs the validator over a bound form and turns the first failure
// into a message for the page.
func (h *Handler) check(form any) string {
	err := h.validate.Struct(form)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func (h *Handler) thrustTitle(id int) string {
	if t, ok := h.data.Thrust(id); ok {
		return t.Title
	}
	return ""
}
