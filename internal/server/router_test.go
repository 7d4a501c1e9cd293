package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"plan-dashboard/internal/config"
	"plan-dashboard/internal/handlers"
	"plan-dashboard/internal/media"
	"plan-dashboard/internal/metrics"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/seed"
	"plan-dashboard/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "open-sesame"

var demoToday = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testApp struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Memory
	media  *media.Library
	cookie []*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := seed.Load()
	require.NoError(t, err)
	st := store.NewMemory()
	require.NoError(t, seed.Populate(context.Background(), st, ds, demoToday, zap.NewNop()))

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{SessionSecret: "test-secret", Media: config.MediaConfig{MaxBytes: 1 << 20}}
	lib := media.NewLibrary(media.NewMemory(), cfg.Media.MaxBytes)
	classifier := planning.NewClassifier(planning.DefaultThresholds())
	today := func() time.Time { return demoToday }

	h := handlers.New(handlers.Deps{
		Store:      st,
		Media:      lib,
		Dataset:    ds,
		Classifier: classifier,
		Today:      today,
		Now:        func() time.Time { return demoToday.Add(9 * time.Hour) },
		AdminHash:  hash,
		Log:        zap.NewNop(),
	})
	reg := metrics.Register(metrics.NewCollector(st, classifier, today, zap.NewNop()))

	r, err := NewRouter(cfg, h, reg, zap.NewNop())
	require.NoError(t, err)
	return &testApp{t: t, router: r, store: st, media: lib}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range a.cookie {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) login() {
	a.t.Helper()
	rec := a.post("/admin/login", url.Values{"password": {testPassword}, "next": {"/timeline"}})
	require.Equal(a.t, http.StatusFound, rec.Code)
	require.Equal(a.t, "/timeline", rec.Header().Get("Location"))
	a.cookie = rec.Result().Cookies()
	require.NotEmpty(a.t, a.cookie)
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/thrusts", "/roadmap", "/timeline", "/dashboard", "/financials", "/stories", "/initiatives/I-3.1", "/kpis/1"} {
		rec := app.get(path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := app.get("/health")
	assert.Equal(t, "ok", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, app.get("/initiatives/I-99.1").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/kpis/999").Code)
	assert.Equal(t, http.StatusBadRequest, app.get("/kpis/abc").Code)
}

func TestTimelineFilters(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/timeline?thrust=3&status=on-track")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "I-3.1")
	assert.NotContains(t, body, `href="/initiatives/I-1.1"`)

	rec = app.get("/timeline?status=not-started&thrust=12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "I-12.3")
}

func TestDashboardShowsLinkedKPI(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/dashboard?q=pan+borneo")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pan Borneo Highway Completion")
	assert.Contains(t, body, "Linked to I-3.1")
	assert.Contains(t, body, "75% Complete")
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/kpis/new")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login?next=%2Fkpis%2Fnew", rec.Header().Get("Location"))

	rec = app.post("/initiatives/reset", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = app.post("/admin/login", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect password")

	// a body that fails to parse still keeps the return path
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader("next=%2Fkpis%2Fnew&password=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid form data")
	assert.Contains(t, rec.Body.String(), `name="next" value="/kpis/new"`)
}

func TestInitiativeLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.login()
	ctx := context.Background()

	rec := app.post("/initiatives", url.Values{
		"thrust":     {"1"},
		"name":       {"Digital permit portal"},
		"tier":       {"Tier 2"},
		"plan_start": {"2026-01-01"},
		"plan_end":   {"2026-01-01"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Planned end date must be after the planned start date")

	rec = app.post("/initiatives", url.Values{
		"thrust":     {"1"},
		"name":       {"Digital permit portal"},
		"tier":       {"Tier 2"},
		"plan_start": {"2026-01-01"},
		"plan_end":   {"2027-12-31"},
		"branch":     {"ICT Branch"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/initiatives/I-1.16", rec.Header().Get("Location"))

	in, err := app.store.GetInitiative(ctx, "I-1.16")
	require.NoError(t, err)
	assert.Equal(t, "01/01/2026", in.PlanStart)
	assert.Equal(t, 0, in.Progress)
	assert.Empty(t, in.Notes)

	rec = app.post("/initiatives", url.Values{
		"thrust":       {"1"},
		"name":         {"Drone survey pilot"},
		"plan_start":   {"2026-01-01"},
		"plan_end":     {"2026-12-31"},
		"actual_start": {"2026-01-15"},
		"progress":     {"35"},
		"note":         {"Carried over from 2025"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	started, err := app.store.GetInitiative(ctx, "I-1.17")
	require.NoError(t, err)
	assert.Equal(t, 35, started.Progress)
	assert.Equal(t, "15/01/2026", started.ActualStart)
	assert.Equal(t, "[2026-07-01 09:00] Carried over from 2025", started.Notes)

	rec = app.post("/initiatives", url.Values{
		"thrust":     {"1"},
		"name":       {"Bad progress"},
		"plan_start": {"2026-01-01"},
		"plan_end":   {"2026-12-31"},
		"progress":   {"120"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.post("/initiatives/I-1.16", url.Values{"progress": {"40"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.post("/initiatives/I-1.16", url.Values{
		"progress":     {"140"},
		"actual_start": {"2026-02-01"},
		"branch":       {"ICT Branch"},
		"note":         {"Vendor appointed"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	in, err = app.store.GetInitiative(ctx, "I-1.16")
	require.NoError(t, err)
	assert.Equal(t, 100, in.Progress)
	assert.Equal(t, "01/02/2026", in.ActualStart)
	assert.Equal(t, "[2026-07-01 09:00] Vendor appointed", in.Notes)

	rec = app.post("/initiatives/I-1.16/delete", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = app.store.GetInitiative(ctx, "I-1.16")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPageContentEditing(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	rec := app.post("/direction", url.Values{"vision": {"x"}, "mission": {"y"}, "goal": {"z"}})
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	app.login()

	rec = app.post("/direction", url.Values{"vision": {"A greener Sarawak"}, "mission": {"  "}, "goal": {"Build"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?error="))

	rec = app.post("/direction", url.Values{"vision": {" A greener Sarawak "}, "mission": {"Deliver"}, "goal": {"Build"}})
	require.Equal(t, http.StatusFound, rec.Code)
	dir, err := app.store.GetDirection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A greener Sarawak", dir.Vision)
	assert.Contains(t, app.get("/").Body.String(), "A greener Sarawak")

	rec = app.post("/objectives/2", url.Values{"title": {"Digital First"}, "description": {"BIM everywhere"}})
	require.Equal(t, http.StatusFound, rec.Code)
	obj, err := app.store.GetObjective(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Digital First", obj.Title)
	assert.Equal(t, []int{4, 5, 6}, obj.Thrusts, "thrust grouping is fixed")
	assert.Equal(t, http.StatusNotFound, app.post("/objectives/9", url.Values{"title": {"x"}}).Code)

	rec = app.post("/stories", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	stories, err := app.store.ListStories(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 4)
	added := stories[3]
	assert.Equal(t, "New Success Story", added.Title)
	storyPath := "/stories/" + itoa(added.ID)

	rec = app.post(storyPath, url.Values{"title": {"Kuching Flood Mitigation"}, "subtitle": {"Safer homes"}, "button_text": {"Watch Episode 4"}})
	require.Equal(t, http.StatusFound, rec.Code)
	got, err := app.store.GetStory(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kuching Flood Mitigation", got.Title)
	assert.Equal(t, "Watch Episode 4", got.ButtonText)
	assert.Contains(t, app.get("/stories").Body.String(), "Kuching Flood Mitigation")

	rec = app.post(storyPath, url.Values{"title": {" "}})
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/stories?error="))

	require.Equal(t, http.StatusFound, app.post(storyPath+"/delete", nil).Code)
	_, err = app.store.GetStory(ctx, added.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, app.post(storyPath+"/delete", nil).Code)

	logs, err := app.store.ListAudit(ctx, 0)
	require.NoError(t, err)
	var entities []string
	for _, l := range logs {
		entities = append(entities, l.Entity+":"+l.Action)
	}
	assert.Contains(t, entities, "direction:update")
	assert.Contains(t, entities, "objective:update")
	assert.Contains(t, entities, "story:create")
	assert.Contains(t, entities, "story:delete")
}

func TestResetAllProgress(t *testing.T) {
	app := newTestApp(t)
	app.login()

	rec := app.post("/initiatives/reset", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	list, err := app.store.ListInitiatives(context.Background())
	require.NoError(t, err)
	for _, in := range list {
		assert.Equal(t, 0, in.Progress, in.ID)
		assert.Empty(t, in.ActualStart, in.ID)
		assert.Contains(t, in.Notes, "Progress reset to 0% by Admin.", in.ID)
	}
}

func TestKPILifecycle(t *testing.T) {
	app := newTestApp(t)
	app.login()
	ctx := context.Background()

	assert.Equal(t, http.StatusOK, app.get("/kpis/new").Code)

	rec := app.post("/kpis", url.Values{
		"name":          {"Complaints resolved"},
		"current":       {"40 cases"},
		"target":        {"80 cases"},
		"current_value": {"40"},
		"target_value":  {"80"},
		"history":       {"2026-03-01 30\n2026-01-01 10\n\n2026-02-01, 20\n"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/kpis/"))

	kpis, err := app.store.ListKPIs(ctx)
	require.NoError(t, err)
	created := kpis[len(kpis)-1]
	assert.Equal(t, "Complaints resolved", created.Name)
	assert.Nil(t, created.LinkedInitiativeID)
	require.Len(t, created.History, 3)
	assert.Equal(t, "2026-01-01", created.History[0].Date)

	rec = app.get(location)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Trend line from")

	rec = app.post(location, url.Values{"name": {"Complaints resolved"}, "history": {"not-a-date 5"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "history line 1")

	// linking keeps the stored manual values
	rec = app.post(location, url.Values{
		"name":              {"Complaints resolved"},
		"linked_initiative": {"I-3.1"},
		"current_value":     {"1"},
		"target_value":      {"1"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	linked, err := app.store.GetKPI(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.LinkedInitiativeID)
	assert.Equal(t, "I-3.1", *linked.LinkedInitiativeID)
	assert.Equal(t, 40.0, linked.CurrentValue)
	assert.Len(t, linked.History, 3)

	rec = app.post(location+"/delete", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = app.store.GetKPI(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRoadmapAndFinancials(t *testing.T) {
	app := newTestApp(t)
	app.login()
	ctx := context.Background()

	tiers, err := app.store.ListTiers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tiers)
	tierPath := "/roadmap/tiers/" + itoa(tiers[0].ID) + "/milestones"

	rec := app.post(tierPath, url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")

	rec = app.post(tierPath, url.Values{"text": {"Launch asset registry"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/roadmap", rec.Header().Get("Location"))
	assert.Contains(t, app.get("/roadmap").Body.String(), "Launch asset registry")

	rec = app.post("/financials/2", url.Values{"budget": {"1000"}, "spending": {"250"}})
	require.Equal(t, http.StatusFound, rec.Code)
	lines, err := app.store.ListFinancials(ctx)
	require.NoError(t, err)
	for _, l := range lines {
		if l.ThrustID == 2 {
			assert.Equal(t, int64(1000), l.Budget)
			assert.Equal(t, int64(250), l.Spending)
		}
	}

	assert.Equal(t, http.StatusNotFound, app.post("/financials/13", url.Values{"budget": {"1"}}).Code)
	rec = app.post("/financials/2", url.Values{"budget": {"-5"}, "spending": {"0"}})
	assert.Contains(t, rec.Header().Get("Location"), "error=")
}

func TestMediaAndLogo(t *testing.T) {
	app := newTestApp(t)
	app.login()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "crest.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := app.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/media", rec.Header().Get("Location"))

	items, err := app.media.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0].ID

	rec = app.get("/media/" + id + "/raw")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	raw, _ := io.ReadAll(rec.Body)
	assert.Equal(t, pngHeader, raw)

	require.Equal(t, http.StatusFound, app.post("/media/"+id+"/logo", nil).Code)
	assert.Contains(t, app.get("/").Body.String(), "/media/"+id+"/raw")

	require.Equal(t, http.StatusFound, app.post("/logo/reset", nil).Code)
	assert.NotContains(t, app.get("/").Body.String(), "/media/"+id+"/raw")

	assert.Equal(t, http.StatusNotFound, app.post("/media/missing/delete", nil).Code)
	require.Equal(t, http.StatusFound, app.post("/media/"+id+"/delete", nil).Code)
}

func TestAuditAndMetrics(t *testing.T) {
	app := newTestApp(t)
	app.login()

	rec := app.post("/financials/1", url.Values{"budget": {"10"}, "spending": {"5"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = app.get("/audit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "budget=10 spending=5")

	rec = app.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plan_initiatives{status="completed"}`)
	assert.Contains(t, rec.Body.String(), "plan_kpi_progress_avg")

	rec = app.post("/admin/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
