package handlers

import (
	"testing"

	"plan-dashboard/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHistory(t *testing.T) {
	got, err := parseHistory("2026-01-01 10\n\n 15/02/2026,12.5 \n2026-03-01\t20\n")
	require.NoError(t, err)
	want := []models.KPIHistoryPoint{
		{Date: "2026-01-01", Value: 10},
		{Date: "2026-02-15", Value: 12.5},
		{Date: "2026-03-01", Value: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseHistory mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"2026-01-01", "2026-13-01 4", "2026-01-01 ten", "2026-01-01 1 2"} {
		_, err := parseHistory(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatHistorySortsByDate(t *testing.T) {
	got := formatHistory([]models.KPIHistoryPoint{
		{Date: "2026-03-01", Value: 30},
		{Date: "2026-01-01", Value: 10.25},
	})
	assert.Equal(t, "2026-01-01 10.25\n2026-03-01 30\n", got)

	back, err := parseHistory(got)
	require.NoError(t, err)
	assert.Len(t, back, 2)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/dashboard",
		"/timeline?tier=T1": "/timeline?tier=T1",
		"//evil.example":    "/dashboard",
		"/\\evil.example":   "/dashboard",
		"https://evil":      "/dashboard",
		"/":                 "/dashboard",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestCheckMessages(t *testing.T) {
	h := New(Deps{})

	assert.Empty(t, h.check(milestoneForm{Text: "ok"}))
	assert.Equal(t, "Text is required", h.check(milestoneForm{}))
	assert.Equal(t, "Budget must be at least 0", h.check(financialForm{Budget: -1}))

	msg := h.check(newInitiativeForm{ThrustID: 13})
	assert.Contains(t, msg, "ThrustID must be at most 12")
	assert.Contains(t, msg, "Name is required")
}
