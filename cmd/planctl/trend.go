package main

import (
	"fmt"
	"strconv"
	"strings"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"

	"github.com/spf13/cobra"
)

var trendCmd = &cobra.Command{
	Use:     "trend <kpi-name-substring>",
	Short:   "Fit a least-squares trend line to a KPI's history",
	Example: `  planctl trend "revenue"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runTrend,
}

type trendPoint struct {
	Date   string  `yaml:"date"`
	Value  float64 `yaml:"value"`
	Fitted float64 `yaml:"fitted"`
}

type trendReport struct {
	KPI       string       `yaml:"kpi"`
	Slope     float64      `yaml:"slope_per_day"`
	Intercept float64      `yaml:"intercept"`
	R2        float64      `yaml:"r2"`
	Start     float64      `yaml:"start"`
	End       float64      `yaml:"end"`
	Points    []trendPoint `yaml:"points"`
}

// findKPI picks the single KPI whose name contains query.
func findKPI(kpis []models.KPI, query string) (models.KPI, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var matches []models.KPI
	for _, k := range kpis {
		if strings.Contains(strings.ToLower(k.Name), q) {
			matches = append(matches, k)
		}
	}
	switch len(matches) {
	case 0:
		return models.KPI{}, fmt.Errorf("no KPI matches %q", query)
	case 1:
		return matches[0], nil
	}
	names := make([]string, 0, len(matches))
	for _, k := range matches {
		names = append(names, k.Name)
	}
	return models.KPI{}, fmt.Errorf("%q matches %d KPIs: %s", query, len(matches), strings.Join(names, "; "))
}

func runTrend(cmd *cobra.Command, args []string) error {
	today, err := referenceDate()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	st, _, err := openPlan(ctx, today)
	if err != nil {
		return err
	}
	kpis, err := st.ListKPIs(ctx)
	if err != nil {
		return err
	}
	initiatives, err := st.ListInitiatives(ctx)
	if err != nil {
		return err
	}

	k, err := findKPI(kpis, args[0])
	if err != nil {
		return err
	}
	d := planning.Derive(k, planning.IndexInitiatives(initiatives))
	history := planning.SortHistory(d.History)
	trend := planning.ComputeTrend(history)
	if trend == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: insufficient data (at least two dated history points are needed for a trend)\n", d.Name)
		return nil
	}

	report := trendReport{
		KPI:       d.Name,
		Slope:     trend.Slope,
		Intercept: trend.Intercept,
		R2:        trend.R2,
		Start:     trend.Start.Value,
		End:       trend.End.Value,
	}
	rows := make([][]string, 0, len(history))
	for _, p := range history {
		fitted, _ := trend.ValueAt(p.Date)
		report.Points = append(report.Points, trendPoint{Date: p.Date, Value: p.Value, Fitted: fitted})
		rows = append(rows, []string{p.Date, formatFloat(p.Value), formatFloat(fitted)})
	}

	if err := write(cmd.OutOrStdout(), report, []string{"DATE", "VALUE", "TREND"}, rows); err != nil {
		return err
	}
	if outputFlag != "yaml" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %s per day, R² %.3f\n", d.Name, formatFloat(trend.Slope), trend.R2)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
