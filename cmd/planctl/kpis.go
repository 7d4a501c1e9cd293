package main

import (
	"fmt"
	"slices"

	"plan-dashboard/internal/planning"

	"github.com/spf13/cobra"
)

var kpiFilter struct {
	thrust int
	status string
	due    string
	search string
}

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Derive KPI cards and the dashboard summary",
	Example: `  planctl kpis --today 2026-07-01
  planctl kpis --status overdue --due past`,
	Args: cobra.NoArgs,
	RunE: runKPIs,
}

func init() {
	f := kpisCmd.Flags()
	f.IntVar(&kpiFilter.thrust, "thrust", 0, "only KPIs linked to initiatives of this thrust")
	f.StringVar(&kpiFilter.status, "status", "", "card status: on-track, at-risk, completed, overdue")
	f.StringVar(&kpiFilter.due, "due", "", "due window: past, today, week, month")
	f.StringVar(&kpiFilter.search, "search", "", "case-insensitive name substring")
}

type kpiRow struct {
	ID         uint    `yaml:"id"`
	Name       string  `yaml:"name"`
	Linked     string  `yaml:"linked_initiative,omitempty"`
	Current    string  `yaml:"current"`
	Target     string  `yaml:"target"`
	Percentage float64 `yaml:"percentage"`
	Status     string  `yaml:"status"`
	DueDate    string  `yaml:"due_date,omitempty"`
}

type kpiReport struct {
	Today   string           `yaml:"today"`
	Summary planning.Summary `yaml:"summary"`
	KPIs    []kpiRow         `yaml:"kpis"`
}

func runKPIs(cmd *cobra.Command, args []string) error {
	today, err := referenceDate()
	if err != nil {
		return err
	}
	status := planning.KPIStatus(kpiFilter.status)
	if status != "" && !slices.Contains(planning.KPIStatuses, status) {
		return fmt.Errorf("unknown status %q", kpiFilter.status)
	}
	due := planning.DueWindow(kpiFilter.due)
	switch due {
	case planning.DueAny, planning.DuePast, planning.DueToday, planning.DueWeek, planning.DueMonth:
	default:
		return fmt.Errorf("unknown due window %q", kpiFilter.due)
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

	derived := planning.DeriveAll(kpis, initiatives)
	shown := planning.FilterKPIs(derived, planning.KPIFilter{
		ThrustID: kpiFilter.thrust,
		Status:   status,
		Due:      due,
		Search:   kpiFilter.search,
	}, today)

	report := kpiReport{Today: planning.FormatISODate(today), Summary: planning.Summarize(derived, today)}
	rows := make([][]string, 0, len(shown))
	for _, d := range shown {
		st := planning.KPIStatusOf(d, today)
		report.KPIs = append(report.KPIs, kpiRow{
			ID:         d.ID,
			Name:       d.Name,
			Linked:     d.InitiativeID,
			Current:    d.Current,
			Target:     d.Target,
			Percentage: d.Percentage,
			Status:     string(st),
			DueDate:    d.DueDate,
		})
		link := "-"
		if d.IsLinked {
			link = d.InitiativeID
		}
		rows = append(rows, []string{
			fmt.Sprint(d.ID), st.Label(), fmt.Sprintf("%.0f%%", d.Percentage), link, truncate(d.Name, 60),
		})
	}

	if err := write(cmd.OutOrStdout(), report, []string{"ID", "STATUS", "PCT", "LINK", "NAME"}, rows); err != nil {
		return err
	}
	if outputFlag != "yaml" {
		s := report.Summary
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d KPIs, average %.0f%%: %d on track, %d at risk, %d completed, %d overdue\n",
			s.Total, s.AvgProgress, s.OnTrack, s.AtRisk, s.Completed, s.Overdue)
	}
	return nil
}
