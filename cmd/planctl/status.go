package main

import (
	"fmt"
	"strconv"

	"plan-dashboard/internal/planning"

	"github.com/spf13/cobra"
)

var statusFilter struct {
	thrusts  []int
	branches []string
	tier     string
	status   string
	year     int
	from     string
	to       string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Classify initiatives as of the reference date",
	Example: `  planctl status --today 2026-07-01 --status at-risk
  planctl status --thrust 3 --thrust 4 -o yaml`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.IntSliceVar(&statusFilter.thrusts, "thrust", nil, "thrust IDs to include")
	f.StringSliceVar(&statusFilter.branches, "branch", nil, "responsible branches to include")
	f.StringVar(&statusFilter.tier, "tier", "", "tier name, e.g. \"Tier 1\"")
	f.StringVar(&statusFilter.status, "status", "", "status slug: completed, overdue, not-started, at-risk, on-track")
	f.IntVar(&statusFilter.year, "year", 0, "year that must fall inside the plan window")
	f.StringVar(&statusFilter.from, "from", "", "plan window overlaps from this date (YYYY-MM-DD)")
	f.StringVar(&statusFilter.to, "to", "", "plan window overlaps up to this date (YYYY-MM-DD)")
}

type initiativeRow struct {
	ID        string `yaml:"id"`
	Thrust    int    `yaml:"thrust"`
	Name      string `yaml:"name"`
	Tier      string `yaml:"tier"`
	PlanStart string `yaml:"plan_start"`
	PlanEnd   string `yaml:"plan_end"`
	Progress  int    `yaml:"progress"`
	Status    string `yaml:"status"`
	Rank      int    `yaml:"rank"`
}

type statusReport struct {
	Today       string          `yaml:"today"`
	Counts      map[string]int  `yaml:"counts"`
	Initiatives []initiativeRow `yaml:"initiatives"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	today, err := referenceDate()
	if err != nil {
		return err
	}
	filter := planning.InitiativeFilter{
		Thrusts:  statusFilter.thrusts,
		Branches: statusFilter.branches,
		Tier:     statusFilter.tier,
		Year:     statusFilter.year,
		From:     statusFilter.from,
		To:       statusFilter.to,
	}
	if statusFilter.status != "" {
		s, ok := planning.StatusFromSlug(statusFilter.status)
		if !ok {
			return fmt.Errorf("unknown status %q", statusFilter.status)
		}
		filter.Status = s
	}

	ctx := commandContext(cmd)
	st, _, err := openPlan(ctx, today)
	if err != nil {
		return err
	}
	initiatives, err := st.ListInitiatives(ctx)
	if err != nil {
		return err
	}
	planning.SortInitiatives(initiatives)

	views := planning.FilterInitiatives(classifier().ClassifyAll(initiatives, today), filter)

	report := statusReport{Today: planning.FormatISODate(today), Counts: map[string]int{}}
	rows := make([][]string, 0, len(views))
	for s, n := range planning.CountByStatus(views) {
		report.Counts[s.Slug()] = n
	}
	for _, v := range views {
		report.Initiatives = append(report.Initiatives, initiativeRow{
			ID:        v.ID,
			Thrust:    v.ThrustID,
			Name:      v.Name,
			Tier:      v.Tier,
			PlanStart: v.PlanStart,
			PlanEnd:   v.PlanEnd,
			Progress:  v.Progress,
			Status:    v.Status.Slug(),
			Rank:      v.Rank,
		})
		rows = append(rows, []string{
			v.ID, string(v.Status), strconv.Itoa(v.Progress) + "%", v.PlanStart + "-" + v.PlanEnd, truncate(v.Name, 60),
		})
	}

	return write(cmd.OutOrStdout(), report, []string{"ID", "STATUS", "PROGRESS", "PLAN", "NAME"}, rows)
}
