package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"plan-dashboard/internal/database"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/seed"
	"plan-dashboard/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger

	todayFlag  string
	dsnFlag    string
	outputFlag string
	marginFlag float64
	ratioFlag  float64
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Inspect the strategic plan from the command line",
	Long: `planctl classifies initiatives, derives KPI cards and fits KPI trend
lines using the same rules as the dashboard.

Data comes from the embedded seed dataset unless --dsn points at the
dashboard's Postgres database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if !verbose {
			config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	_ = godotenv.Load()

	defaults := planning.DefaultThresholds()
	rootCmd.PersistentFlags().StringVar(&todayFlag, "today", os.Getenv("REFERENCE_DATE"), "reference date (YYYY-MM-DD); defaults to the current date")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", os.Getenv("DB_DSN"), "Postgres DSN; empty uses the seed dataset")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "output format: table or yaml")
	rootCmd.PersistentFlags().Float64Var(&marginFlag, "margin", defaults.Margin, "At Risk margin in percentage points")
	rootCmd.PersistentFlags().Float64Var(&ratioFlag, "ratio", defaults.Ratio, "At Risk ratio of expected progress")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log connection and seeding details")

	rootCmd.AddCommand(statusCmd, kpisCmd, trendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// referenceDate resolves --today.
func referenceDate() (time.Time, error) {
	if todayFlag == "" {
		return planning.DateOf(time.Now()), nil
	}
	t, ok := planning.ParseISODate(todayFlag)
	if !ok {
		return time.Time{}, fmt.Errorf("--today %q: want YYYY-MM-DD", todayFlag)
	}
	return t, nil
}

func classifier() planning.Classifier {
	return planning.NewClassifier(planning.RiskThresholds{Margin: marginFlag, Ratio: ratioFlag})
}

// openPlan returns the store to report on: Postgres when --dsn is set,
// otherwise a memory store seeded for today.
func openPlan(ctx context.Context, today time.Time) (store.Store, *seed.Dataset, error) {
	ds, err := seed.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	if dsnFlag != "" {
		db, err := database.Open(dsnFlag, log)
		if err != nil {
			return nil, nil, err
		}
		return database.NewStore(db), ds, nil
	}

	st := store.NewMemory()
	if err := seed.Populate(ctx, st, ds, today, log); err != nil {
		return nil, nil, err
	}
	return st, ds, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
