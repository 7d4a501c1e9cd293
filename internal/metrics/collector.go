// Package metrics exports plan health gauges computed from the store on
// every scrape.
package metrics

import (
	"context"
	"time"

	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const scrapeTimeout = 5 * time.Second

var (
	initiativesDesc = prometheus.NewDesc(
		"plan_initiatives",
		"Initiatives by classified status.",
		[]string{"status"}, nil,
	)
	kpisDesc = prometheus.NewDesc(
		"plan_kpis",
		"KPIs by dashboard card status.",
		[]string{"status"}, nil,
	)
	kpiProgressDesc = prometheus.NewDesc(
		"plan_kpi_progress_avg",
		"Mean KPI completion percentage.",
		nil, nil,
	)
)

type Collector struct {
	store      store.Store
	classifier planning.Classifier
	today      func() time.Time
	log        *zap.Logger
}

func NewCollector(st store.Store, classifier planning.Classifier, today func() time.Time, log *zap.Logger) *Collector {
	return &Collector{store: st, classifier: classifier, today: today, log: log}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- initiativesDesc
	ch <- kpisDesc
	ch <- kpiProgressDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	initiatives, err := c.store.ListInitiatives(ctx)
	if err != nil {
		c.log.Error("metrics: list initiatives", zap.Error(err))
		return
	}
	kpis, err := c.store.ListKPIs(ctx)
	if err != nil {
		c.log.Error("metrics: list kpis", zap.Error(err))
		return
	}
	today := c.today()

	counts := planning.CountByStatus(c.classifier.ClassifyAll(initiatives, today))
	for _, s := range planning.Statuses {
		ch <- prometheus.MustNewConstMetric(initiativesDesc, prometheus.GaugeValue, float64(counts[s]), s.Slug())
	}

	summary := planning.Summarize(planning.DeriveAll(kpis, initiatives), today)
	for s, n := range map[planning.KPIStatus]int{
		planning.KPIOnTrack:   summary.OnTrack,
		planning.KPIAtRisk:    summary.AtRisk,
		planning.KPICompleted: summary.Completed,
		planning.KPIOverdue:   summary.Overdue,
	} {
		ch <- prometheus.MustNewConstMetric(kpisDesc, prometheus.GaugeValue, float64(n), string(s))
	}
	ch <- prometheus.MustNewConstMetric(kpiProgressDesc, prometheus.GaugeValue, summary.AvgProgress)
}

// Register adds the collector to a fresh registry with the Go runtime and
// process collectors.
func Register(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		c,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return reg
}
