package planning

import (
	"math"
	"time"

	"plan-dashboard/internal/models"
)

// TrendPoint is a point on the fitted line; Day counts from the trend origin.
type TrendPoint struct {
	Day   float64
	Value float64
}

// Trend is a least-squares line over KPI history.
type Trend struct {
	Slope     float64 // value per day
	Intercept float64
	Origin    time.Time // date of the first history point, x = 0
	Start     TrendPoint
	End       TrendPoint
	R2        float64
	Points    int
}

// ComputeTrend fits value = slope*day + intercept over the history, where day
// is the calendar-day offset from the first point. It returns nil when fewer
// than two dated points exist or all points share a date. The input is not
// modified and is expected to be sorted already.
func ComputeTrend(history []models.KPIHistoryPoint) *Trend {
	var (
		origin time.Time
		xs, ys []float64
	)
	for _, p := range history {
		t, ok := ParseISODate(p.Date)
		if !ok {
			continue
		}
		if len(xs) == 0 {
			origin = t
		}
		xs = append(xs, float64(DaysBetween(origin, t)))
		ys = append(ys, p.Value)
	}

	n := float64(len(xs))
	if len(xs) < 2 {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	den := n*sumXX - sumX*sumX
	if den == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / n

	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}

	t := &Trend{
		Slope:     slope,
		Intercept: intercept,
		Origin:    origin,
		Points:    len(xs),
	}
	t.Start = TrendPoint{Day: minX, Value: t.at(minX)}
	t.End = TrendPoint{Day: maxX, Value: t.at(maxX)}
	t.R2 = t.rSquared(xs, ys, sumY/n)
	return t
}

func (t *Trend) at(x float64) float64 { return t.Slope*x + t.Intercept }

// rSquared is 1 - SSE/SST; a flat series that the line fits exactly counts as 1.
func (t *Trend) rSquared(xs, ys []float64, meanY float64) float64 {
	var sst, sse float64
	for i := range xs {
		dy := ys[i] - meanY
		sst += dy * dy
		r := ys[i] - t.at(xs[i])
		sse += r * r
	}
	if sst == 0 {
		return 1
	}
	return 1 - sse/sst
}

// ValueAt returns the trend value on a YYYY-MM-DD date.
func (t *Trend) ValueAt(date string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	d, ok := ParseISODate(date)
	if !ok {
		return 0, false
	}
	return t.ValueOn(d), true
}

func (t *Trend) ValueOn(d time.Time) float64 {
	return t.at(float64(DaysBetween(t.Origin, d)))
}

// Direction summarises the slope sign: 1 rising, -1 falling, 0 flat.
func (t *Trend) Direction() int {
	switch {
	case t == nil:
		return 0
	case t.Slope > 1e-9:
		return 1
	case t.Slope < -1e-9:
		return -1
	}
	return 0
}
