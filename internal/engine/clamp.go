// Package engine implements the deterministic metrics transition engine:
// feature extraction from action text, the daily target-seeking transition,
// and multi-day projection. Everything in this package is pure and safe for
// concurrent use; no call here blocks, allocates shared state, or touches I/O.
package engine

import (
	"math"

	"github.com/hqin77/lifepath/internal/domain"
)

// clamp coerces v into [lo, hi]. NaN collapses to lo so a snapshot can
// never carry a non-finite value.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Metric domains. Applied after every write; see ClampMetrics.
const (
	netWorthMin        = -500_000_000
	netWorthMax        = 5_000_000_000
	salaryMax          = 2_000_000
	monthlyExpensesMax = 1_000_000
	weekHours          = 168
)

// ClampMetrics applies the per-field domain and rounding rules. Score
// fields land in [0,100] at 2 decimals, the weekly-hours fields in [0,168]
// at 1 decimal, the currency fields at integer precision within their
// bounds. projected_death_date is an unbounded instant and passes through.
func ClampMetrics(m domain.Metrics) domain.Metrics {
	score := func(v float64) float64 { return round2(clamp(v, 0, 100)) }
	hours := func(v float64) float64 { return round1(clamp(v, 0, weekHours)) }
	return domain.Metrics{
		Health:             score(m.Health),
		Career:             score(m.Career),
		Relationships:      hours(m.Relationships),
		Fulfillment:        score(m.Fulfillment),
		Stress:             score(m.Stress),
		FreeTime:           hours(m.FreeTime),
		NetWorth:           math.Round(clamp(m.NetWorth, netWorthMin, netWorthMax)),
		Salary:             math.Round(clamp(m.Salary, 0, salaryMax)),
		MonthlyExpenses:    math.Round(clamp(m.MonthlyExpenses, 0, monthlyExpensesMax)),
		Confidence:         score(m.Confidence),
		ProjectedDeathDate: m.ProjectedDeathDate,
	}
}
