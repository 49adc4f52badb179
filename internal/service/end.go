package service

import (
	"context"

	"github.com/hqin77/lifepath/internal/domain"
)

// End closes a run and returns its summary. Ending an already-ended run
// is a no-op that returns the stored summary unchanged.
func (s *Service) End(ctx context.Context, ownerID, runID string) (*domain.RunSummary, error) {
	run, err := s.ownedRun(ctx, ownerID, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == domain.RunStatusEnded && run.Summary != nil {
		return run.Summary, nil
	}

	nodes, err := s.store.GetNodes(ctx, runID, 0)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "load nodes for run %s", runID)
	}
	summary := buildSummary(run, nodes)
	if run.Status == domain.RunStatusEnded {
		// Ended without a stored summary; report without rewriting state.
		return summary, nil
	}
	if err := s.store.UpdateRunEnded(ctx, runID, summary); err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "end run %s", runID)
	}
	s.log.Info("run ended", "run_id", runID, "nodes", summary.TotalNodes, "top_metric", summary.TopMetric)
	return summary, nil
}

const maxSeriesPoints = 24

// growthMetric normalizes cross-unit comparisons when ranking which
// metric grew most over a run.
type growthMetric struct {
	name  string
	get   func(domain.Metrics) float64
	scale float64
}

var growthMetrics = []growthMetric{
	{"career", func(m domain.Metrics) float64 { return m.Career }, 100},
	{"health", func(m domain.Metrics) float64 { return m.Health }, 100},
	{"fulfillment", func(m domain.Metrics) float64 { return m.Fulfillment }, 100},
	{"confidence", func(m domain.Metrics) float64 { return m.Confidence }, 100},
	{"relationships", func(m domain.Metrics) float64 { return m.Relationships }, 40},
	{"free_time", func(m domain.Metrics) float64 { return m.FreeTime }, 40},
	{"salary", func(m domain.Metrics) float64 { return m.Salary }, 50_000},
	{"net_worth", func(m domain.Metrics) float64 { return m.NetWorth }, 50_000},
}

func buildSummary(run *domain.Run, nodes []domain.Node) *domain.RunSummary {
	first, last := run.BaselineMetrics, run.LatestMetrics
	if len(nodes) > 0 {
		first = nodes[0].MetricsSnapshot
		last = nodes[len(nodes)-1].MetricsSnapshot
	}

	topName, topDelta, topScore := "career", 0.0, 0.0
	for i, gm := range growthMetrics {
		delta := gm.get(last) - gm.get(first)
		score := delta / gm.scale
		if i == 0 || score > topScore {
			topName, topDelta, topScore = gm.name, delta, score
		}
	}

	sampled := sampleNodes(nodes, maxSeriesPoints)
	career := make([]float64, 0, len(sampled))
	health := make([]float64, 0, len(sampled))
	netWorth := make([]float64, 0, len(sampled))
	for _, n := range sampled {
		career = append(career, n.MetricsSnapshot.Career)
		health = append(health, n.MetricsSnapshot.Health)
		netWorth = append(netWorth, n.MetricsSnapshot.NetWorth)
	}

	return &domain.RunSummary{
		TopMetric:      topName,
		TopMetricDelta: topDelta,
		CareerSeries:   career,
		HealthSeries:   health,
		NetWorthSeries: netWorth,
		FinalMetrics:   last,
		TotalNodes:     len(nodes),
		EndedDay:       run.CurrentDay,
	}
}

// sampleNodes picks up to max evenly spaced nodes, always keeping the
// first and last.
func sampleNodes(nodes []domain.Node, max int) []domain.Node {
	if len(nodes) <= max {
		return nodes
	}
	sampled := make([]domain.Node, 0, max)
	for i := 0; i < max; i++ {
		idx := i * (len(nodes) - 1) / (max - 1)
		sampled = append(sampled, nodes[idx])
	}
	return sampled
}
