package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hqin77/lifepath/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleMetrics() domain.Metrics {
	return domain.Metrics{
		Health: 55, Career: 50, Relationships: 12, Fulfillment: 55, Stress: 62,
		FreeTime: 45, NetWorth: 15000, Salary: 74500, MonthlyExpenses: 3000,
		Confidence: 50, ProjectedDeathDate: 3_170_000_000_000,
	}
}

func sampleRun(id, owner string) *domain.Run {
	now := time.Now().UTC().Truncate(time.Second)
	m := sampleMetrics()
	return &domain.Run{
		RunID: id, OwnerID: owner, Title: "a new life", Mode: domain.ModeManualStep,
		HorizonPreset: domain.HorizonTenYears, Status: domain.RunStatusActive,
		BaselineMetrics: m, LatestMetrics: m, CreatedAt: now, UpdatedAt: now,
	}
}

func TestRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRun(ctx, sampleRun("r1", "u1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("run not found after insert")
	}
	if got.Mode != domain.ModeManualStep || got.Status != domain.RunStatusActive {
		t.Fatalf("run fields lost: %+v", got)
	}
	if got.BaselineMetrics != sampleMetrics() {
		t.Fatalf("baseline metrics did not survive round trip: %+v", got.BaselineMetrics)
	}
	if got.Summary != nil {
		t.Fatal("fresh run should have no summary")
	}

	missing, err := s.GetRun(ctx, "nope")
	if err != nil {
		t.Fatalf("GetRun on missing id errored: %v", err)
	}
	if missing != nil {
		t.Fatal("missing run should be (nil, nil)")
	}
}

func TestListRunsScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2"} {
		if err := s.CreateRun(ctx, sampleRun(id, "alice")); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}
	if err := s.CreateRun(ctx, sampleRun("r3", "bob")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for alice, got %d", len(runs))
	}
	for _, r := range runs {
		if r.OwnerID != "alice" {
			t.Fatalf("foreign run leaked into listing: %+v", r)
		}
	}
}

func TestRunEndedStoresSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRun(ctx, sampleRun("r1", "u1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	summary := &domain.RunSummary{
		TopMetric: "career", TopMetricDelta: 12.5,
		CareerSeries: []float64{50, 55, 62.5}, FinalMetrics: sampleMetrics(),
		TotalNodes: 3, EndedDay: 60,
	}
	if err := s.UpdateRunEnded(ctx, "r1", summary); err != nil {
		t.Fatalf("UpdateRunEnded failed: %v", err)
	}

	got, err := s.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != domain.RunStatusEnded {
		t.Fatalf("status should be ended, got %s", got.Status)
	}
	if got.Summary == nil || got.Summary.TopMetric != "career" || len(got.Summary.CareerSeries) != 3 {
		t.Fatalf("summary did not survive round trip: %+v", got.Summary)
	}
}

func nodeFor(runID string, seq int) domain.Node {
	return domain.Node{
		NodeID: runID + "-n" + string(rune('0'+seq)), RunID: runID, Seq: seq,
		SimulatedDate:   time.Date(2026, 1, 1+seq, 0, 0, 0, 0, time.UTC),
		ActionType:      domain.ActionTypeManualPredefined,
		ActionLabel:     "do the thing",
		Changelog:       []string{"Career rose from 50.0 to 51.0"},
		MetricDeltas:    domain.Metrics{Career: 1},
		MetricsSnapshot: sampleMetrics(),
		NextOptions: []domain.Option{
			{OptionID: "o1", Title: "Option A", PreviewDeltas: domain.Metrics{Stress: 2}},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestNodeRoundTripAndOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRun(ctx, sampleRun("r1", "u1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	for seq := 0; seq < 4; seq++ {
		n := nodeFor("r1", seq)
		if err := s.CreateNode(ctx, &n); err != nil {
			t.Fatalf("CreateNode seq %d failed: %v", seq, err)
		}
	}

	nodes, err := s.GetNodes(ctx, "r1", 0)
	if err != nil {
		t.Fatalf("GetNodes failed: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}
	for i, n := range nodes {
		if n.Seq != i {
			t.Fatalf("nodes out of order: index %d has seq %d", i, n.Seq)
		}
	}
	if len(nodes[1].NextOptions) != 1 || nodes[1].NextOptions[0].Title != "Option A" {
		t.Fatalf("options did not survive round trip: %+v", nodes[1].NextOptions)
	}

	latest, err := s.GetLatestNode(ctx, "r1")
	if err != nil {
		t.Fatalf("GetLatestNode failed: %v", err)
	}
	if latest == nil || latest.Seq != 3 {
		t.Fatalf("latest node should have seq 3, got %+v", latest)
	}
}

func TestDuplicateSeqRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRun(ctx, sampleRun("r1", "u1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	a := nodeFor("r1", 0)
	if err := s.CreateNode(ctx, &a); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	b := nodeFor("r1", 0)
	b.NodeID = "other-id"
	err := s.CreateNode(ctx, &b)
	if err == nil {
		t.Fatal("second append at the same seq must fail")
	}
	if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		t.Fatalf("expected uniqueness violation, got: %v", err)
	}
}

func TestCreateNodesBatchIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRun(ctx, sampleRun("r1", "u1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	pre := nodeFor("r1", 1)
	if err := s.CreateNode(ctx, &pre); err != nil {
		t.Fatalf("seed node failed: %v", err)
	}

	// Batch collides at seq 1; nothing from it may land.
	batch := []domain.Node{nodeFor("r1", 0), nodeFor("r1", 1)}
	batch[1].NodeID = "unique-id"
	if err := s.CreateNodes(ctx, batch); err == nil {
		t.Fatal("colliding batch should fail")
	}

	nodes, err := s.GetNodes(ctx, "r1", 0)
	if err != nil {
		t.Fatalf("GetNodes failed: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("failed batch must roll back, found %d nodes", len(nodes))
	}
}
