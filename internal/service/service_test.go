package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqin77/lifepath/internal/domain"
	"github.com/hqin77/lifepath/internal/narrative"
	store "github.com/hqin77/lifepath/internal/repository"
	"github.com/hqin77/lifepath/policy"
)

const testOwner = "owner_1"

// failingClient errors on every call, forcing the built-in fallbacks.
type failingClient struct{}

func (failingClient) TrajectoryPlan(context.Context, narrative.PlanRequest) (*narrative.TrajectoryPlan, error) {
	return nil, errors.New("provider down")
}

func (failingClient) StepStory(context.Context, narrative.StoryRequest) (*narrative.StoryResult, error) {
	return nil, errors.New("provider down")
}

func (failingClient) NextOptions(context.Context, narrative.OptionsRequest) ([]narrative.OptionProposal, error) {
	return nil, errors.New("provider down")
}

func newTestService(t *testing.T, client narrative.Client) *Service {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := narrative.NewGenerator(client, narrative.NewAvailability(time.Minute), log)
	pol, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)
	return New(st, gen, pol, log)
}

func TestCreateManualRun(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{
		Mode:  domain.ModeManualStep,
		Title: "Slow and steady",
	})
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)

	run := res.Run
	assert.Equal(t, domain.RunStatusActive, run.Status)
	assert.Equal(t, 0, run.CurrentDay)
	assert.Equal(t, domain.HorizonTenYears, run.HorizonPreset)
	assert.Equal(t, run.BaselineMetrics, run.LatestMetrics)

	root := res.Nodes[0]
	assert.Equal(t, 0, root.Seq)
	assert.Equal(t, domain.ActionTypeSystem, root.ActionType)
	require.Len(t, root.NextOptions, 3)
	for _, opt := range root.NextOptions {
		assert.NotEmpty(t, opt.OptionID)
		assert.NotEmpty(t, opt.Title)
		assert.NotEmpty(t, opt.ImpactHint)
		assert.NotEqual(t, domain.Metrics{}, opt.PreviewDeltas)
	}
}

func TestCreateRunValidation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: "sideways"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{
		Mode:          domain.ModeAutoFuture,
		HorizonPreset: "forever",
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCreateAutoRunBuildsTrajectory(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{
		Mode:          domain.ModeAutoFuture,
		HorizonPreset: domain.HorizonOneWeek,
	})
	require.NoError(t, err)
	require.Len(t, res.Nodes, 8)

	for i, node := range res.Nodes {
		assert.Equal(t, i, node.Seq)
		if i > 0 {
			prev := res.Nodes[i-1]
			assert.Equal(t, domain.ActionTypeAutoProjection, node.ActionType)
			assert.True(t, node.SimulatedDate.After(prev.SimulatedDate))
			assert.NotEmpty(t, node.ActionLabel)
			assert.NotEmpty(t, node.Story)
			assert.NotEmpty(t, node.Changelog)
		}
	}
	assert.Equal(t, 7, res.Run.CurrentDay)
	assert.Equal(t, res.Nodes[7].MetricsSnapshot, res.Run.LatestMetrics)

	// The run and its whole timeline are persisted.
	got, err := svc.Get(ctx, testOwner, res.Run.RunID, 0)
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 8)
	assert.Equal(t, 7, got.Run.CurrentDay)
}

func TestStepAppendsExactlyOneNode(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)
	root := res.Nodes[0]

	node, err := svc.Step(ctx, testOwner, res.Run.RunID, domain.StepRequest{
		OptionID: root.NextOptions[0].OptionID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, node.Seq)
	assert.Equal(t, domain.ActionTypeManualPredefined, node.ActionType)
	assert.Equal(t, root.SimulatedDate.AddDate(0, 0, 1), node.SimulatedDate)
	assert.Equal(t, root.NextOptions[0].Title, node.ActionLabel)
	assert.NotEmpty(t, node.Story)
	require.Len(t, node.NextOptions, 3)

	// Deltas are exactly the change between consecutive snapshots.
	assert.Equal(t, node.MetricsSnapshot.Sub(root.MetricsSnapshot), node.MetricDeltas)

	got, err := svc.Get(ctx, testOwner, res.Run.RunID, 0)
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 2)
	assert.Equal(t, 1, got.Run.CurrentDay)
	assert.Equal(t, node.MetricsSnapshot, got.Run.LatestMetrics)
}

func TestStepCustomAction(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)

	node, err := svc.Step(ctx, testOwner, res.Run.RunID, domain.StepRequest{
		CustomAction: &domain.CustomAction{Label: "Train for a marathon", Details: "morning runs before work"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTypeManualCustom, node.ActionType)
	assert.Equal(t, "Train for a marathon", node.ActionLabel)

	_, err = svc.Step(ctx, testOwner, res.Run.RunID, domain.StepRequest{
		CustomAction: &domain.CustomAction{Label: "   "},
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestStepValidation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)
	runID := res.Run.RunID

	_, err = svc.Step(ctx, testOwner, runID, domain.StepRequest{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.Step(ctx, testOwner, runID, domain.StepRequest{
		OptionID:     "opt_abc",
		CustomAction: &domain.CustomAction{Label: "both at once"},
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.Step(ctx, testOwner, runID, domain.StepRequest{OptionID: "opt_missing"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestStepOnAutoRunRejected(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{
		Mode:          domain.ModeAutoFuture,
		HorizonPreset: domain.HorizonOneWeek,
	})
	require.NoError(t, err)

	_, err = svc.Step(ctx, testOwner, res.Run.RunID, domain.StepRequest{
		CustomAction: &domain.CustomAction{Label: "Take a walk"},
	})
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
}

func TestStepAfterEndRejected(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)
	_, err = svc.End(ctx, testOwner, res.Run.RunID)
	require.NoError(t, err)

	_, err = svc.Step(ctx, testOwner, res.Run.RunID, domain.StepRequest{
		CustomAction: &domain.CustomAction{Label: "Take a walk"},
	})
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
}

func TestEndIsIdempotent(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{
		Mode:          domain.ModeAutoFuture,
		HorizonPreset: domain.HorizonOneYear,
	})
	require.NoError(t, err)

	first, err := svc.End(ctx, testOwner, res.Run.RunID)
	require.NoError(t, err)
	assert.Equal(t, 53, first.TotalNodes)
	assert.Equal(t, 364, first.EndedDay)
	assert.NotEmpty(t, first.TopMetric)
	assert.LessOrEqual(t, len(first.CareerSeries), 24)
	assert.Len(t, first.HealthSeries, len(first.CareerSeries))
	assert.Len(t, first.NetWorthSeries, len(first.CareerSeries))

	second, err := svc.End(ctx, testOwner, res.Run.RunID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := svc.Get(ctx, testOwner, res.Run.RunID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusEnded, got.Run.Status)
}

func TestOperationsSurviveProviderOutage(t *testing.T) {
	svc := newTestService(t, failingClient{})
	ctx := context.Background()

	auto, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{
		Mode:          domain.ModeAutoFuture,
		HorizonPreset: domain.HorizonOneWeek,
	})
	require.NoError(t, err)
	assert.Len(t, auto.Nodes, 8)

	manual, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)
	require.Len(t, manual.Nodes[0].NextOptions, 3)

	node, err := svc.Step(ctx, testOwner, manual.Run.RunID, domain.StepRequest{
		OptionID: manual.Nodes[0].NextOptions[0].OptionID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, node.Story)
	require.Len(t, node.NextOptions, 3)

	_, err = svc.End(ctx, testOwner, manual.Run.RunID)
	require.NoError(t, err)
}

func TestForeignRunIsNotFound(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "someone_else", res.Run.RunID, 0)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = svc.End(ctx, "someone_else", res.Run.RunID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = svc.Rename(ctx, "someone_else", res.Run.RunID, "stolen")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestRename(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.CreateRun(ctx, testOwner, domain.CreateRunRequest{Mode: domain.ModeManualStep})
	require.NoError(t, err)

	run, err := svc.Rename(ctx, testOwner, res.Run.RunID, "Second act")
	require.NoError(t, err)
	assert.Equal(t, "Second act", run.Title)

	got, err := svc.Get(ctx, testOwner, res.Run.RunID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Second act", got.Run.Title)

	_, err = svc.Rename(ctx, testOwner, res.Run.RunID, "  ")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
