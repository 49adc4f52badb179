package service

import (
	"context"
	"strings"
	"time"

	"github.com/hqin77/lifepath/internal/domain"
	"github.com/hqin77/lifepath/internal/engine"
	"github.com/hqin77/lifepath/internal/narrative"
)

const maxTitleLen = 120

// defaultBaseline is the starting profile used when a caller omits
// baseline metrics.
func defaultBaseline(now time.Time) domain.Metrics {
	return domain.Metrics{
		Health:             70,
		Career:             50,
		Relationships:      12,
		Fulfillment:        60,
		Stress:             40,
		FreeTime:           40,
		NetWorth:           10_000,
		Salary:             60_000,
		MonthlyExpenses:    2_500,
		Confidence:         55,
		ProjectedDeathDate: now.AddDate(55, 0, 0).UnixMilli(),
	}
}

// CreateRun creates a run with its seq-0 baseline node. Auto runs are
// populated with their whole trajectory in one batch before returning;
// manual runs get three next options on the baseline node and wait for
// steps.
func (s *Service) CreateRun(ctx context.Context, ownerID string, req domain.CreateRunRequest) (*domain.RunWithNodes, error) {
	if !req.Mode.Valid() {
		return nil, domain.E(domain.KindValidation, "invalid mode %q", req.Mode)
	}
	if !req.HorizonPreset.Valid() {
		return nil, domain.E(domain.KindValidation, "invalid horizon preset %q", req.HorizonPreset)
	}
	preset := req.HorizonPreset
	if preset == "" {
		preset = domain.HorizonTenYears
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(req.TargetOutcome)
	}
	if title == "" {
		title = "Untitled life"
	}
	if len(title) > maxTitleLen {
		return nil, domain.E(domain.KindValidation, "title exceeds %d characters", maxTitleLen)
	}

	now := s.now().UTC()
	baseline := defaultBaseline(now)
	if req.BaselineMetrics != nil {
		baseline = *req.BaselineMetrics
		if baseline.ProjectedDeathDate == 0 {
			baseline.ProjectedDeathDate = now.AddDate(55, 0, 0).UnixMilli()
		}
	}
	baseline = engine.ClampMetrics(baseline)

	run := &domain.Run{
		RunID:           s.newID("run"),
		OwnerID:         ownerID,
		Title:           title,
		Mode:            req.Mode,
		HorizonPreset:   preset,
		Status:          domain.RunStatusActive,
		BaselineMetrics: baseline,
		LatestMetrics:   baseline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	root := domain.Node{
		NodeID:          s.newID("node"),
		RunID:           run.RunID,
		Seq:             0,
		SimulatedDate:   now.Truncate(24 * time.Hour),
		ActionType:      domain.ActionTypeSystem,
		ActionLabel:     "Starting point",
		Story:           "Day zero. The current shape of life, before any choices land.",
		MetricsSnapshot: baseline,
		CreatedAt:       now,
	}

	nodes := []domain.Node{root}
	switch req.Mode {
	case domain.ModeAutoFuture:
		plan := s.gen.Plan(ctx, narrative.PlanRequest{
			HorizonPreset: preset,
			TargetOutcome: req.TargetOutcome,
			Metrics:       baseline,
		})
		trajectory, final := s.buildTrajectory(run.RunID, root.SimulatedDate, baseline, preset, plan, now)
		nodes = append(nodes, trajectory...)
		stepDays, steps := preset.Schedule()
		run.CurrentDay = stepDays * steps
		run.LatestMetrics = final
	case domain.ModeManualStep:
		nodes[0].NextOptions = s.buildOptions(ctx, baseline, "")
	}

	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "create run")
	}
	if err := s.store.CreateNodes(ctx, nodes); err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "create nodes for run %s", run.RunID)
	}
	s.log.Info("run created",
		"run_id", run.RunID, "mode", run.Mode, "horizon", preset, "nodes", len(nodes))
	return &domain.RunWithNodes{Run: run, Nodes: nodes}, nil
}

// buildTrajectory translates a plan into the full auto node sequence.
// Each step reuses the recurring actions in rotation unless a milestone
// claims that step. Stories come from the deterministic built-ins; the
// provider is only consulted once, for the plan itself.
func (s *Service) buildTrajectory(runID string, start time.Time, baseline domain.Metrics, preset domain.HorizonPreset, plan narrative.TrajectoryPlan, now time.Time) ([]domain.Node, domain.Metrics) {
	stepDays, steps := preset.Schedule()
	cur := baseline
	date := start
	nodes := make([]domain.Node, 0, steps)
	for i := 1; i <= steps; i++ {
		action := planActionAt(plan, i)
		proj := engine.Project(cur, action.Label, action.Details, stepDays)
		date = date.AddDate(0, 0, stepDays)
		story := narrative.BuiltinStory(narrative.StoryRequest{
			ActionLabel:   action.Label,
			ActionDetails: action.Details,
			Metrics:       proj.Final,
		})
		nodes = append(nodes, domain.Node{
			NodeID:          s.newID("node"),
			RunID:           runID,
			Seq:             i,
			SimulatedDate:   date,
			ActionType:      domain.ActionTypeAutoProjection,
			ActionLabel:     action.Label,
			ActionDetails:   action.Details,
			Story:           story.Story,
			Changelog:       proj.Changelog,
			MetricDeltas:    proj.Deltas,
			MetricsSnapshot: proj.Final,
			CreatedAt:       now,
		})
		cur = proj.Final
	}
	return nodes, cur
}

// planActionAt resolves the action for a 1-based trajectory step:
// milestones win their step, recurring actions rotate everywhere else.
func planActionAt(plan narrative.TrajectoryPlan, step int) narrative.PlanAction {
	for _, m := range plan.Milestones {
		if m.AtStep == step {
			return narrative.PlanAction{Label: m.Label, Details: m.Details}
		}
	}
	if len(plan.RecurringActions) == 0 {
		return narrative.PlanAction{Label: "Keep steady routines"}
	}
	return plan.RecurringActions[(step-1)%len(plan.RecurringActions)]
}

// buildOptions asks the generator for three candidate actions and
// attaches a one-day preview bias to each. It never fails; the generator
// falls back to deterministic options when the provider is down.
func (s *Service) buildOptions(ctx context.Context, m domain.Metrics, lastAction string) []domain.Option {
	proposals := s.gen.Options(ctx, narrative.OptionsRequest{Metrics: m, LastAction: lastAction})
	if len(proposals) > 3 {
		proposals = proposals[:3]
	}
	options := make([]domain.Option, 0, len(proposals))
	for _, p := range proposals {
		proj := engine.Project(m, p.Title, p.Description, 1)
		options = append(options, domain.Option{
			OptionID:      s.newID("opt"),
			Title:         p.Title,
			Description:   p.Description,
			ImpactHint:    proj.Impact,
			PreviewDeltas: proj.Deltas,
		})
	}
	return options
}
