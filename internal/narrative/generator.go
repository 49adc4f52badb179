package narrative

import (
	"context"
	"log/slog"
)

// Generator fronts the narrative provider with an ordered fallback chain.
// Every accessor tries its sources in sequence and always returns a valid
// result: the provider first (when available), then the deterministic
// built-ins, which cannot miss. Provider failures are logged and absorbed;
// they never surface to the run operations.
type Generator struct {
	client Client
	avail  *Availability
	log    *slog.Logger
}

// NewGenerator wires a generator. client may be nil, in which case only
// the built-ins run.
func NewGenerator(client Client, avail *Availability, log *slog.Logger) *Generator {
	return &Generator{client: client, avail: avail, log: log}
}

type planSource func(ctx context.Context, req PlanRequest) (*TrajectoryPlan, bool)

// Plan returns a trajectory plan; it cannot fail.
func (g *Generator) Plan(ctx context.Context, req PlanRequest) TrajectoryPlan {
	sources := []planSource{g.providerPlan, g.builtinPlan}
	for _, source := range sources {
		if plan, ok := source(ctx, req); ok {
			return *plan
		}
	}
	// builtinPlan never misses.
	return BuiltinPlan(req.HorizonPreset)
}

func (g *Generator) providerPlan(ctx context.Context, req PlanRequest) (*TrajectoryPlan, bool) {
	if g.client == nil || !g.avail.Available() {
		return nil, false
	}
	plan, err := g.client.TrajectoryPlan(ctx, req)
	if err != nil {
		g.avail.MarkFailure()
		g.log.Warn("narrative plan failed, using builtin", "error", err)
		return nil, false
	}
	g.avail.MarkSuccess()
	return plan, true
}

func (g *Generator) builtinPlan(_ context.Context, req PlanRequest) (*TrajectoryPlan, bool) {
	plan := BuiltinPlan(req.HorizonPreset)
	return &plan, true
}

// Story returns a step narrative; it cannot fail.
func (g *Generator) Story(ctx context.Context, req StoryRequest) StoryResult {
	if g.client != nil && g.avail.Available() {
		if story, err := g.client.StepStory(ctx, req); err == nil {
			g.avail.MarkSuccess()
			return *story
		} else {
			g.avail.MarkFailure()
			g.log.Warn("narrative story failed, using builtin", "error", err)
		}
	}
	return BuiltinStory(req)
}

// Options returns exactly three option proposals; it cannot fail.
func (g *Generator) Options(ctx context.Context, req OptionsRequest) []OptionProposal {
	if g.client != nil && g.avail.Available() {
		if options, err := g.client.NextOptions(ctx, req); err == nil {
			g.avail.MarkSuccess()
			return options
		} else {
			g.avail.MarkFailure()
			g.log.Warn("narrative options failed, using builtin", "error", err)
		}
	}
	return BuiltinOptions(req.Metrics)
}
