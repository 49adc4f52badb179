// Package narrative provides the optional text-generation collaborator and
// the deterministic fallbacks that stand in for it. The engine's numbers
// never come from here; this layer only supplies plan themes, stories, and
// option labels.
package narrative

import (
	"context"

	"github.com/hqin77/lifepath/internal/domain"
)

// PlanAction is one recurring action in a trajectory plan.
type PlanAction struct {
	Label   string `json:"label"`
	Details string `json:"details,omitempty"`
}

// Milestone is a dated one-off event inside a trajectory plan. AtStep is
// the 1-based node index the milestone lands on.
type Milestone struct {
	AtStep  int    `json:"at_step"`
	Label   string `json:"label"`
	Details string `json:"details,omitempty"`
}

// TrajectoryPlan is the thematic plan an auto_future run is built from.
type TrajectoryPlan struct {
	Tone             string       `json:"tone"`
	Themes           []string     `json:"themes,omitempty"`
	RecurringActions []PlanAction `json:"recurring_actions"`
	Milestones       []Milestone  `json:"milestones,omitempty"`
}

// PlanRequest asks the provider for a trajectory plan.
type PlanRequest struct {
	HorizonPreset domain.HorizonPreset
	TargetOutcome string
	Metrics       domain.Metrics
	ProfileDigest string
	MemoryDigest  string
}

// StoryRequest asks the provider for a short narrative for one step.
type StoryRequest struct {
	ActionLabel   string
	ActionDetails string
	Metrics       domain.Metrics
	LatestStory   string
}

// StoryResult is the provider's (or fallback's) narrative for one step.
type StoryResult struct {
	ActionLabel string `json:"action_label"`
	Story       string `json:"story"`
}

// OptionsRequest asks the provider for candidate next actions.
type OptionsRequest struct {
	Metrics       domain.Metrics
	ProfileDigest string
	MemoryDigest  string
	LastAction    string
}

// OptionProposal is a candidate next action before the engine attaches its
// preview bias.
type OptionProposal struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Client is the narrative text provider. Implementations may fail or time
// out; callers go through Generator, which recovers every failure with the
// built-in deterministic fallbacks.
type Client interface {
	// TrajectoryPlan returns a thematic plan for an auto_future horizon.
	TrajectoryPlan(ctx context.Context, req PlanRequest) (*TrajectoryPlan, error)

	// StepStory returns a short narrative for one applied action.
	StepStory(ctx context.Context, req StoryRequest) (*StoryResult, error)

	// NextOptions returns exactly three candidate next actions.
	NextOptions(ctx context.Context, req OptionsRequest) ([]OptionProposal, error)
}
