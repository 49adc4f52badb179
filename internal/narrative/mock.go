package narrative

import (
	"context"
	"fmt"
)

// MockClient is a canned narrative provider for local development and
// tests. Responses are deterministic functions of the request.
type MockClient struct{}

// NewMockClient creates a mock narrative client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements Client.
var _ Client = (*MockClient)(nil)

// TrajectoryPlan returns the builtin plan for the preset with a mock tone.
func (m *MockClient) TrajectoryPlan(_ context.Context, req PlanRequest) (*TrajectoryPlan, error) {
	plan := BuiltinPlan(req.HorizonPreset)
	plan.Tone = "mock-" + plan.Tone
	return &plan, nil
}

// StepStory returns a fixed-shape story derived from the action.
func (m *MockClient) StepStory(_ context.Context, req StoryRequest) (*StoryResult, error) {
	return &StoryResult{
		ActionLabel: req.ActionLabel,
		Story:       fmt.Sprintf("[mock] You go through with it: %s.", req.ActionLabel),
	}, nil
}

// NextOptions returns the builtin deficit-driven options.
func (m *MockClient) NextOptions(_ context.Context, req OptionsRequest) ([]OptionProposal, error) {
	return BuiltinOptions(req.Metrics), nil
}
