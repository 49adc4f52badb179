package service

import (
	"context"
	"strings"

	"github.com/hqin77/lifepath/internal/domain"
	"github.com/hqin77/lifepath/internal/engine"
	"github.com/hqin77/lifepath/internal/narrative"
)

// Step advances a manual run by one simulated day. Exactly one node is
// appended; the run's next options are regenerated on it.
func (s *Service) Step(ctx context.Context, ownerID, runID string, req domain.StepRequest) (*domain.Node, error) {
	hasOption := req.OptionID != ""
	hasCustom := req.CustomAction != nil
	if hasOption == hasCustom {
		return nil, domain.E(domain.KindValidation, "exactly one of option_id or custom_action is required")
	}

	run, err := s.ownedRun(ctx, ownerID, runID)
	if err != nil {
		return nil, err
	}
	if run.Mode != domain.ModeManualStep {
		return nil, domain.E(domain.KindInvalidState, "run %s is not a manual run", runID)
	}
	if run.Status != domain.RunStatusActive {
		return nil, domain.E(domain.KindInvalidState, "run %s has ended", runID)
	}

	latest, err := s.store.GetLatestNode(ctx, runID)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "load latest node for run %s", runID)
	}
	if latest == nil {
		return nil, domain.E(domain.KindStorage, "run %s has no timeline", runID)
	}

	var label, details string
	var actionType domain.ActionType
	if hasOption {
		opt := findOption(latest.NextOptions, req.OptionID)
		if opt == nil {
			return nil, domain.E(domain.KindValidation, "option %q is not offered on the current node", req.OptionID)
		}
		label, details = opt.Title, opt.Description
		actionType = domain.ActionTypeManualPredefined
	} else {
		label = strings.TrimSpace(req.CustomAction.Label)
		details = strings.TrimSpace(req.CustomAction.Details)
		if blocked, reason := s.checkCustomAction(ctx, ownerID, label, details); blocked {
			return nil, domain.E(domain.KindValidation, "action rejected: %s", reason)
		}
		actionType = domain.ActionTypeManualCustom
	}

	proj := engine.Project(latest.MetricsSnapshot, label, details, 1)
	story := s.gen.Story(ctx, narrative.StoryRequest{
		ActionLabel:   label,
		ActionDetails: details,
		Metrics:       proj.Final,
		LatestStory:   latest.Story,
	})

	now := s.now().UTC()
	node := &domain.Node{
		NodeID:          s.newID("node"),
		RunID:           runID,
		Seq:             latest.Seq + 1,
		SimulatedDate:   latest.SimulatedDate.AddDate(0, 0, 1),
		ActionType:      actionType,
		ActionLabel:     label,
		ActionDetails:   details,
		Story:           story.Story,
		Changelog:       proj.Changelog,
		MetricDeltas:    proj.Deltas,
		MetricsSnapshot: proj.Final,
		NextOptions:     s.buildOptions(ctx, proj.Final, label),
		CreatedAt:       now,
	}
	if err := s.store.CreateNode(ctx, node); err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "append node %d to run %s", node.Seq, runID)
	}
	if err := s.store.UpdateRunProgress(ctx, runID, run.CurrentDay+1, proj.Final); err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "advance run %s", runID)
	}
	s.log.Info("run stepped", "run_id", runID, "seq", node.Seq, "action", label)
	return node, nil
}

// checkCustomAction runs the custom action through the policy engine.
// Policy evaluation errors fail open: the engine is local and its
// default policy cannot error, so a broken custom policy should not
// strand the run.
func (s *Service) checkCustomAction(ctx context.Context, ownerID, label, details string) (blocked bool, reason string) {
	if s.policy == nil {
		return label == "", "empty action label"
	}
	decision, reason, err := s.policy.Evaluate(ctx, map[string]interface{}{
		"action_label":   label,
		"action_details": details,
		"owner_id":       ownerID,
	})
	if err != nil {
		s.log.Warn("policy evaluation failed, allowing action", "error", err)
		return false, ""
	}
	return decision == "block", reason
}

func findOption(options []domain.Option, optionID string) *domain.Option {
	for i := range options {
		if options[i].OptionID == optionID {
			return &options[i]
		}
	}
	return nil
}
