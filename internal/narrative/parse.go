package narrative

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The provider returns free-form model output that should contain a JSON
// document. Parsing is strict and field-by-field: a missing or mistyped
// required field fails the whole response so the caller falls back, rather
// than silently defaulting.

// extractJSON trims the common failure mode of models wrapping JSON in
// markdown fences or prose.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "```"); i >= 0 {
		content = content[i+3:]
		content = strings.TrimPrefix(content, "json")
		if j := strings.Index(content, "```"); j >= 0 {
			content = content[:j]
		}
	}
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(content[start:])
}

func parsePlan(content string) (*TrajectoryPlan, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in plan response")
	}
	var payload struct {
		Tone             string   `json:"tone"`
		Themes           []string `json:"themes"`
		RecurringActions []struct {
			Label   string `json:"label"`
			Details string `json:"details"`
		} `json:"recurring_actions"`
		Milestones []struct {
			AtStep  int    `json:"at_step"`
			Label   string `json:"label"`
			Details string `json:"details"`
		} `json:"milestones"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	plan := &TrajectoryPlan{Tone: strings.TrimSpace(payload.Tone)}
	if plan.Tone == "" {
		plan.Tone = "steady"
	}
	for _, t := range payload.Themes {
		if t = strings.TrimSpace(t); t != "" {
			plan.Themes = append(plan.Themes, t)
		}
	}
	for _, a := range payload.RecurringActions {
		label := strings.TrimSpace(a.Label)
		if label == "" {
			return nil, fmt.Errorf("recurring action with empty label")
		}
		plan.RecurringActions = append(plan.RecurringActions, PlanAction{Label: label, Details: strings.TrimSpace(a.Details)})
	}
	if len(plan.RecurringActions) == 0 {
		return nil, fmt.Errorf("plan has no recurring actions")
	}
	for _, m := range payload.Milestones {
		label := strings.TrimSpace(m.Label)
		if label == "" || m.AtStep < 1 {
			return nil, fmt.Errorf("milestone missing label or valid at_step")
		}
		plan.Milestones = append(plan.Milestones, Milestone{AtStep: m.AtStep, Label: label, Details: strings.TrimSpace(m.Details)})
	}
	return plan, nil
}

func parseStory(content string) (*StoryResult, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in story response")
	}
	var payload struct {
		ActionLabel string `json:"action_label"`
		Story       string `json:"story"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	story := strings.TrimSpace(payload.Story)
	if story == "" {
		return nil, fmt.Errorf("story response missing story text")
	}
	return &StoryResult{ActionLabel: strings.TrimSpace(payload.ActionLabel), Story: story}, nil
}

func parseOptions(content string) ([]OptionProposal, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON in options response")
	}
	var payload struct {
		Options []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"options"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if len(payload.Options) != 3 {
		return nil, fmt.Errorf("expected exactly 3 options, got %d", len(payload.Options))
	}
	out := make([]OptionProposal, 0, 3)
	for _, o := range payload.Options {
		title := strings.TrimSpace(o.Title)
		if title == "" {
			return nil, fmt.Errorf("option with empty title")
		}
		out = append(out, OptionProposal{Title: title, Description: strings.TrimSpace(o.Description)})
	}
	return out, nil
}
