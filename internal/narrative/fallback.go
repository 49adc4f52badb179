package narrative

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hqin77/lifepath/internal/domain"
)

//go:embed plans.yaml
var plansYAML []byte

type yamlPlan struct {
	Tone             string   `yaml:"tone"`
	Themes           []string `yaml:"themes"`
	RecurringActions []struct {
		Label   string `yaml:"label"`
		Details string `yaml:"details"`
	} `yaml:"recurring_actions"`
	Milestones []struct {
		AtStep  int    `yaml:"at_step"`
		Label   string `yaml:"label"`
		Details string `yaml:"details"`
	} `yaml:"milestones"`
}

// builtinPlans is the hand-authored plan library, keyed by horizon preset.
var builtinPlans = loadBuiltinPlans()

func loadBuiltinPlans() map[domain.HorizonPreset]TrajectoryPlan {
	var raw map[string]yamlPlan
	if err := yaml.Unmarshal(plansYAML, &raw); err != nil {
		panic(fmt.Sprintf("narrative: embedded plans.yaml is invalid: %v", err))
	}
	plans := make(map[domain.HorizonPreset]TrajectoryPlan, len(raw))
	for key, p := range raw {
		plan := TrajectoryPlan{Tone: p.Tone, Themes: p.Themes}
		for _, a := range p.RecurringActions {
			plan.RecurringActions = append(plan.RecurringActions, PlanAction{Label: a.Label, Details: a.Details})
		}
		for _, m := range p.Milestones {
			plan.Milestones = append(plan.Milestones, Milestone{AtStep: m.AtStep, Label: m.Label, Details: m.Details})
		}
		plans[domain.HorizonPreset(key)] = plan
	}
	return plans
}

// BuiltinPlan returns the hand-authored trajectory plan for a preset.
func BuiltinPlan(preset domain.HorizonPreset) TrajectoryPlan {
	if plan, ok := builtinPlans[preset]; ok {
		return plan
	}
	return builtinPlans[domain.HorizonTenYears]
}

// lifeArea pairs an area's deficit score with its option templates. The
// fallback proposes options for whichever areas are currently weakest.
type lifeArea struct {
	name    string
	deficit float64
}

var areaOptions = map[string]OptionProposal{
	"career": {
		Title:       "Take on the stretch project at work",
		Description: "Volunteer for the visible, slightly scary assignment",
	},
	"health": {
		Title:       "Commit to a morning exercise routine",
		Description: "Thirty minutes before work, every weekday",
	},
	"relationships": {
		Title:       "Plan a weekend with family or friends",
		Description: "Block the time and actually show up",
	},
	"finance": {
		Title:       "Set a budget and automate savings",
		Description: "Move a fixed amount to investments each payday",
	},
	"leisure": {
		Title:       "Take a short trip to recharge",
		Description: "A few days away, no laptop",
	},
}

// BuiltinOptions proposes exactly three options, targeting the three most
// deficient life areas in the snapshot. Deterministic: ties break on the
// fixed area order below.
func BuiltinOptions(m domain.Metrics) []OptionProposal {
	areas := []lifeArea{
		{"career", 1 - m.Career/100},
		{"health", 1 - m.Health/100},
		{"relationships", 1 - clampNorm(m.Relationships/30)},
		{"finance", 1 - clampNorm(m.NetWorth/250_000)},
		{"leisure", 1 - clampNorm(m.FreeTime/40)},
	}
	sort.SliceStable(areas, func(i, j int) bool { return areas[i].deficit > areas[j].deficit })

	out := make([]OptionProposal, 0, 3)
	for _, a := range areas[:3] {
		out = append(out, areaOptions[a.name])
	}
	return out
}

func clampNorm(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BuiltinStory writes a short deterministic narrative for one step.
func BuiltinStory(req StoryRequest) StoryResult {
	story := fmt.Sprintf("You decide to %s.", lowerFirst(req.ActionLabel))
	switch {
	case req.Metrics.Stress > 70:
		story += " The pace is wearing on you, and the days blur a little at the edges."
	case req.Metrics.Health > 70 && req.Metrics.Fulfillment > 60:
		story += " Things feel like they are clicking; the routine carries you more than it costs you."
	default:
		story += " The change settles in slowly, one ordinary day at a time."
	}
	return StoryResult{ActionLabel: req.ActionLabel, Story: story}
}

func lowerFirst(s string) string {
	if s == "" {
		return "carry on as before"
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] - 'A' + 'a'
	}
	return string(r)
}
