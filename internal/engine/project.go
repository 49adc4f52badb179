package engine

import (
	"fmt"
	"strings"

	"github.com/hqin77/lifepath/internal/domain"
)

// Day counts outside [1, 3650] are clamped before projecting.
const (
	minProjectionDays = 1
	maxProjectionDays = 3650
)

// Projection is the result of fast-forwarding a snapshot through N
// sequential daily transitions under one feature vector.
type Projection struct {
	Days      int
	Features  domain.Features
	Final     domain.Metrics
	Deltas    domain.Metrics
	Changelog []string
	Impact    string
}

// Project extracts the action's features once, then applies the daily
// transition days times. The same feature vector is reused for every day;
// an action description is never re-evaluated mid-projection.
func Project(start domain.Metrics, actionLabel, actionDetails string, days int) Projection {
	if days < minProjectionDays {
		days = minProjectionDays
	}
	if days > maxProjectionDays {
		days = maxProjectionDays
	}

	features := ExtractFeatures(actionLabel, actionDetails)
	cur := ClampMetrics(start)
	origin := cur
	for day := 0; day < days; day++ {
		cur = Transition(cur, features, StepContext{Day: day, Origin: origin})
	}

	deltas := cur.Sub(origin)
	return Projection{
		Days:      days,
		Features:  features,
		Final:     cur,
		Deltas:    deltas,
		Changelog: changelog(origin, cur),
		Impact:    impactHint(deltas),
	}
}

// trackedMetric describes one metric for changelog/impact purposes. scale
// normalizes movement across units; goodSign is -1 for metrics where a
// decrease is the improvement.
type trackedMetric struct {
	name     string
	get      func(domain.Metrics) float64
	scale    float64
	goodSign float64
	format   func(float64) string
}

func fmtScore(v float64) string { return fmt.Sprintf("%.1f", v) }
func fmtHours(v float64) string { return fmt.Sprintf("%.1fh", v) }
func fmtMoney(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.0f", -v)
	}
	return fmt.Sprintf("$%.0f", v)
}

// tracked is in fixed order so output is deterministic.
var tracked = []trackedMetric{
	{"career", func(m domain.Metrics) float64 { return m.Career }, 100, 1, fmtScore},
	{"health", func(m domain.Metrics) float64 { return m.Health }, 100, 1, fmtScore},
	{"stress", func(m domain.Metrics) float64 { return m.Stress }, 100, -1, fmtScore},
	{"fulfillment", func(m domain.Metrics) float64 { return m.Fulfillment }, 100, 1, fmtScore},
	{"confidence", func(m domain.Metrics) float64 { return m.Confidence }, 100, 1, fmtScore},
	{"relationships", func(m domain.Metrics) float64 { return m.Relationships }, 40, 1, fmtHours},
	{"free time", func(m domain.Metrics) float64 { return m.FreeTime }, 40, 1, fmtHours},
	{"salary", func(m domain.Metrics) float64 { return m.Salary }, 50_000, 1, fmtMoney},
	{"net worth", func(m domain.Metrics) float64 { return m.NetWorth }, 50_000, 1, fmtMoney},
}

// changelog emits one human-readable line per tracked metric that moved
// noticeably, in fixed metric order.
func changelog(from, to domain.Metrics) []string {
	var lines []string
	for _, tm := range tracked {
		a, b := tm.get(from), tm.get(to)
		if normMove(b-a, tm.scale) < 0.005 && normMove(a-b, tm.scale) < 0.005 {
			continue
		}
		verb := "rose"
		if b < a {
			verb = "fell"
		}
		lines = append(lines, fmt.Sprintf("%s %s from %s to %s",
			capitalize(tm.name), verb, tm.format(a), tm.format(b)))
	}
	if len(lines) == 0 {
		lines = append(lines, "No meaningful change")
	}
	return lines
}

func normMove(delta, scale float64) float64 {
	if delta < 0 {
		return 0
	}
	return delta / scale
}

// impactHint ranks which tracked metrics moved most positively and most
// negatively and summarizes in one sentence.
func impactHint(deltas domain.Metrics) string {
	bestScore, worstScore := 0.0, 0.0
	best, worst := "", ""
	for _, tm := range tracked {
		moved := tm.get(deltas) / tm.scale * tm.goodSign
		if moved > bestScore {
			bestScore, best = moved, tm.name
		}
		if moved < worstScore {
			worstScore, worst = moved, tm.name
		}
	}
	switch {
	case best != "" && worst != "":
		return fmt.Sprintf("Mostly lifts %s at the cost of %s.", best, costPhrase(worst, deltas))
	case best != "":
		return fmt.Sprintf("Broad improvement led by %s.", best)
	case worst != "":
		return fmt.Sprintf("Mainly erodes %s.", worst)
	default:
		return "Roughly neutral across tracked metrics."
	}
}

func costPhrase(name string, deltas domain.Metrics) string {
	if name == "stress" && deltas.Stress > 0 {
		return "higher stress"
	}
	return name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
