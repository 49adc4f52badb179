package engine

import (
	"reflect"
	"testing"
)

func TestProjectDeterministic(t *testing.T) {
	start := baselineSnapshot()
	a := Project(start, "Take the high-paying job in a new city", "", 30)
	b := Project(start, "Take the high-paying job in a new city", "", 30)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("projection must be bit-identical for identical input")
	}
}

func TestProjectClampsDayCount(t *testing.T) {
	start := baselineSnapshot()
	if p := Project(start, "rest", "", 0); p.Days != 1 {
		t.Errorf("day count below 1 should clamp to 1, got %d", p.Days)
	}
	if p := Project(start, "rest", "", -7); p.Days != 1 {
		t.Errorf("negative day count should clamp to 1, got %d", p.Days)
	}
	if p := Project(start, "rest", "", 100_000); p.Days != maxProjectionDays {
		t.Errorf("day count should clamp to %d, got %d", maxProjectionDays, p.Days)
	}
}

// The documented scenario: a high-work, high-risk, low-leisure action over
// 30 days must push stress, career, and salary up and free time down, with
// every intermediate day staying inside the metric domains.
func TestProjectHighPayingJobScenario(t *testing.T) {
	start := baselineSnapshot()
	label := "Take the high-paying job in a new city"

	features := ExtractFeatures(label, "")
	cur := ClampMetrics(start)
	origin := cur
	for day := 0; day < 30; day++ {
		cur = Transition(cur, features, StepContext{Day: day, Origin: origin})
		assertDomains(t, cur)
	}

	p := Project(start, label, "", 30)
	if cur != p.Final {
		t.Fatalf("manual iteration and Project disagree: %+v vs %+v", cur, p.Final)
	}
	if p.Final.Stress <= start.Stress {
		t.Errorf("stress should trend up: %.2f -> %.2f", start.Stress, p.Final.Stress)
	}
	if p.Final.Career <= start.Career {
		t.Errorf("career should trend up: %.2f -> %.2f", start.Career, p.Final.Career)
	}
	if p.Final.Salary <= start.Salary {
		t.Errorf("salary should trend up: %.0f -> %.0f", start.Salary, p.Final.Salary)
	}
	if p.Final.FreeTime >= start.FreeTime {
		t.Errorf("free time should trend down: %.1f -> %.1f", start.FreeTime, p.Final.FreeTime)
	}
}

// One 7-day projection is not the same as seven chained 1-day projections
// re-extracted from the same text: the day index and the projection origin
// reset on every call. Regression guard against accidental re-extraction
// inside the loop ever being "fixed" into equivalence.
func TestProjectSingleVsRepeatedDivergence(t *testing.T) {
	start := baselineSnapshot()
	label := "Take the high-paying job in a new city"

	single := Project(start, label, "", 7)

	chained := start
	for i := 0; i < 7; i++ {
		chained = Project(chained, label, "", 1).Final
	}

	if chained == single.Final {
		t.Fatal("7x1-day chaining should not reproduce one 7-day projection")
	}
}

func TestProjectDeltasMatchEndpoints(t *testing.T) {
	start := baselineSnapshot()
	p := Project(start, "Start a strict budget", "cut spending and invest the difference", 14)
	want := p.Final.Sub(ClampMetrics(start))
	if p.Deltas != want {
		t.Fatalf("deltas must equal final minus clamped start: %+v vs %+v", p.Deltas, want)
	}
}

func TestProjectChangelogAndImpact(t *testing.T) {
	p := Project(baselineSnapshot(), "Take the high-paying job in a new city", "", 30)
	if len(p.Changelog) == 0 {
		t.Fatal("a 30-day high-work projection should produce changelog lines")
	}
	if p.Impact == "" {
		t.Fatal("impact hint must never be empty")
	}
}

// Domain invariant over an adversarial action sequence with mixed day
// counts: every produced snapshot satisfies the clamper bounds.
func TestProjectInvariantAcrossActionSequence(t *testing.T) {
	actions := []struct {
		label string
		days  int
	}{
		{"quit my job and gamble my savings on crypto", 90},
		{"work overtime on every deadline", 365},
		{"splurge on a luxury car and renovate the house", 30},
		{"meditate, sleep, and take a break", 200},
		{"go back to school for a degree", 1},
		{"", 400},
	}
	cur := baselineSnapshot()
	for _, a := range actions {
		p := Project(cur, a.label, "", a.days)
		assertDomains(t, p.Final)
		cur = p.Final
	}
}
