package engine

import (
	"math"

	"github.com/hqin77/lifepath/internal/domain"
)

// StepContext situates one daily transition inside the projection that is
// running it. Day is the zero-based index of this day within the
// projection; Origin is the snapshot the projection started from.
//
// Both matter: the salary market-drift term is keyed on Day, and the
// confidence momentum bonus measures progress since Origin. This is why a
// single 7-day projection does not equal seven chained 1-day projections.
type StepContext struct {
	Day    int
	Origin domain.Metrics
}

// Per-metric smoothing fractions. Each metric moves this share of the gap
// toward its target every day.
const (
	kStress        = 0.20
	kFreeTime      = 0.22
	kHealth        = 0.14
	kRelationships = 0.18
	kCareer        = 0.16
	kSalary        = 0.12
	kExpenses      = 0.15
	kFulfillment   = 0.17
	kConfidence    = 0.15
)

// The 168-hour week minus a 63-hour maintenance floor (sleep, meals,
// chores) leaves this much allocatable time.
const allocatableHours = 105.0

const msPerDay = 86_400_000

// taxBrackets is a standard 7-bracket progressive marginal structure over
// annual salary.
var taxBrackets = []struct {
	upTo float64
	rate float64
}{
	{11_000, 0.10},
	{44_725, 0.12},
	{95_375, 0.22},
	{182_100, 0.24},
	{231_250, 0.32},
	{578_125, 0.35},
	{math.Inf(1), 0.37},
}

// effectiveTaxRate computes the blended marginal rate for an annual salary.
func effectiveTaxRate(salary float64) float64 {
	if salary <= 0 {
		return 0
	}
	var tax, lower float64
	for _, b := range taxBrackets {
		upper := math.Min(salary, b.upTo)
		if upper <= lower {
			break
		}
		tax += (upper - lower) * b.rate
		lower = upper
	}
	return tax / salary
}

func seek(cur, target, k float64) float64 {
	return cur + k*(target-cur)
}

// moneyScore maps net worth onto [0,1] on a log scale. Negative net worth
// scores zero.
func moneyScore(netWorth float64) float64 {
	if netWorth <= 0 {
		return 0
	}
	return clamp01(math.Log1p(netWorth) / math.Log1p(netWorthMax))
}

// Transition computes the next day's metrics from the current snapshot and
// one feature vector using first-order lag dynamics: every smoothed metric
// moves a fixed fraction of the way toward a target derived from the
// current state and features.
//
// The update order is load-bearing. Fulfillment and confidence targets read
// the same-day updated career, health, and relationships values; reordering
// would silently change simulated outcomes.
func Transition(cur domain.Metrics, f domain.Features, sc StepContext) domain.Metrics {
	nStress := cur.Stress / 100
	nConfidence := cur.Confidence / 100

	// Intermediate drivers, each individually clamped to [0,1].
	recoveryFocus := clamp01(0.45*f.Health + 0.30*f.Leisure + 0.15*f.Discipline - 0.30*f.Work + 0.10*(1-nStress))
	learningIntent := clamp01(0.55*f.Learning + 0.25*f.Work + 0.20*f.Discipline - 0.15*f.Leisure)
	workload := clamp01(0.55*f.Work + 0.20*f.Learning + 0.15*f.Risk - 0.20*recoveryFocus - 0.10*f.Discipline)
	socialInvestment := clamp01(0.45*f.Relationships + 0.35*f.Social + 0.15*f.Leisure - 0.20*f.Work)
	socialConflict := clamp01(0.30*workload + 0.25*nStress - 0.35*socialInvestment)
	burnoutRisk := clamp01(0.60*nStress + 0.30*workload - 0.20*recoveryFocus)

	// Financial layer.
	taxRate := effectiveTaxRate(cur.Salary)
	afterTaxMonthly := cur.Salary * (1 - taxRate) / 12
	financialStrain := clamp01(0.75 * cur.MonthlyExpenses / math.Max(afterTaxMonthly, 1))
	if cur.NetWorth < 0 {
		financialStrain = clamp01(financialStrain + 0.30*clamp01(-cur.NetWorth/200_000))
	}

	next := cur

	// Stress.
	stressTarget := 100 * clamp01(0.20+0.55*workload+0.35*financialStrain+0.15*socialConflict-0.20*recoveryFocus-0.10*f.Discipline)
	next.Stress = seek(cur.Stress, stressTarget, kStress)
	nStressNew := clamp01(next.Stress / 100)

	// Weekly-hours allocation. Hours are recomputed fresh each day from
	// features; only freeTime itself is smoothed toward the allocation.
	workHours := 25 + 45*f.Work + 10*f.Learning
	healthHours := 3 + 10*recoveryFocus
	socialHours := 4 + 18*socialInvestment
	if total := workHours + healthHours + socialHours; total > allocatableHours {
		scale := allocatableHours / total
		workHours *= scale
		healthHours *= scale
		socialHours *= scale
	}
	freeTarget := math.Max(0, allocatableHours-workHours-healthHours-socialHours)
	next.FreeTime = seek(cur.FreeTime, freeTarget, kFreeTime)

	// Health.
	healthTarget := clamp(cur.Health+40*recoveryFocus-30*burnoutRisk-15*financialStrain, 0, 100)
	next.Health = seek(cur.Health, healthTarget, kHealth)
	nHealthNew := clamp01(next.Health / 100)

	// Relationships: hours per week invested, tracking the social
	// allocation, nudged by discipline and free time, penalized by the
	// just-updated stress and workload.
	relTarget := clamp(socialHours+2*f.Discipline+0.05*next.FreeTime-6*clamp01(0.5*nStressNew+0.5*workload), 0, weekHours)
	next.Relationships = seek(cur.Relationships, relTarget, kRelationships)
	relNorm := clamp01(next.Relationships / 30)

	// Career.
	careerTarget := clamp(cur.Career+30*learningIntent+18*f.Work+8*f.Discipline+6*nConfidence-22*burnoutRisk-8*nStressNew, 0, 100)
	next.Career = seek(cur.Career, careerTarget, kCareer)
	nCareerNew := clamp01(next.Career / 100)

	// Salary: target sits within +-10% of current, scaled by career
	// momentum, plus a bounded market-drift term keyed on the day index so
	// salary is not purely target-following.
	careerMomentum := 0.60*nCareerNew + 0.30*learningIntent + 0.20*nConfidence - 0.30*burnoutRisk - 0.30
	salaryTarget := clamp(cur.Salary*(1+0.10*clamp(careerMomentum, -1, 1)), 0, salaryMax)
	next.Salary = seek(cur.Salary, salaryTarget, kSalary)
	next.Salary *= 1 + 0.0005*math.Sin(2*math.Pi*float64(sc.Day)/28)

	// Monthly expenses: a share of after-tax income set by the tug between
	// spending impulse and savings intent, plus a debt-pressure addend.
	spendingImpulse := clamp01(0.50*f.Spending + 0.30*f.Risk - 0.30*f.Finance - 0.20*f.Discipline + 0.30)
	savingsIntent := clamp01(0.50*f.Finance + 0.30*f.Discipline - 0.30*f.Spending - 0.20*f.Risk + 0.20)
	expenseShare := clamp(0.45+0.35*spendingImpulse-0.25*savingsIntent, 0.20, 0.90)
	expenseTarget := afterTaxMonthly * expenseShare
	if cur.NetWorth < 0 {
		expenseTarget += clamp(-cur.NetWorth*0.01, 0, 5_000)
	}
	expenseTarget = math.Max(expenseTarget, 800)
	next.MonthlyExpenses = seek(cur.MonthlyExpenses, expenseTarget, kExpenses)

	// Net worth: direct cash-flow integration plus a pro-rata expected
	// return. Negative balances accrue debt drag instead of returns.
	cashFlow := (afterTaxMonthly - next.MonthlyExpenses) / 30
	if cur.NetWorth >= 0 {
		annualReturn := 0.01 + 0.07*clamp01(0.40*f.Finance+0.30*f.Discipline+0.30*nCareerNew) - 0.04*clamp01(0.60*f.Risk+0.40*financialStrain)
		annualReturn = clamp(annualReturn, -0.05, 0.12)
		next.NetWorth = cur.NetWorth + cur.NetWorth*annualReturn/365 + cashFlow
	} else {
		debtDrag := 0.06 + 0.06*financialStrain
		next.NetWorth = cur.NetWorth + cur.NetWorth*debtDrag/365 + cashFlow
	}
	moneyNew := moneyScore(next.NetWorth)
	freeNorm := clamp01(next.FreeTime / 40)

	// Fulfillment: blend of the already-updated metrics minus a stress
	// penalty, plus an alignment bonus rewarding actions that invest in
	// whichever life areas are currently most deficient.
	alignment := needsAlignment(f, nCareerNew, nHealthNew, relNorm, moneyNew, freeNorm)
	fulfillTarget := 100 * clamp01(0.24*nCareerNew+0.20*relNorm+0.22*nHealthNew+0.12*moneyNew+0.10*freeNorm-0.22*nStressNew+0.18*alignment)
	next.Fulfillment = seek(cur.Fulfillment, fulfillTarget, kFulfillment)

	// Confidence: same blend shape plus a momentum bonus for positive
	// progress in career/health/relationships since the projection began.
	progress := (next.Career-sc.Origin.Career)/100 + (next.Health-sc.Origin.Health)/100 + (next.Relationships-sc.Origin.Relationships)/weekHours
	momentum := clamp01(progress * 3)
	confTarget := 100 * clamp01(0.30*nCareerNew+0.20*nHealthNew+0.15*relNorm+0.10*moneyNew-0.20*nStressNew+0.25+0.20*momentum)
	next.Confidence = seek(cur.Confidence, confTarget, kConfidence)

	// Projected death date: cumulative horizon estimate, adjusted
	// additively rather than target-seeking.
	deltaDays := 6*(next.Health-cur.Health) + 2.5*(cur.Stress-next.Stress) - 1.2*f.Risk + 0.8*f.Health
	deltaDays = clamp(deltaDays, -30, 30)
	next.ProjectedDeathDate = cur.ProjectedDeathDate + int64(deltaDays*msPerDay)

	return ClampMetrics(next)
}

// needsAlignment scores how well the action's feature weights line up with
// the currently most deficient life areas. Each area's deficit weights the
// feature that invests in it.
func needsAlignment(f domain.Features, nCareer, nHealth, relNorm, money, free float64) float64 {
	type need struct {
		deficit float64
		invest  float64
	}
	needs := []need{
		{1 - nCareer, (f.Work + f.Learning) / 2},
		{1 - nHealth, f.Health},
		{1 - relNorm, (f.Relationships + f.Social) / 2},
		{1 - money, f.Finance},
		{1 - free, f.Leisure},
	}
	var weighted, total float64
	for _, n := range needs {
		d := clamp01(n.deficit)
		weighted += d * n.invest
		total += d
	}
	if total == 0 {
		return 0
	}
	return clamp01(weighted / total)
}
