package engine

import (
	"math"
	"strings"

	"github.com/hqin77/lifepath/internal/domain"
)

// keyword is one (term, weight) pair in a dimension's table. Terms
// containing a space are matched by substring containment on the
// normalized text; single tokens by set membership.
type keyword struct {
	term   string
	weight float64
}

// featureBlend is the share of the squashed keyword score blended on top
// of each dimension's baseline.
const featureBlend = 0.62

// baselines encode "this always happens somewhat even from an empty
// action". Each sits in [0.20, 0.35].
var baselines = domain.Features{
	Work:          0.30,
	Learning:      0.26,
	Health:        0.27,
	Relationships: 0.26,
	Finance:       0.24,
	Leisure:       0.25,
	Risk:          0.20,
	Discipline:    0.28,
	Spending:      0.30,
	Social:        0.24,
}

var workKeywords = []keyword{
	{"job", 0.8}, {"work", 0.7}, {"career", 0.6}, {"promotion", 0.9},
	{"startup", 0.8}, {"business", 0.6}, {"overtime", 0.9}, {"deadline", 0.7},
	{"project", 0.5}, {"interview", 0.6}, {"freelance", 0.6}, {"client", 0.5},
	{"office", 0.4}, {"shift", 0.4}, {"hustle", 0.6}, {"salary", 0.5},
	{"high paying", 0.8}, {"new job", 0.8}, {"side gig", 0.6},
}

var learningKeywords = []keyword{
	{"learn", 0.8}, {"study", 0.8}, {"course", 0.8}, {"degree", 0.9},
	{"class", 0.6}, {"book", 0.5}, {"read", 0.5}, {"skill", 0.7},
	{"certification", 0.8}, {"practice", 0.6}, {"language", 0.6},
	{"workshop", 0.6}, {"tutorial", 0.5}, {"mentor", 0.5},
	{"go back to school", 0.9}, {"teach myself", 0.8},
}

var healthKeywords = []keyword{
	{"gym", 0.9}, {"exercise", 0.9}, {"workout", 0.9}, {"run", 0.6},
	{"running", 0.7}, {"yoga", 0.8}, {"meditate", 0.7}, {"meditation", 0.7},
	{"sleep", 0.6}, {"diet", 0.7}, {"doctor", 0.6}, {"therapy", 0.6},
	{"hike", 0.6}, {"swim", 0.6}, {"marathon", 0.8},
	{"eat healthy", 0.9}, {"quit smoking", 0.9}, {"quit drinking", 0.8},
}

var relationshipsKeywords = []keyword{
	{"family", 0.8}, {"friend", 0.7}, {"friends", 0.7}, {"partner", 0.8},
	{"date", 0.6}, {"dating", 0.7}, {"marriage", 0.9}, {"wedding", 0.8},
	{"kids", 0.7}, {"children", 0.7}, {"parents", 0.6}, {"relationship", 0.8},
	{"reconnect", 0.7}, {"spend time with", 0.8}, {"call my", 0.6},
}

var financeKeywords = []keyword{
	{"invest", 0.9}, {"investment", 0.9}, {"save", 0.7}, {"savings", 0.8},
	{"budget", 0.8}, {"stocks", 0.7}, {"retirement", 0.7}, {"debt", 0.6},
	{"portfolio", 0.7}, {"frugal", 0.7}, {"pay off", 0.9},
	{"index fund", 0.9}, {"emergency fund", 0.8}, {"negotiate", 0.5},
}

var leisureKeywords = []keyword{
	{"vacation", 0.9}, {"travel", 0.8}, {"relax", 0.8}, {"hobby", 0.7},
	{"game", 0.5}, {"games", 0.5}, {"movie", 0.5}, {"music", 0.5},
	{"beach", 0.6}, {"rest", 0.6}, {"fun", 0.5}, {"concert", 0.6},
	{"take a break", 0.9}, {"time off", 0.8}, {"weekend trip", 0.7},
}

var riskKeywords = []keyword{
	{"risk", 0.8}, {"risky", 0.9}, {"gamble", 0.9}, {"bet", 0.7},
	{"quit", 0.7}, {"move", 0.5}, {"abroad", 0.6}, {"startup", 0.6},
	{"crypto", 0.8}, {"bold", 0.5}, {"leap", 0.6},
	{"new city", 0.7}, {"all in", 0.9}, {"drop everything", 0.9},
}

var disciplineKeywords = []keyword{
	{"routine", 0.8}, {"discipline", 0.9}, {"habit", 0.7}, {"schedule", 0.6},
	{"consistent", 0.7}, {"plan", 0.5}, {"goal", 0.5}, {"organize", 0.6},
	{"commit", 0.6}, {"focus", 0.6}, {"track", 0.5},
	{"every day", 0.7}, {"stick to", 0.7},
}

var spendingKeywords = []keyword{
	{"buy", 0.7}, {"purchase", 0.7}, {"shopping", 0.8}, {"spend", 0.7},
	{"upgrade", 0.5}, {"car", 0.5}, {"house", 0.6}, {"luxury", 0.9},
	{"expensive", 0.8}, {"splurge", 0.9}, {"renovate", 0.6},
	{"new phone", 0.7}, {"treat myself", 0.8},
}

var socialKeywords = []keyword{
	{"social", 0.7}, {"network", 0.7}, {"networking", 0.8}, {"community", 0.7},
	{"volunteer", 0.7}, {"club", 0.6}, {"meetup", 0.8}, {"party", 0.6},
	{"team", 0.4}, {"event", 0.5}, {"join", 0.5}, {"group", 0.5},
}

// normalizeAction lower-cases the label and details, strips everything that
// is not a letter, digit, or space, and collapses runs of whitespace.
func normalizeAction(label, details string) string {
	raw := strings.ToLower(label + " " + details)
	var b strings.Builder
	b.Grow(len(raw))
	lastSpace := true
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// rawScore sums the weights of every table entry present in the text.
func rawScore(table []keyword, text string, tokens map[string]bool) float64 {
	var sum float64
	for _, kw := range table {
		if strings.ContainsRune(kw.term, ' ') {
			if strings.Contains(text, kw.term) {
				sum += kw.weight
			}
		} else if tokens[kw.term] {
			sum += kw.weight
		}
	}
	return sum
}

// squash saturates a raw keyword score into [0,1). Score 0 maps to 0 and
// large scores asymptote to 1, so stacking keywords has diminishing returns.
func squash(raw float64) float64 {
	return 1 - math.Exp(-math.Max(0, raw))
}

// ExtractFeatures maps an action's text to its feature vector. The
// function is pure and call-for-call deterministic given identical text.
func ExtractFeatures(label, details string) domain.Features {
	text := normalizeAction(label, details)
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		tokens[tok] = true
	}

	dim := func(base float64, table []keyword) float64 {
		return base + squash(rawScore(table, text, tokens))*featureBlend
	}

	f := domain.Features{
		Work:          dim(baselines.Work, workKeywords),
		Learning:      dim(baselines.Learning, learningKeywords),
		Health:        dim(baselines.Health, healthKeywords),
		Relationships: dim(baselines.Relationships, relationshipsKeywords),
		Finance:       dim(baselines.Finance, financeKeywords),
		Leisure:       dim(baselines.Leisure, leisureKeywords),
		Risk:          dim(baselines.Risk, riskKeywords),
		Discipline:    dim(baselines.Discipline, disciplineKeywords),
		Spending:      dim(baselines.Spending, spendingKeywords),
		Social:        dim(baselines.Social, socialKeywords),
	}

	// Cross-dimension adjustments so combined signals interact instead of
	// just summing linearly.
	if f.Work > 0.6 && f.Leisure < 0.35 {
		f.Discipline += 0.08
		f.Leisure -= 0.04
	}
	if f.Finance > 0.55 {
		f.Spending -= 0.10
		f.Discipline += 0.05
	}
	if f.Risk > 0.6 && f.Discipline < 0.4 {
		f.Spending += 0.07
	}
	if f.Health > 0.55 {
		f.Discipline += 0.04
	}
	if f.Social > 0.55 {
		f.Relationships += 0.06
	}

	f.Work = clamp01(f.Work)
	f.Learning = clamp01(f.Learning)
	f.Health = clamp01(f.Health)
	f.Relationships = clamp01(f.Relationships)
	f.Finance = clamp01(f.Finance)
	f.Leisure = clamp01(f.Leisure)
	f.Risk = clamp01(f.Risk)
	f.Discipline = clamp01(f.Discipline)
	f.Spending = clamp01(f.Spending)
	f.Social = clamp01(f.Social)
	return f
}
