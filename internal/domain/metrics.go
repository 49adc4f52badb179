package domain

// Metrics is the 11-field numeric state of one simulated person at one
// point in time. Score fields live in [0,100], relationships and free_time
// are hours per week, salary/net_worth/monthly_expenses are currency, and
// projected_death_date is an absolute instant in unix milliseconds.
type Metrics struct {
	Health             float64 `json:"health"`
	Career             float64 `json:"career"`
	Relationships      float64 `json:"relationships"`
	Fulfillment        float64 `json:"fulfillment"`
	Stress             float64 `json:"stress"`
	FreeTime           float64 `json:"free_time"`
	NetWorth           float64 `json:"net_worth"`
	Salary             float64 `json:"salary"`
	MonthlyExpenses    float64 `json:"monthly_expenses"`
	Confidence         float64 `json:"confidence"`
	ProjectedDeathDate int64   `json:"projected_death_date"`
}

// Sub returns the field-by-field signed difference m - prev.
func (m Metrics) Sub(prev Metrics) Metrics {
	return Metrics{
		Health:             m.Health - prev.Health,
		Career:             m.Career - prev.Career,
		Relationships:      m.Relationships - prev.Relationships,
		Fulfillment:        m.Fulfillment - prev.Fulfillment,
		Stress:             m.Stress - prev.Stress,
		FreeTime:           m.FreeTime - prev.FreeTime,
		NetWorth:           m.NetWorth - prev.NetWorth,
		Salary:             m.Salary - prev.Salary,
		MonthlyExpenses:    m.MonthlyExpenses - prev.MonthlyExpenses,
		Confidence:         m.Confidence - prev.Confidence,
		ProjectedDeathDate: m.ProjectedDeathDate - prev.ProjectedDeathDate,
	}
}

// Features is the 10-weight fingerprint of an action's text. Every weight
// is in [0,1]. Recomputed fresh for every action; never stored.
type Features struct {
	Work          float64 `json:"work"`
	Learning      float64 `json:"learning"`
	Health        float64 `json:"health"`
	Relationships float64 `json:"relationships"`
	Finance       float64 `json:"finance"`
	Leisure       float64 `json:"leisure"`
	Risk          float64 `json:"risk"`
	Discipline    float64 `json:"discipline"`
	Spending      float64 `json:"spending"`
	Social        float64 `json:"social"`
}
