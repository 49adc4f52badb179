package domain

import "time"

// Run is one simulation's lifecycle container. It is owned exclusively by
// the run service and mutated only through its operations.
type Run struct {
	RunID           string        `json:"run_id"`
	OwnerID         string        `json:"owner_id"`
	Title           string        `json:"title"`
	Mode            Mode          `json:"mode"`
	HorizonPreset   HorizonPreset `json:"horizon_preset"`
	Status          RunStatus     `json:"status"`
	CurrentDay      int           `json:"current_day"`
	BaselineMetrics Metrics       `json:"baseline_metrics"`
	LatestMetrics   Metrics       `json:"latest_metrics"`
	Summary         *RunSummary   `json:"summary,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Node is one immutable, append-only timeline entry within a run. Seq
// values for a run are exactly 0, 1, 2, ... with no gaps.
type Node struct {
	NodeID          string     `json:"node_id"`
	RunID           string     `json:"run_id"`
	Seq             int        `json:"seq"`
	SimulatedDate   time.Time  `json:"simulated_date"`
	ActionType      ActionType `json:"action_type"`
	ActionLabel     string     `json:"action_label"`
	ActionDetails   string     `json:"action_details,omitempty"`
	Story           string     `json:"story,omitempty"`
	Changelog       []string   `json:"changelog,omitempty"`
	MetricDeltas    Metrics    `json:"metric_deltas"`
	MetricsSnapshot Metrics    `json:"metrics_snapshot"`
	NextOptions     []Option   `json:"next_options,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Option is one of up to three candidate next actions offered on a manual
// run's latest node. PreviewDeltas is a one-day look-ahead bias computed by
// the engine; it is never applied until the option is chosen.
type Option struct {
	OptionID      string  `json:"option_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	ImpactHint    string  `json:"impact_hint,omitempty"`
	PreviewDeltas Metrics `json:"preview_deltas"`
}

// RunSummary is the wrap-up computed when a run ends. Series are sampled
// at up to 24 evenly spaced nodes across the timeline.
type RunSummary struct {
	TopMetric      string    `json:"top_metric"`
	TopMetricDelta float64   `json:"top_metric_delta"`
	CareerSeries   []float64 `json:"career_series"`
	HealthSeries   []float64 `json:"health_series"`
	NetWorthSeries []float64 `json:"net_worth_series"`
	FinalMetrics   Metrics   `json:"final_metrics"`
	TotalNodes     int       `json:"total_nodes"`
	EndedDay       int       `json:"ended_day"`
}
