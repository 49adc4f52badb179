package domain

// CreateRunRequest is the caller-facing payload for creating a run.
type CreateRunRequest struct {
	Mode            Mode          `json:"mode"`
	HorizonPreset   HorizonPreset `json:"horizon_preset,omitempty"`
	Title           string        `json:"title,omitempty"`
	TargetOutcome   string        `json:"target_outcome,omitempty"`
	BaselineMetrics *Metrics      `json:"baseline_metrics,omitempty"`
}

// CustomAction is a caller-authored free-text action for a manual step.
type CustomAction struct {
	Label   string `json:"label"`
	Details string `json:"details,omitempty"`
}

// StepRequest advances a manual run by one simulated day. Exactly one of
// OptionID or CustomAction must be set.
type StepRequest struct {
	OptionID     string        `json:"option_id,omitempty"`
	CustomAction *CustomAction `json:"custom_action,omitempty"`
}

// RenameRequest updates a run's display title.
type RenameRequest struct {
	Title string `json:"title"`
}

// RunWithNodes is the read-side shape returned by Get.
type RunWithNodes struct {
	Run   *Run   `json:"run"`
	Nodes []Node `json:"nodes"`
}
