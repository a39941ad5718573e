package model

import "time"

// Report aggregates the results of one orchestrator invocation.
type Report struct {
	// Unique ID for this run
	RunID string `json:"run_id"`
	// Engine selector the run was made against
	Engine string `json:"engine"`
	// Git commit of the working directory, if any
	Commit string `json:"commit,omitempty"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Wall-clock duration of the whole run
	Duration time.Duration `json:"duration"`

	Files     int `json:"files"`
	Scenarios int `json:"scenarios"`
	Run       int `json:"run"`
	Skip      int `json:"skip"`
	Pass      int `json:"pass"`
	Fail      int `json:"fail"`

	// Whether the run covered the whole corpus (no path filter)
	Full bool `json:"full"`
	// Whether the run was aborted before all scenarios were dispatched
	Interrupted bool `json:"interrupted"`
	// Whether the stored baseline was rewritten by this run
	BaselineUpdated bool `json:"baseline_updated"`

	// Scenario ids that were in the baseline, ran, and did not pass
	Regressions []string `json:"-"`
	// Scenario ids that passed and were not in the baseline
	NewPasses []string `json:"-"`
	// Scenario ids that failed this run
	Failures []string `json:"-"`
}

// Rate returns the pass percentage over executed scenarios.
func (r *Report) Rate() float64 {
	if r.Run == 0 {
		return 0
	}
	return float64(r.Pass) / float64(r.Run) * 100
}
