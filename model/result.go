package model

import "time"

// Outcome is the classification of an executed scenario.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeSkipped Outcome = "skipped"
)

// Reasons attached to failed or skipped results.
const (
	ReasonTimeout           = "timeout"
	ReasonExecError         = "exec_error"
	ReasonReadError         = "read_error"
	ReasonHarnessError      = "harness_error"
	ReasonModuleUnsupported = "module unsupported"
	ReasonCancelled         = "cancelled"
)

// Result is the ephemeral outcome of running a single scenario.
type Result struct {
	ScenarioID string        `json:"scenario_id"`
	Outcome    Outcome       `json:"outcome"`
	Reason     string        `json:"reason,omitempty"`
	ExitCode   int           `json:"exit_code"`
	Stdout     string        `json:"stdout,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Executed reports whether the scenario actually ran to a verdict.
// Skipped results, including cancelled ones, are not executed.
func (r Result) Executed() bool {
	return r.Outcome == OutcomePass || r.Outcome == OutcomeFail
}
