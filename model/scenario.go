package model

// Mode is the interpretation mode a scenario is run in.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeStrict  Mode = "strict"
	ModeModule  Mode = "module"
)

// StrictSuffix is appended to the id of the strict variant of a dual-mode test.
const StrictSuffix = "#strict"

// Scenario is one concrete (file, mode) unit of work.
type Scenario struct {
	// Stable identifier, the corpus-relative path (plus StrictSuffix for strict variants)
	ID string `json:"id"`
	// Path of the test file on disk
	SourceFile string `json:"source_file"`
	// Interpretation mode
	Mode Mode `json:"mode"`
	// Front matter of the source file
	Descriptor Descriptor `json:"-"`
}

// Raw reports whether the scenario must be run without any harness.
func (s Scenario) Raw() bool {
	return s.Descriptor.HasFlag(FlagRaw)
}
