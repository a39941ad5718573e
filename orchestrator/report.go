package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/perfgo/t262run/model"
)

// MaxListedRegressions caps the regressions printed in the human report.
const MaxListedRegressions = 20

type summary struct {
	RunID       string  `json:"run_id"`
	Engine      string  `json:"engine"`
	Commit      string  `json:"commit,omitempty"`
	Files       int     `json:"files"`
	Scenarios   int     `json:"scenarios"`
	Total       int     `json:"total"`
	Skip        int     `json:"skip"`
	Pass        int     `json:"pass"`
	Fail        int     `json:"fail"`
	Percentage  float64 `json:"percentage"`
	Regressions int     `json:"regressions"`
	NewPasses   int     `json:"new_passes"`
	DurationSec float64 `json:"duration_seconds"`
	Interrupted bool    `json:"interrupted"`
}

// WriteReport prints the human readable report followed by a single
// machine readable "JSON: {...}" line.
func WriteReport(w io.Writer, r *model.Report) error {
	rate := r.Rate()

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("\n=== test262 Results (%s) ===\n", r.Engine)
	printf("Files:     %d\n", r.Files)
	printf("Scenarios: %d\n", r.Scenarios)
	printf("Run:       %d\n", r.Run)
	printf("Skip:      %d\n", r.Skip)
	printf("Pass:      %d\n", r.Pass)
	printf("Fail:      %d\n", r.Fail)
	printf("Rate:      %.2f%%\n", rate)
	if r.Interrupted {
		printf("Interrupted: baseline not updated\n")
	}

	if len(r.Regressions) > 0 {
		printf("\nRegressions (%d):\n", len(r.Regressions))
		for i, id := range r.Regressions {
			if i == MaxListedRegressions {
				printf("  ... and %d more\n", len(r.Regressions)-MaxListedRegressions)
				break
			}
			printf("  %s\n", id)
		}
	}
	printf("\nNew passes: %d\n", len(r.NewPasses))
	if err != nil {
		return err
	}

	data, err := json.Marshal(summary{
		RunID:       r.RunID,
		Engine:      r.Engine,
		Commit:      r.Commit,
		Files:       r.Files,
		Scenarios:   r.Scenarios,
		Total:       r.Run,
		Skip:        r.Skip,
		Pass:        r.Pass,
		Fail:        r.Fail,
		Percentage:  math.Round(rate*100) / 100,
		Regressions: len(r.Regressions),
		NewPasses:   len(r.NewPasses),
		DurationSec: math.Round(r.Duration.Seconds()*1000) / 1000,
		Interrupted: r.Interrupted,
	})
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	_, err = fmt.Fprintf(w, "\nJSON: %s\n", data)
	return err
}
