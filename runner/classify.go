package runner

import (
	"strings"

	"github.com/perfgo/t262run/engine"
	"github.com/perfgo/t262run/model"
)

// Markers printed by the async harness helper.
const (
	AsyncSuccessMarker = "Test262:AsyncTestComplete"
	AsyncFailureMarker = "Test262:AsyncTestFailure"
)

// Classify decides the outcome of a scenario whose process ran to
// completion.
func Classify(d model.Descriptor, adapter engine.Adapter, exitCode int, stdout, stderr string) model.Outcome {
	if neg, ok := d.Negative(); ok {
		if neg.Phase == model.PhaseParse {
			return verdict(adapter.IsParseError(exitCode, stderr))
		}
		return verdict(exitCode != 0)
	}

	if d.HasFlag(model.FlagAsync) {
		if strings.Contains(stdout, AsyncFailureMarker) {
			return model.OutcomeFail
		}
		// With or without the success marker, a clean exit is required
		return verdict(exitCode == 0)
	}

	return verdict(exitCode == 0)
}

func verdict(passed bool) model.Outcome {
	if passed {
		return model.OutcomePass
	}
	return model.OutcomeFail
}
