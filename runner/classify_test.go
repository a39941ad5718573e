package runner

import (
	"testing"

	"github.com/perfgo/t262run/engine"
	"github.com/perfgo/t262run/model"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	adapter, err := engine.New("jsse", "")
	require.NoError(t, err)

	parse := &model.Negative{Phase: model.PhaseParse, Type: "SyntaxError"}
	runtime := &model.Negative{Phase: model.PhaseRuntime, Type: "Test262Error"}
	resolution := &model.Negative{Phase: model.PhaseResolution, Type: "SyntaxError"}

	tests := []struct {
		name     string
		flags    []string
		negative *model.Negative
		exitCode int
		stdout   string
		stderr   string
		want     model.Outcome
	}{
		{name: "plain pass", exitCode: 0, want: model.OutcomePass},
		{name: "plain fail", exitCode: 1, want: model.OutcomeFail},
		{name: "parse negative with parse error exit", negative: parse, exitCode: 2, stderr: "SyntaxError: x", want: model.OutcomePass},
		{name: "parse negative that parsed", negative: parse, exitCode: 0, want: model.OutcomeFail},
		{name: "parse negative with runtime error", negative: parse, exitCode: 1, stderr: "Test262Error", want: model.OutcomeFail},
		{name: "parse negative with clean exit and SyntaxError output", negative: parse, exitCode: 0, stderr: "SyntaxError: something", want: model.OutcomeFail},
		{name: "parse negative with SyntaxError thrown at runtime", negative: parse, exitCode: 1, stderr: "SyntaxError: thrown at runtime", want: model.OutcomeFail},
		{name: "runtime negative that threw", negative: runtime, exitCode: 1, want: model.OutcomePass},
		{name: "runtime negative that completed", negative: runtime, exitCode: 0, want: model.OutcomeFail},
		{name: "resolution negative treated as runtime", negative: resolution, exitCode: 1, want: model.OutcomePass},
		{name: "async success marker", flags: []string{"async"}, stdout: AsyncSuccessMarker + "\n", want: model.OutcomePass},
		{name: "async success marker with failing exit", flags: []string{"async"}, exitCode: 1, stdout: AsyncSuccessMarker, want: model.OutcomeFail},
		{name: "async failure marker with clean exit", flags: []string{"async"}, stdout: AsyncFailureMarker + ":Test262Error: boom", want: model.OutcomeFail},
		{name: "async without markers falls back to exit code", flags: []string{"async"}, want: model.OutcomePass},
		{name: "async without markers failing", flags: []string{"async"}, exitCode: 3, want: model.OutcomeFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := model.NewDescriptor(tt.flags, nil, tt.negative, nil)
			got := Classify(d, adapter, tt.exitCode, tt.stdout, tt.stderr)
			require.Equal(t, tt.want, got)
		})
	}
}
