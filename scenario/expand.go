// Package scenario turns test descriptors into runnable scenarios and
// composes the source each scenario executes.
package scenario

import "github.com/perfgo/t262run/model"

// Expand returns the scenarios a test file must be run as. The first
// matching rule wins: module, raw, onlyStrict, noStrict; tests that do not
// restrict themselves run in both default and strict mode.
func Expand(id, file string, d model.Descriptor) []model.Scenario {
	single := func(mode model.Mode) []model.Scenario {
		return []model.Scenario{{ID: id, SourceFile: file, Mode: mode, Descriptor: d}}
	}

	switch {
	case d.HasFlag(model.FlagModule):
		return single(model.ModeModule)
	case d.HasFlag(model.FlagRaw):
		return single(model.ModeDefault)
	case d.HasFlag(model.FlagOnlyStrict):
		return single(model.ModeStrict)
	case d.HasFlag(model.FlagNoStrict):
		return single(model.ModeDefault)
	}

	return []model.Scenario{
		{ID: id, SourceFile: file, Mode: model.ModeDefault, Descriptor: d},
		{ID: id + model.StrictSuffix, SourceFile: file, Mode: model.ModeStrict, Descriptor: d},
	}
}
