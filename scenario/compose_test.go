package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/perfgo/t262run/model"
	"github.com/stretchr/testify/require"
)

func writeHarness(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"assert.js":          "// assert\n",
		"sta.js":             "// sta",
		"compareArray.js":    "// compareArray\n",
		"doneprintHandle.js": "// done\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func scenarioFor(mode model.Mode, flags, includes []string) model.Scenario {
	return model.Scenario{
		ID:         "test/x.js",
		SourceFile: "test/x.js",
		Mode:       mode,
		Descriptor: model.NewDescriptor(flags, includes, nil, nil),
	}
}

func TestCompose(t *testing.T) {
	c := NewComposer(writeHarness(t))
	const body = "assert(true);\n"

	tests := []struct {
		name string
		sc   model.Scenario
		want string
	}{
		{
			name: "default mode",
			sc:   scenarioFor(model.ModeDefault, nil, nil),
			want: "// assert\n// sta\n" + body,
		},
		{
			name: "strict mode",
			sc:   scenarioFor(model.ModeStrict, nil, nil),
			want: "\"use strict\";\n// assert\n// sta\n" + body,
		},
		{
			name: "includes then async helper",
			sc:   scenarioFor(model.ModeDefault, []string{"async"}, []string{"compareArray.js"}),
			want: "// assert\n// sta\n// compareArray\n// done\n" + body,
		},
		{
			name: "async helper not loaded twice",
			sc:   scenarioFor(model.ModeDefault, []string{"async"}, []string{"doneprintHandle.js"}),
			want: "// assert\n// sta\n// done\n" + body,
		},
		{
			name: "raw is the literal body",
			sc:   scenarioFor(model.ModeDefault, []string{"raw"}, []string{"compareArray.js"}),
			want: body,
		},
		{
			name: "module is the literal body",
			sc:   scenarioFor(model.ModeModule, []string{"module"}, []string{"compareArray.js"}),
			want: body,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compose(body, tt.sc)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			again, err := c.Compose(body, tt.sc)
			require.NoError(t, err)
			require.Equal(t, got, again)
		})
	}
}

func TestCompose_MissingHelper(t *testing.T) {
	c := NewComposer(writeHarness(t))

	_, err := c.Compose("x;", scenarioFor(model.ModeDefault, nil, []string{"nope.js"}))
	require.Error(t, err)

	var herr *HarnessError
	require.True(t, errors.As(err, &herr))
	require.Equal(t, "nope.js", herr.Helper)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompose_Concurrent(t *testing.T) {
	c := NewComposer(writeHarness(t))
	sc := scenarioFor(model.ModeStrict, nil, []string{"compareArray.js"})

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := c.Compose("x;", sc)
			if err == nil {
				results[i] = out
			}
		}(i)
	}
	wg.Wait()

	for _, out := range results {
		require.Equal(t, results[0], out)
		require.NotEmpty(t, out)
	}
}

func TestHelperPaths(t *testing.T) {
	c := NewComposer("/corpus/harness")
	d := model.NewDescriptor([]string{"module", "async"}, []string{"fnGlobalObject.js"}, nil, nil)

	require.Equal(t, []string{
		"/corpus/harness/assert.js",
		"/corpus/harness/sta.js",
		"/corpus/harness/fnGlobalObject.js",
		"/corpus/harness/doneprintHandle.js",
	}, c.HelperPaths(d))

	require.Empty(t, c.HelperPaths(model.NewDescriptor([]string{"raw"}, nil, nil, nil)))
}
