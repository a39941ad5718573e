package scenario

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/perfgo/t262run/model"
)

type expanded struct {
	ID   string
	Mode model.Mode
}

func summarize(scenarios []model.Scenario) []expanded {
	out := make([]expanded, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, expanded{ID: sc.ID, Mode: sc.Mode})
	}
	return out
}

func TestExpand(t *testing.T) {
	const id = "test/language/x.js"

	tests := []struct {
		name  string
		flags []string
		want  []expanded
	}{
		{
			name: "unrestricted runs both modes",
			want: []expanded{
				{ID: id, Mode: model.ModeDefault},
				{ID: id + "#strict", Mode: model.ModeStrict},
			},
		},
		{
			name:  "async alone does not restrict",
			flags: []string{"async"},
			want: []expanded{
				{ID: id, Mode: model.ModeDefault},
				{ID: id + "#strict", Mode: model.ModeStrict},
			},
		},
		{
			name:  "module",
			flags: []string{"module"},
			want:  []expanded{{ID: id, Mode: model.ModeModule}},
		},
		{
			name:  "raw",
			flags: []string{"raw"},
			want:  []expanded{{ID: id, Mode: model.ModeDefault}},
		},
		{
			name:  "onlyStrict",
			flags: []string{"onlyStrict"},
			want:  []expanded{{ID: id, Mode: model.ModeStrict}},
		},
		{
			name:  "noStrict",
			flags: []string{"noStrict"},
			want:  []expanded{{ID: id, Mode: model.ModeDefault}},
		},
		{
			name:  "module wins over onlyStrict",
			flags: []string{"onlyStrict", "module"},
			want:  []expanded{{ID: id, Mode: model.ModeModule}},
		},
		{
			name:  "raw wins over onlyStrict",
			flags: []string{"onlyStrict", "raw"},
			want:  []expanded{{ID: id, Mode: model.ModeDefault}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := model.NewDescriptor(tt.flags, nil, nil, nil)
			got := Expand(id, "/corpus/"+id, d)
			if diff := cmp.Diff(tt.want, summarize(got)); diff != "" {
				t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
			}
			for _, sc := range got {
				if sc.SourceFile != "/corpus/"+id {
					t.Errorf("SourceFile = %q", sc.SourceFile)
				}
				for _, f := range tt.flags {
					if !sc.Descriptor.HasFlag(f) {
						t.Errorf("scenario %s lost flag %q", sc.ID, f)
					}
				}
			}
		})
	}
}
