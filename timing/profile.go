// Package timing builds a pprof profile of scenario wall time, with one
// synthetic frame per corpus directory, so `go tool pprof` shows which
// parts of the corpus dominate a run.
package timing

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/pprof/profile"
)

// Builder accumulates scenario durations. It is not safe for concurrent use.
type Builder struct {
	profile   *profile.Profile
	functions map[string]*profile.Function
	locations map[string]*profile.Location
	samples   map[string]*profile.Sample
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		profile: &profile.Profile{
			SampleType: []*profile.ValueType{
				{Type: "count", Unit: "count"},
				{Type: "wall_time", Unit: "nanoseconds"},
			},
			DefaultSampleType: "wall_time",
			PeriodType:        &profile.ValueType{Type: "wall_time", Unit: "nanoseconds"},
			Period:            1,
			TimeNanos:         time.Now().UnixNano(),
		},
		functions: make(map[string]*profile.Function),
		locations: make(map[string]*profile.Location),
		samples:   make(map[string]*profile.Sample),
	}
}

// Add records one scenario. The id is split on "/" into frames, the full
// id being the leaf.
func (b *Builder) Add(id string, d time.Duration) {
	if id == "" {
		return
	}

	if s, ok := b.samples[id]; ok {
		s.Value[0]++
		s.Value[1] += d.Nanoseconds()
		return
	}

	parts := strings.Split(id, "/")
	// pprof stacks are leaf first
	stack := make([]*profile.Location, 0, len(parts))
	for i := len(parts); i > 0; i-- {
		stack = append(stack, b.location(strings.Join(parts[:i], "/")))
	}

	s := &profile.Sample{
		Location: stack,
		Value:    []int64{1, d.Nanoseconds()},
		Label:    map[string][]string{"scenario": {id}},
	}
	b.samples[id] = s
	b.profile.Sample = append(b.profile.Sample, s)
}

// Profile returns the accumulated profile.
func (b *Builder) Profile() *profile.Profile {
	return b.profile
}

// WriteFile writes the gzipped profile to path.
func (b *Builder) WriteFile(path string) error {
	if err := b.profile.CheckValid(); err != nil {
		return fmt.Errorf("invalid timing profile: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile file: %w", err)
	}
	defer f.Close()

	if err := b.profile.Write(f); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return f.Close()
}

func (b *Builder) location(name string) *profile.Location {
	if loc, ok := b.locations[name]; ok {
		return loc
	}

	fn, ok := b.functions[name]
	if !ok {
		fn = &profile.Function{
			ID:       uint64(len(b.profile.Function) + 1),
			Name:     name,
			Filename: name,
		}
		b.functions[name] = fn
		b.profile.Function = append(b.profile.Function, fn)
	}

	loc := &profile.Location{
		ID:   uint64(len(b.profile.Location) + 1),
		Line: []profile.Line{{Function: fn}},
	}
	b.locations[name] = loc
	b.profile.Location = append(b.profile.Location, loc)
	return loc
}
