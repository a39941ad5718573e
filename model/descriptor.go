package model

import "sort"

// Flag tokens recognized in a test's front matter.
const (
	FlagRaw        = "raw"
	FlagOnlyStrict = "onlyStrict"
	FlagNoStrict   = "noStrict"
	FlagModule     = "module"
	FlagAsync      = "async"
)

// Phase identifies when a negative test is expected to fail.
type Phase string

const (
	PhaseParse      Phase = "parse"
	PhaseResolution Phase = "resolution"
	PhaseRuntime    Phase = "runtime"
)

// Negative describes the expected failure of a negative test.
type Negative struct {
	// Phase at which the error must be raised
	Phase Phase `json:"phase"`
	// Constructor name of the expected error (e.g., "SyntaxError")
	Type string `json:"type"`
}

// Descriptor holds the execution metadata declared by a test file.
// The zero value is a valid descriptor without flags, includes or features.
type Descriptor struct {
	flags    map[string]struct{}
	includes []string
	negative *Negative
	features map[string]struct{}
}

// NewDescriptor builds a descriptor. The slices are copied, so the caller
// may reuse them afterwards.
func NewDescriptor(flags, includes []string, negative *Negative, features []string) Descriptor {
	d := Descriptor{
		flags:    toSet(flags),
		features: toSet(features),
	}
	if len(includes) > 0 {
		d.includes = append([]string(nil), includes...)
	}
	if negative != nil {
		n := *negative
		if n.Phase != PhaseParse && n.Phase != PhaseResolution {
			n.Phase = PhaseRuntime
		}
		d.negative = &n
	}
	return d
}

func (d Descriptor) HasFlag(flag string) bool {
	_, ok := d.flags[flag]
	return ok
}

func (d Descriptor) HasFeature(feature string) bool {
	_, ok := d.features[feature]
	return ok
}

// Flags returns the declared flags in sorted order.
func (d Descriptor) Flags() []string {
	return fromSet(d.flags)
}

// Features returns the declared features in sorted order.
func (d Descriptor) Features() []string {
	return fromSet(d.features)
}

// Includes returns the declared harness includes in declaration order.
func (d Descriptor) Includes() []string {
	return append([]string(nil), d.includes...)
}

// Negative returns the expected failure, if the test is a negative test.
func (d Descriptor) Negative() (Negative, bool) {
	if d.negative == nil {
		return Negative{}, false
	}
	return *d.negative, true
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}
