// Package config loads the optional YAML run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File holds the settings that may be stored in a config file. Zero values
// mean "not set" and leave the built-in default in place.
type File struct {
	Engine       string   `yaml:"engine"`
	Binary       string   `yaml:"binary"`
	Test262      string   `yaml:"test262"`
	Jobs         int      `yaml:"jobs"`
	Timeout      Duration `yaml:"timeout"`
	SkipFeatures []string `yaml:"skip_features"`
	StateDir     string   `yaml:"state_dir"`
}

// Duration accepts Go duration strings ("90s") or plain integer seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var seconds int64
	if err := node.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("timeout must be a duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads path. An empty path yields an empty File.
func Load(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if f.Jobs < 0 {
		return f, errors.New("jobs must not be negative")
	}
	if f.Timeout < 0 {
		return f, errors.New("timeout must not be negative")
	}
	return f, nil
}
