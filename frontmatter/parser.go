// Package frontmatter extracts execution metadata from the leading
// /*--- ... ---*/ block of a test262 source file.
package frontmatter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/perfgo/t262run/model"
	"gopkg.in/yaml.v3"
)

// PrefixLimit is how much of a file is inspected. Front matter always
// sits near the top of the file.
const PrefixLimit = 8 << 10

const (
	blockStart = "/*---"
	blockEnd   = "---*/"
)

type rawNegative struct {
	Phase string `yaml:"phase"`
	Type  string `yaml:"type"`
}

type rawMeta struct {
	Flags    []string     `yaml:"flags"`
	Includes []string     `yaml:"includes"`
	Features []string     `yaml:"features"`
	Negative *rawNegative `yaml:"negative"`
}

func (m rawMeta) descriptor() model.Descriptor {
	var negative *model.Negative
	if m.Negative != nil {
		negative = &model.Negative{
			Phase: model.Phase(m.Negative.Phase),
			Type:  m.Negative.Type,
		}
	}
	return model.NewDescriptor(m.Flags, m.Includes, negative, m.Features)
}

// ParseFile reads the prefix of the file at path and parses its front matter.
func ParseFile(path string) (model.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Descriptor{}, fmt.Errorf("failed to open test file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse extracts the descriptor from the first PrefixLimit bytes of r.
// A missing block or missing fields yield defaults; only read failures
// are returned as errors.
func Parse(r io.Reader) (model.Descriptor, error) {
	head, err := io.ReadAll(io.LimitReader(r, PrefixLimit))
	if err != nil {
		return model.Descriptor{}, fmt.Errorf("failed to read front matter: %w", err)
	}

	block, ok := extractBlock(string(head))
	if !ok {
		return model.Descriptor{}, nil
	}

	var meta rawMeta
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		// Not every corpus file is valid YAML, fall back to line scanning
		meta = scanLines(block)
	}

	return meta.descriptor(), nil
}

func extractBlock(src string) (string, bool) {
	start := strings.Index(src, blockStart)
	if start < 0 {
		return "", false
	}
	rest := src[start+len(blockStart):]
	end := strings.Index(rest, blockEnd)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// scanLines recognizes the four fields the orchestrator cares about in a
// block that is not well-formed YAML: bracketed flag, include and feature
// lists, and a negative block with indented phase and type lines.
func scanLines(block string) rawMeta {
	var meta rawMeta
	inNegative := false

	scanner := bufio.NewScanner(strings.NewReader(block))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		if inNegative && indented {
			key, value, ok := splitField(trimmed)
			if !ok {
				continue
			}
			switch key {
			case "phase":
				meta.Negative.Phase = value
			case "type":
				meta.Negative.Type = value
			}
			continue
		}
		inNegative = false

		if indented {
			continue
		}

		key, value, ok := splitField(trimmed)
		if !ok {
			continue
		}
		switch key {
		case "flags":
			meta.Flags = parseList(value)
		case "includes":
			meta.Includes = parseList(value)
		case "features":
			meta.Features = parseList(value)
		case "negative":
			meta.Negative = &rawNegative{}
			inNegative = true
		}
	}

	return meta
}

func splitField(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// parseList parses "[a, b, c]". Anything else yields nil.
func parseList(value string) []string {
	if !strings.HasPrefix(value, "[") {
		return nil
	}
	end := strings.Index(value, "]")
	if end < 0 {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value[1:end], ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
