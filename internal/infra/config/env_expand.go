package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// envExpander substitutes ${VAR} and ${VAR:-fallback} references in YAML
// scalar values. Mapping keys are never expanded.
type envExpander struct {
	lookup  func(string) (string, bool)
	missing map[string]struct{}
}

func newEnvExpander(lookup func(string) (string, bool)) *envExpander {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &envExpander{lookup: lookup, missing: make(map[string]struct{})}
}

// expandConfigEnv returns the expanded document and the sorted names of
// referenced variables that were unset and had no fallback.
func expandConfigEnv(raw []byte) (string, []string, error) {
	return newEnvExpander(nil).expand(raw)
}

func (e *envExpander) expand(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}
	if root.Kind == 0 {
		return "", nil, nil
	}

	e.walk(&root)

	out, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(out), e.missingNames(), nil
}

func (e *envExpander) walk(node *yaml.Node) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			e.walk(node.Content[i])
		}
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			e.walk(child)
		}
	case yaml.ScalarNode:
		e.scalar(node)
	}
}

func (e *envExpander) scalar(node *yaml.Node) {
	if node.Tag != "" && node.Tag != "!!str" {
		return
	}
	if !strings.Contains(node.Value, "$") {
		return
	}

	value := os.Expand(node.Value, e.resolve)
	if value == node.Value {
		return
	}
	node.Value = value

	// Plain scalars are re-typed so "${PORT}" can decode as an int. Quoted
	// scalars stay strings.
	if node.Style == 0 {
		node.Tag = ""
		var probe yaml.Node
		if err := yaml.Unmarshal([]byte(value), &probe); err == nil && len(probe.Content) == 1 && probe.Content[0].Kind == yaml.ScalarNode {
			node.Tag = probe.Content[0].Tag
		}
		if node.Tag == "" || strings.TrimSpace(value) == "" {
			node.Tag = "!!str"
		}
		return
	}
	node.Tag = "!!str"
}

func (e *envExpander) resolve(ref string) string {
	name, fallback, hasFallback := strings.Cut(ref, ":-")
	if value, ok := e.lookup(name); ok && (value != "" || !hasFallback) {
		return value
	}
	if hasFallback {
		return fallback
	}
	e.missing[name] = struct{}{}
	return ""
}

func (e *envExpander) missingNames() []string {
	if len(e.missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.missing))
	for name := range e.missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
