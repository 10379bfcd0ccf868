package envspec

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Marshal renders the manifest in canonical form: name, channels,
// dependencies (and variables when present), in that order. The prefix key
// is never emitted; dependency and channel order is preserved.
func (s *EnvironmentSpec) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	appendKey(root, "name", scalarNode(s.Name))
	appendKey(root, "channels", sequenceNode(s.Channels))

	deps := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, d := range s.Dependencies {
		if d.IsPipBlock() {
			deps.Content = append(deps.Content, pipBlockNode(d.Pip))
			continue
		}
		deps.Content = append(deps.Content, scalarNode(d.Conda.String()))
	}
	appendKey(root, "dependencies", deps)

	if len(s.Variables) > 0 {
		vars := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := make([]string, 0, len(s.Variables))
		for k := range s.Variables {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendKey(vars, k, scalarNode(s.Variables[k]))
		}
		appendKey(root, "variables", vars)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveTo writes the canonical form to path.
func (s *EnvironmentSpec) SaveTo(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func pipBlockNode(block *PipBlock) *yaml.Node {
	entries := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range block.Requirements {
		entries.Content = append(entries.Content, scalarNode(r.String()))
	}

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendKey(node, "pip", entries)
	return node
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func sequenceNode(values []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		node.Content = append(node.Content, scalarNode(v))
	}
	return node
}

func appendKey(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, scalarNode(key), value)
}
