package envspec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/notebook-tools/env-composer/internal/envspec/matchspec"
)

// Load reads and parses a manifest file. The manifest's directory is
// remembered so editable install paths can be resolved later.
func Load(path string) (*EnvironmentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving manifest directory: %w", err)
	}
	spec.sourceDir = dir
	return spec, nil
}

// Parse decodes a manifest from raw YAML. Dependency order is preserved,
// including the position of the pip block within the list.
func Parse(data []byte) (*EnvironmentSpec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("manifest is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("manifest root must be a mapping, got %s", nodeKind(root))
	}

	spec := &EnvironmentSpec{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		value := root.Content[i+1]

		switch key.Value {
		case "name":
			if value.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("name must be a string")
			}
			spec.Name = value.Value
		case "channels":
			channels, err := decodeStringList(value, "channels")
			if err != nil {
				return nil, err
			}
			spec.Channels = channels
		case "dependencies":
			deps, err := decodeDependencies(value)
			if err != nil {
				return nil, err
			}
			spec.Dependencies = deps
		case "prefix":
			if value.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("prefix must be a string")
			}
			spec.Prefix = value.Value
		case "variables":
			vars, err := decodeStringMap(value)
			if err != nil {
				return nil, err
			}
			spec.Variables = vars
		default:
			return nil, fmt.Errorf("unknown manifest key %q (line %d)", key.Value, key.Line)
		}
	}

	return spec, nil
}

func decodeStringList(node *yaml.Node, field string) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s must be a list, got %s", field, nodeKind(node))
	}
	items := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s entries must be strings (line %d)", field, item.Line)
		}
		items = append(items, item.Value)
	}
	return items, nil
}

func decodeStringMap(node *yaml.Node) (map[string]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("variables must be a mapping, got %s", nodeKind(node))
	}
	vars := make(map[string]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		value := node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("variable %q must be a string (line %d)", node.Content[i].Value, value.Line)
		}
		vars[node.Content[i].Value] = value.Value
	}
	return vars, nil
}

func decodeDependencies(node *yaml.Node) ([]Dependency, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("dependencies must be a list, got %s", nodeKind(node))
	}

	deps := make([]Dependency, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			spec, err := matchspec.Parse(item.Value, matchspec.Conda)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			deps = append(deps, Dependency{Conda: &spec})
		case yaml.MappingNode:
			block, err := decodeDelegationBlock(item)
			if err != nil {
				return nil, err
			}
			deps = append(deps, Dependency{Pip: block})
		default:
			return nil, fmt.Errorf("dependency entry at line %d must be a string or a pip block", item.Line)
		}
	}
	return deps, nil
}

func decodeDelegationBlock(node *yaml.Node) (*PipBlock, error) {
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("delegation block at line %d must have a single key", node.Line)
	}
	key := node.Content[0]
	if key.Value != "pip" {
		return nil, fmt.Errorf("unsupported delegation block %q (line %d)", key.Value, key.Line)
	}

	entries, err := decodeStringList(node.Content[1], "pip")
	if err != nil {
		return nil, err
	}

	block := &PipBlock{}
	for i := 0; i < len(entries); i++ {
		entry := strings.TrimSpace(entries[i])

		flag, arg, isEditable := splitEditable(entry)
		if isEditable {
			if arg == "" {
				// Bare flag form: the path is the following entry.
				if i+1 >= len(entries) {
					return nil, fmt.Errorf("%s flag has no path entry", flag)
				}
				i++
				arg = strings.TrimSpace(entries[i])
			}
			block.Requirements = append(block.Requirements, PipRequirement{
				Kind: PipEditable,
				Path: arg,
			})
			continue
		}

		spec, err := matchspec.Parse(entry, matchspec.Pip)
		if err != nil {
			return nil, fmt.Errorf("pip block: %w", err)
		}
		block.Requirements = append(block.Requirements, PipRequirement{
			Kind: PipPackage,
			Spec: spec,
		})
	}
	return block, nil
}

// splitEditable recognizes the editable install entry forms: "--editable"
// and "-e", bare or with an inline path argument.
func splitEditable(entry string) (flag, arg string, ok bool) {
	for _, f := range []string{"--editable", "-e"} {
		if entry == f {
			return f, "", true
		}
		if strings.HasPrefix(entry, f+" ") {
			return f, strings.TrimSpace(entry[len(f):]), true
		}
	}
	return "", "", false
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
