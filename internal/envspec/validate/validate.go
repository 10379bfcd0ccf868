// Package validate checks environment manifests against the embedded JSON
// schema before the structural invariants are applied.
package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed schema.json
var environmentSchema []byte

// ValidateAgainstSchema validates JSON data against the given schema. The
// name is used as the schema resource URL; ref selects a sub-schema and may
// be empty for the root.
func ValidateAgainstSchema(name string, schema []byte, data []byte, ref string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(string(schema))); err != nil {
		return fmt.Errorf("loading schema %s: %w", name, err)
	}

	target := name
	if ref != "" {
		target = name + ref
	}
	compiled, err := compiler.Compile(target)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", target, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidateEnvironmentJSON validates a JSON-encoded manifest against the
// embedded environment schema.
func ValidateEnvironmentJSON(data []byte) error {
	return ValidateAgainstSchema("environment.schema.json", environmentSchema, data, "")
}

// ValidateEnvironmentYAML converts a YAML manifest to JSON and validates it
// against the embedded environment schema.
func ValidateEnvironmentYAML(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting manifest to json: %w", err)
	}
	return ValidateEnvironmentJSON(jsonData)
}
