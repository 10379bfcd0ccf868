package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const compareManifestA = `name: jupysql-binder
channels:
  - conda-forge
dependencies:
  - python=3.11
  - pip
  - pip:
      - duckdb
      - --editable .
      - traitlets<5.10.0
`

const compareManifestB = `name: jupysql-binder
channels:
  - conda-forge
dependencies:
  - python=3.12
  - pip
  - pip:
      - duckdb
      - --editable .
      - traitlets<5.10.0
`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest fixture: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveDefaults(t *testing.T) {
	tests := []struct {
		format     string
		mode       string
		wantFormat string
		wantMode   string
	}{
		{"text", "", "text", "diff"},
		{"json", "", "json", "full"},
		{"JSON", "SUMMARY", "json", "summary"},
		{"text", "full", "text", "full"},
	}
	for _, tt := range tests {
		gotFormat, gotMode := resolveDefaults(tt.format, tt.mode)
		if gotFormat != tt.wantFormat || gotMode != tt.wantMode {
			t.Errorf("resolveDefaults(%q, %q) = (%q, %q), want (%q, %q)",
				tt.format, tt.mode, gotFormat, gotMode, tt.wantFormat, tt.wantMode)
		}
	}
}

func TestCompareCommandTextOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeManifest(t, dir, "a.yml", compareManifestA)
	b := writeManifest(t, dir, "b.yml", compareManifestB)

	out, err := runCommand(t, "compare", a, b)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("python=3.11 -> python=3.12")) {
		t.Errorf("Expected python modification in output:\n%s", out)
	}
}

func TestCompareCommandJSONSummary(t *testing.T) {
	dir := t.TempDir()
	a := writeManifest(t, dir, "a.yml", compareManifestA)
	b := writeManifest(t, dir, "b.yml", compareManifestB)

	out, err := runCommand(t, "compare", a, b, "--format", "json", "--mode", "summary")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	var payload struct {
		Equal   bool `json:"equal"`
		Summary struct {
			Changed       bool `json:"changed"`
			ModifiedCount int  `json:"modifiedCount"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if payload.Equal {
		t.Error("expected manifests to differ")
	}
	if payload.Summary.ModifiedCount != 1 {
		t.Errorf("expected one modification, got %d", payload.Summary.ModifiedCount)
	}
}

func TestCompareCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeManifest(t, dir, "a.yml", compareManifestA)

	if _, err := runCommand(t, "compare", a, filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected compare with missing file to fail")
	}
}
